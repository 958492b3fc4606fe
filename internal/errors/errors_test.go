package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestRushError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RushError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestRushError_WithContext(t *testing.T) {
	err := New(CategoryPlugin, SeverityWarning, "load failed").
		WithContext("package", "@scope/plugin").
		WithContext("plugin", "my-plugin")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["package"] != "@scope/plugin" {
		t.Errorf("Context[package] = %v, want @scope/plugin", err.Context["package"])
	}

	if err.Context["plugin"] != "my-plugin" {
		t.Errorf("Context[plugin] = %v, want my-plugin", err.Context["plugin"])
	}
}

func TestKindMatchesThroughWrapping(t *testing.T) {
	needsUpdate := NeedsUpdate("pkg", "plugin", "/cache/manifest.json")
	wrapped := fmt.Errorf("loading plugins: %w", needsUpdate)

	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{"direct kind", needsUpdate, ErrNeedsUpdate, true},
		{"wrapped kind", wrapped, ErrNeedsUpdate, true},
		{"different kind", needsUpdate, ErrPackageNotFound, false},
		{"plain error", fmt.Errorf("file not found"), ErrNeedsUpdate, false},
		{"untagged rush error", New(CategoryPlugin, SeverityFatal, "x"), ErrNeedsUpdate, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := stdErrors.Is(test.err, test.kind); got != test.expected {
				t.Errorf("errors.Is() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	ruleErr := New(CategoryRule, SeverityWarning, "rule error")
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match rule category", configErr, CategoryRule, false},
		{"rule error matches rule category", ruleErr, CategoryRule, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("VersionInconsistency", func(t *testing.T) {
		err := VersionInconsistency("app", "lodash", "2.0.0", "^1.0.0", "1.0.0")
		if err.Category != CategoryLockfile {
			t.Errorf("Category = %v, want %v", err.Category, CategoryLockfile)
		}
		if !strings.Contains(err.Message, "2.0.0") || !strings.Contains(err.Message, "1.0.0") {
			t.Errorf("Message should name both versions: %q", err.Message)
		}
		if !stdErrors.Is(err, ErrVersionInconsistency) {
			t.Error("VersionInconsistency should carry ErrVersionInconsistency")
		}
	})

	t.Run("PluginLoad", func(t *testing.T) {
		cause := fmt.Errorf("syntax error")
		err := PluginLoad("/pkg/lib/index.js", cause)
		if !stdErrors.Is(err, cause) {
			t.Errorf("Cause should match wrapped cause: %v", cause)
		}
		if !stdErrors.Is(err, ErrPluginLoad) {
			t.Error("PluginLoad should carry ErrPluginLoad")
		}
	})

	t.Run("UnsupportedRule", func(t *testing.T) {
		err := UnsupportedRule("no-duplicates")
		if err.Context["rule"] != "no-duplicates" {
			t.Errorf("Context[rule] = %v, want no-duplicates", err.Context["rule"])
		}
	})
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, nil)
	adapter.stderr = &buf

	code := adapter.Report(ProjectNotFound("missing-app"))
	if code != 1 {
		t.Errorf("Report() = %d, want 1", code)
	}
	if got := buf.String(); got != "ERROR: Cannot find project name: missing-app\n" {
		t.Errorf("stderr = %q", got)
	}

	if code := adapter.Report(nil); code != 0 {
		t.Errorf("Report(nil) = %d, want 0", code)
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	wrapped := fmt.Errorf("lint: %w", ProjectNotFound("x"))
	if got := adapter.FormatError(wrapped); !strings.HasPrefix(got, "ERROR: lint: ") {
		t.Errorf("FormatError(wrapped) = %q", got)
	}
	if GetCategory(wrapped) != CategoryRule {
		t.Errorf("GetCategory(wrapped) = %v, want %v", GetCategory(wrapped), CategoryRule)
	}

	colored := adapter.WithColor(true).FormatError(ProjectNotFound("x"))
	if !strings.Contains(colored, "\x1b[") || !strings.HasSuffix(colored, "Cannot find project name: x") {
		t.Errorf("FormatError(colored) = %q", colored)
	}
}
