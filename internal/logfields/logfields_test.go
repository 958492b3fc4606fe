package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Project", KeyProject, "app", Project("app")},
		{"Package", KeyPackage, "lodash", Package("lodash")},
		{"Plugin", KeyPlugin, "p", Plugin("p")},
		{"Autoinstaller", KeyAutoinstaller, "rush-plugins", Autoinstaller("rush-plugins")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Rule", KeyRule, "side-by-side", Rule("side-by-side")},
		{"Version", KeyVersion, "1.0.0", Version("1.0.0")},
		{"Constraint", KeyConstraint, "^1.0.0", Constraint("^1.0.0")},
		{"DependencyPath", KeyDependencyPath, "/a@1.0.0", DependencyPath("/a@1.0.0")},
		{"Hook", KeyHook, "initialize", Hook("initialize")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Count(3); v.Key != KeyCount || v.Value.Int64() != 3 {
		t.Fatalf("Count mismatch: %v", v)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
