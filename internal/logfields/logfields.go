package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID          = "run_id"
	KeyProject        = "project"
	KeyPackage        = "package"
	KeyPlugin         = "plugin"
	KeyAutoinstaller  = "autoinstaller"
	KeyPath           = "path"
	KeyRule           = "rule"
	KeyVersion        = "version"
	KeyConstraint     = "constraint"
	KeyDependencyPath = "dependency_path"
	KeyHook           = "hook"
	KeyDurationMS     = "duration_ms"
	KeyCount          = "count"
	KeyError          = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr           { return slog.String(KeyRunID, id) }
func Project(name string) slog.Attr       { return slog.String(KeyProject, name) }
func Package(name string) slog.Attr       { return slog.String(KeyPackage, name) }
func Plugin(name string) slog.Attr        { return slog.String(KeyPlugin, name) }
func Autoinstaller(name string) slog.Attr { return slog.String(KeyAutoinstaller, name) }
func Path(p string) slog.Attr             { return slog.String(KeyPath, p) }
func Rule(kind string) slog.Attr          { return slog.String(KeyRule, kind) }
func Version(v string) slog.Attr          { return slog.String(KeyVersion, v) }
func Constraint(c string) slog.Attr       { return slog.String(KeyConstraint, c) }
func DependencyPath(p string) slog.Attr   { return slog.String(KeyDependencyPath, p) }
func Hook(name string) slog.Attr          { return slog.String(KeyHook, name) }
func DurationMS(ms float64) slog.Attr     { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr               { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
