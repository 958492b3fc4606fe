package errors

import "fmt"

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(startFolder, filename string) *RushError {
	return New(CategoryConfig, SeverityFatal,
		fmt.Sprintf("this command must be executed in a folder that is under a Rush workspace folder (no %s found above %s)", filename, startFolder)).
		WithKind(ErrConfigNotFound).
		WithContext("path", startFolder)
}

func ConfigInvalid(path string, cause error) *RushError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "failed to read configuration file "+path).
		WithContext("path", path)
}

// Schema errors

func SchemaValidationFailed(path string, cause error) *RushError {
	return Wrap(cause, CategoryValidation, SeverityFatal, "JSON schema validation failed for "+path).
		WithKind(ErrSchemaValidation).
		WithContext("path", path)
}

// Plugin errors

func NeedsUpdate(packageName, pluginName, manifestPath string) *RushError {
	return New(CategoryPlugin, SeverityError,
		fmt.Sprintf("the manifest for plugin %q from package %q is not cached at %s; run \"rushkit plugin update\" first", pluginName, packageName, manifestPath)).
		WithKind(ErrNeedsUpdate).
		WithContext("package", packageName).
		WithContext("plugin", pluginName).
		WithContext("path", manifestPath)
}

func ManifestEntryNotFound(packageName, pluginName string) *RushError {
	return New(CategoryPlugin, SeverityFatal,
		fmt.Sprintf("%s is not provided by rush plugin package %s", pluginName, packageName)).
		WithKind(ErrManifestEntryNotFound).
		WithContext("package", packageName).
		WithContext("plugin", pluginName)
}

func PackageNotFound(packageName, baseFolder string) *RushError {
	return New(CategoryPlugin, SeverityFatal,
		fmt.Sprintf("cannot find package %q reachable from %s", packageName, baseFolder)).
		WithKind(ErrPackageNotFound).
		WithContext("package", packageName).
		WithContext("path", baseFolder)
}

func PluginLoad(entryPoint string, cause error) *RushError {
	return Wrap(cause, CategoryPlugin, SeverityFatal,
		fmt.Sprintf("error loading rush plugin from %q", entryPoint)).
		WithKind(ErrPluginLoad).
		WithContext("path", entryPoint)
}

func InvalidPlugin(entryPoint, reason string) *RushError {
	return New(CategoryPlugin, SeverityFatal,
		fmt.Sprintf("rush plugin must define an \"apply\" function; the plugin loaded from %q %s", entryPoint, reason)).
		WithKind(ErrInvalidPlugin).
		WithContext("path", entryPoint)
}

func OptionsFileNotFound(path string) *RushError {
	return New(CategoryConfig, SeverityFatal,
		"optionsJsonFile does not exist at "+path).
		WithKind(ErrOptionsFileNotFound).
		WithContext("path", path)
}

func OptionsInvalid(path, schemaPath string, cause error) *RushError {
	return Wrap(cause, CategoryConfig, SeverityFatal,
		fmt.Sprintf("plugin options in %s do not match schema %s", path, schemaPath)).
		WithKind(ErrOptionsValidation).
		WithContext("path", path).
		WithContext("schema", schemaPath)
}

// Lockfile and rule errors

func UnsupportedRule(kind string) *RushError {
	return New(CategoryRule, SeverityFatal, "Unsupported rule name: "+kind).
		WithKind(ErrUnsupportedRule).
		WithContext("rule", kind)
}

func ProjectNotFound(name string) *RushError {
	return New(CategoryRule, SeverityFatal, "Cannot find project name: "+name).
		WithKind(ErrProjectNotFound).
		WithContext("project", name)
}

func VersionInconsistency(project, packageName, version, constraint, firstVersion string) *RushError {
	msg := fmt.Sprintf("Detected inconsistent version numbers for %s in project %s: %s does not satisfy %s",
		packageName, project, version, constraint)
	if firstVersion != "" {
		msg += fmt.Sprintf(" (first resolved as %s)", firstVersion)
	}
	return New(CategoryLockfile, SeverityFatal, msg).
		WithKind(ErrVersionInconsistency).
		WithContext("project", project).
		WithContext("package", packageName).
		WithContext("version", version).
		WithContext("constraint", constraint)
}

func LockfileInvalid(path string, cause error) *RushError {
	return Wrap(cause, CategoryLockfile, SeverityFatal, "failed to parse lockfile "+path).
		WithKind(ErrLockfile).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *RushError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
