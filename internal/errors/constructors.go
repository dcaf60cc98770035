package errors

// Convenience functions for the generation error taxonomy.

// Config errors

func ConfigNotFound(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is malformed").
		WithContext("path", path)
}

func ConfigRequired(path, field string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "required configuration key missing: "+field).
		WithContext("path", path).
		WithContext("field", field)
}

func ConfigWrongType(path, field, want string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration key "+field+" must be "+want).
		WithContext("path", path).
		WithContext("field", field)
}

// Asset errors

func AssetMissing(path string, cause error) *SiteError {
	return Wrap(cause, CategoryAsset, SeverityFatal, "declared asset directory does not exist").
		WithContext("path", path)
}

func AssetCopyFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryAsset, SeverityFatal, "asset copy failed").
		WithContext("path", path)
}

// Page errors

func MalformedPage(path string, cause error) *SiteError {
	return Wrap(cause, CategoryMalformedPage, SeverityFatal, "malformed page").
		WithContext("path", path)
}

func RenderFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryRender, SeverityFatal, "render failed").
		WithContext("path", path)
}

func TemplateInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryRender, SeverityFatal, "template cannot be loaded").
		WithContext("path", path)
}

// Filesystem errors

func FileSystemError(operation, path string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, operation+" failed").
		WithContext("operation", operation).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
