// Package errors provides the classified error type used across pagesmith.
//
// A ClassifiedError carries a category (config, content, template, ...), a
// severity, and structured context such as the failing path and stage. The CLI
// adapter maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "render markup").
//		WithContext("path", path).
//		WithContext("stage", "title").
//		Build()
package errors
