// Package errors provides structured error types for better observability
// and programmatic error handling across the build and publish pipeline.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeBuild,
//	    "failed to write package manifest",
//	    cause,
//	    map[string]any{
//	        "path": manifestPath,
//	        "ide":  ide,
//	    },
//	)
//
// Errors that have an obvious remediation carry a hint:
//
//	return errors.New(errors.ErrCodeUnauthorized, "token rejected").
//	    WithHint("regenerate a token with the Marketplace (Manage) scope")
package errors
