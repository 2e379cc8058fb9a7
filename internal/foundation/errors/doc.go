// Package errors provides the classified error primitives used across wallhelper.
//
// Key features:
//   - ErrorCategory: broad classification (config, validation, filesystem, resolution, apply)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether the rotation loop may carry on after the failure
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing messages for the CLI
//
// Example usage:
//
//	err := errors.FileSystemError("bucket directory unreadable").
//		WithContext("path", dir).
//		WithCause(readErr).
//		Build()
package errors
