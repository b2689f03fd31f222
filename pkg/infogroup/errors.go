package infogroup

import (
	"errors"
	"fmt"
)

// Sentinel errors. Environmental failures are recorded per key in
// [Group.Failures]; configuration failures are returned by [Group.Generate].
var (
	// ErrSourceUnavailable is recorded when a file cannot be read or a
	// command cannot be executed.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrExtractionMismatch is recorded when a pattern does not match the
	// raw source text.
	ErrExtractionMismatch = errors.New("pattern did not match")

	// ErrConversion is recorded when a converter rejects the captured text.
	ErrConversion = errors.New("conversion failed")

	// ErrConfiguration is returned by Generate for malformed sources.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotGenerated is returned by Update when Generate was not called.
	ErrNotGenerated = errors.New("group not generated")
)

// SourceError records the failure of a single result key.
// Use [errors.As] to extract the key and source kind.
type SourceError struct {
	Key  string     // result key
	Kind SourceKind // file, command or constant
	Err  error      // underlying error
}

// Error returns a human-readable description of the source failure.
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %q: %v", e.Kind, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// ConfigurationError records a malformed source declaration found by Generate.
type ConfigurationError struct {
	Group  string // group label
	Key    string // offending result key, empty for group-level problems
	Reason string
}

// Error returns a human-readable description of the configuration problem.
func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("group %q: %s", e.Group, e.Reason)
	}
	return fmt.Sprintf("group %q key %q: %s", e.Group, e.Key, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// CommandError records a failed command execution.
type CommandError struct {
	Command string // executable name, e.g. "uname"
	Err     error  // underlying error from exec
}

// Error returns a human-readable description of the command failure.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ConversionError records a converter rejecting its input.
type ConversionError struct {
	Input string
	Err   error
}

// Error returns a human-readable description of the conversion failure.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// failureReason maps a recorded failure onto a short metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrExtractionMismatch):
		return "mismatch"
	case errors.Is(err, ErrConversion):
		return "conversion"
	default:
		return "other"
	}
}
