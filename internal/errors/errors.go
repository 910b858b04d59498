package errors

import (
	"errors"
	"fmt"
)

// Exit codes for quiv
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitValidationFailed = 2
)

// Kind classifies a QuivError by the subsystem that produced it.
type Kind int

const (
	KindGeneral Kind = iota
	KindConfig
	KindManifest
	KindResolution
	KindTransport
	KindProvenance
	KindLicense
	KindValidation
	KindInit
	KindPackage
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindManifest:
		return "manifest"
	case KindResolution:
		return "resolution"
	case KindTransport:
		return "transport"
	case KindProvenance:
		return "provenance"
	case KindLicense:
		return "license"
	case KindValidation:
		return "validation"
	case KindInit:
		return "init"
	case KindPackage:
		return "package"
	default:
		return "general"
	}
}

// QuivError is the base error type for quiv
type QuivError struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error
}

func (e *QuivError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *QuivError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *QuivError) ExitCode() int {
	return e.Code
}

// New creates a new general QuivError
func New(code int, message string) *QuivError {
	return &QuivError{
		Kind:    KindGeneral,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a general QuivError
func Wrap(code int, message string, cause error) *QuivError {
	return &QuivError{
		Kind:    KindGeneral,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func newKind(kind Kind, message string, cause error) *QuivError {
	return &QuivError{
		Kind:    kind,
		Code:    ExitGeneralError,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *QuivError {
	return newKind(KindConfig, message, cause)
}

// ManifestError returns an error for an unreadable or invalid manifest
func ManifestError(message string, cause error) *QuivError {
	return newKind(KindManifest, message, cause)
}

// ResolutionError returns an error for a failed revision lookup
func ResolutionError(source string, cause error) *QuivError {
	return newKind(KindResolution, fmt.Sprintf("failed to resolve revision for %s", source), cause)
}

// TransportError returns an error for a failed download, clone or extraction
func TransportError(source, message string, cause error) *QuivError {
	return newKind(KindTransport, fmt.Sprintf("%s: %s", source, message), cause)
}

// ProvenanceError returns an error for a sidecar file that exists but cannot be used
func ProvenanceError(path string, cause error) *QuivError {
	return newKind(KindProvenance, fmt.Sprintf("cannot parse %s", path), cause)
}

// LicenseError returns an error for license file generation
func LicenseError(message string, cause error) *QuivError {
	return newKind(KindLicense, message, cause)
}

// ValidationFailed returns the error reported when skills fail validation
func ValidationFailed(message string) *QuivError {
	e := newKind(KindValidation, message, nil)
	e.Code = ExitValidationFailed
	return e
}

// InitError returns an error for project or skill scaffolding
func InitError(message string, cause error) *QuivError {
	return newKind(KindInit, message, cause)
}

// PackageError returns an error for skill packaging
func PackageError(message string, cause error) *QuivError {
	return newKind(KindPackage, message, cause)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var quivErr *QuivError
	if errors.As(err, &quivErr) {
		return quivErr.ExitCode()
	}
	return ExitGeneralError
}

// IsKind reports whether any QuivError in err's chain has the given kind
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var quivErr *QuivError
		if !errors.As(err, &quivErr) {
			return false
		}
		if quivErr.Kind == kind {
			return true
		}
		err = quivErr.Cause
	}
	return false
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
