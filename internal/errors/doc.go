// Package errors provides typed errors with exit codes for quiv.
//
// # Error Types
//
// QuivError is the base error type that wraps an error with a kind and exit code:
//
//	type QuivError struct {
//	    Kind    Kind   // Subsystem that failed
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess          = 0  // Success
//	ExitGeneralError     = 1  // Any fatal error
//	ExitValidationFailed = 2  // Skills were validated and problems were found
//
// # Error Constructors
//
//	errors.ResolutionError("community", err)
//	errors.TransportError("community", "failed to download tarball", err)
//	errors.ProvenanceError("skills/x/.source.toml", err)
//	errors.ValidationFailed("Validation failed")
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
