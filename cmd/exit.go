package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/StacySimmons/logging-hosts/internal/audit"
	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

// Process exit codes
const (
	ExitOK                = 0
	ExitError             = 1
	ExitInvalidCredential = 2
	ExitFatalTrust        = 3
	ExitInterrupted       = 130
)

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case querysvc.IsFatalTrust(err):
		return ExitFatalTrust
	case errors.Is(err, audit.ErrInvalidCredential):
		return ExitInvalidCredential
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitError
	}
}

// ReportError prints err for the operator and returns the exit code. A TLS
// trust failure is followed by guidance on supplying a CA bundle.
func ReportError(w io.Writer, err error) int {
	code := ExitCode(err)
	if code == ExitOK {
		return code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	switch code {
	case ExitFatalTrust:
		fmt.Fprintf(w, "\n%s\n", querysvc.TrustGuidance)
	case ExitInvalidCredential:
		fmt.Fprintln(w, "\nCheck that the API key is a valid user key for the selected region.")
	}
	return code
}
