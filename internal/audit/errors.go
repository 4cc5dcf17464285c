package audit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredential means the account listing returned nothing.
	ErrInvalidCredential = errors.New("invalid credential: no accessible accounts")

	// ErrPaginationStalled means a listing stopped making progress.
	ErrPaginationStalled = errors.New("pagination stalled")
)

// StallError describes where a listing stopped making progress.
type StallError struct {
	Op        string
	AccountID int
	Window    LogWindow
	Page      int
	Reason    string
}

func (e *StallError) Error() string {
	msg := fmt.Sprintf("%s: %v at page %d for account %d", e.Op, ErrPaginationStalled, e.Page, e.AccountID)
	if e.Window != 0 {
		msg += fmt.Sprintf(" window %s", e.Window)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches ErrPaginationStalled.
func (e *StallError) Is(target error) bool {
	return target == ErrPaginationStalled
}

// ListError wraps a failed page of a listing with its position.
type ListError struct {
	Op        string
	AccountID int
	Window    LogWindow
	Page      int
	Err       error
}

func (e *ListError) Error() string {
	if e.Window != 0 {
		return fmt.Sprintf("%s for account %d window %s page %d: %v", e.Op, e.AccountID, e.Window, e.Page, e.Err)
	}
	return fmt.Sprintf("%s for account %d page %d: %v", e.Op, e.AccountID, e.Page, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListError) Unwrap() error {
	return e.Err
}
