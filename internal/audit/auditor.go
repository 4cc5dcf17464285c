// Package audit compares the host inventory against the hosts that emit
// logs and reports the differences.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/StacySimmons/logging-hosts/internal/querysvc"
)

const (
	DefaultWorkers     = 4
	DefaultLogPageSize = 5000
	DefaultMaxPages    = 10000
)

// Executor sends one logical query. *querysvc.Client implements it.
type Executor interface {
	Execute(ctx context.Context, req querysvc.Request, out any) error
}

// PageObserver is told about every page a listing fetched.
type PageObserver interface {
	PageFetched(op string)
}

// Options configures an Auditor.
type Options struct {
	// Region is copied into the report.
	Region string
	// Workers bounds the number of concurrent per-account listings.
	Workers int
	// LogPageSize is the row cap of one log host query.
	LogPageSize int
	// MaxPages aborts a listing that keeps paginating past this many pages.
	MaxPages int
	// RunID tags the report. A random one is generated when empty.
	RunID string

	Logger *slog.Logger
	Pages  PageObserver
	Now    func() time.Time
}

// Auditor runs the account, inventory and log host listings.
type Auditor struct {
	exec   Executor
	opts   Options
	logger *slog.Logger
}

// New creates an Auditor that sends its queries through exec.
func New(exec Executor, opts Options) *Auditor {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.LogPageSize <= 0 {
		opts.LogPageSize = DefaultLogPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{exec: exec, opts: opts, logger: logger}
}

func (a *Auditor) pageFetched(op string) {
	if a.opts.Pages != nil {
		a.opts.Pages.PageFetched(op)
	}
}
