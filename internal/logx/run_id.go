package logx

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type runIDContextKey struct{}

func IsUUIDv4(value string) bool {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Version() == 4
}

// NormalizeRunID keeps a caller supplied v4 UUID and otherwise generates one.
func NormalizeRunID(value string) string {
	if IsUUIDv4(value) {
		return value
	}
	return uuid.NewString()
}

func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDContextKey{}, runID)
}

func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	runID, _ := ctx.Value(runIDContextKey{}).(string)
	return runID
}

func LoggerWithRunID(ctx context.Context) *slog.Logger {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		return slog.Default()
	}
	return slog.Default().With("run_id", runID)
}
