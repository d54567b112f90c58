package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/exitflow/internal/metrics"
)

// Effects runs best-effort side effects. A failing effect is logged and counted, and the
// caller only receives a warning.
type Effects struct {
	logger  *slog.Logger
	metrics metrics.BusinessMetrics
}

// NewEffects creates an Effects runner.
func NewEffects(logger *slog.Logger, m metrics.BusinessMetrics) *Effects {
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}
	return &Effects{logger: logger, metrics: m}
}

// Run executes fn and returns an empty string on success or a warning describing the failure.
// Panics inside fn are recovered and reported the same way.
func (e *Effects) Run(
	ctx context.Context,
	name string,
	fn func(ctx context.Context) error,
	attrs ...slog.Attr,
) (warning string) {
	defer func() {
		if r := recover(); r != nil {
			warning = e.fail(ctx, name, fmt.Errorf("panic: %v", r), attrs)
		}
	}()

	if err := fn(ctx); err != nil {
		return e.fail(ctx, name, err, attrs)
	}
	return ""
}

func (e *Effects) fail(ctx context.Context, name string, err error, attrs []slog.Attr) string {
	e.metrics.RecordEffectFailure(ctx, name)
	if e.logger != nil {
		args := make([]any, 0, len(attrs)+2)
		args = append(args, slog.String("effect", name), slog.Any("error", err))
		for _, a := range attrs {
			args = append(args, a)
		}
		e.logger.WarnContext(ctx, "non-critical effect failed", args...)
	}
	return fmt.Sprintf("%s: %v", name, err)
}
