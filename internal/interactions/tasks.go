package interactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
)

// InteractionTokenLifetime is how long Discord accepts follow-ups for an
// interaction token.
const InteractionTokenLifetime = 15 * time.Minute

// TaskGroup runs work that must outlive the request that scheduled it and
// lets the server wait for that work before exiting.
type TaskGroup struct {
	group   errgroup.Group
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewTaskGroup(timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *TaskGroup {
	if timeout <= 0 {
		timeout = InteractionTokenLifetime
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskGroup{timeout: timeout, logger: logger, metrics: m}
}

// Go runs fn in the background. fn's context keeps parent's values but not
// its cancellation, and expires after the group timeout. Failures, including
// panics, are logged and counted; they never reach the caller.
func (g *TaskGroup) Go(parent context.Context, name string, fn func(ctx context.Context) error) {
	ctx := context.WithoutCancel(parent)
	g.group.Go(func() error {
		g.run(ctx, name, fn)
		return nil
	})
}

func (g *TaskGroup) run(parent context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(parent, g.timeout)
	defer cancel()

	start := time.Now()
	err := g.call(ctx, name, fn)
	elapsed := time.Since(start)

	if err != nil {
		g.metrics.ObserveTask("failed")
		g.logger.ErrorContext(ctx, "task failed",
			"task", name,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return
	}
	g.metrics.ObserveTask("succeeded")
	g.logger.InfoContext(ctx, "task completed",
		"task", name,
		"duration_ms", elapsed.Milliseconds(),
	)
}

func (g *TaskGroup) call(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every started task has returned or ctx is done. Callers
// must stop scheduling new tasks first.
func (g *TaskGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		_ = g.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
