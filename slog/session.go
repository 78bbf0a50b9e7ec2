// Package slog provides log/slog decorators for roster services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/roster"
)

// Ensure LoggingPreparer implements roster.SessionPreparer.
var _ roster.SessionPreparer = (*LoggingPreparer)(nil)

// LoggingPreparer wraps a SessionPreparer with logging.
type LoggingPreparer struct {
	next   roster.SessionPreparer
	logger *slog.Logger
}

// NewLoggingPreparer creates a new LoggingPreparer.
func NewLoggingPreparer(next roster.SessionPreparer, logger *slog.Logger) *LoggingPreparer {
	return &LoggingPreparer{next: next, logger: logger}
}

// Prepare delegates to the wrapped preparer and logs the outcome.
func (p *LoggingPreparer) Prepare(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("prepare session",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Prepare(ctx)
}

// Ensure LoggingLocator implements roster.ContainerLocator.
var _ roster.ContainerLocator = (*LoggingLocator)(nil)

// LoggingLocator wraps a ContainerLocator with logging.
type LoggingLocator struct {
	next   roster.ContainerLocator
	logger *slog.Logger
}

// NewLoggingLocator creates a new LoggingLocator.
func NewLoggingLocator(next roster.ContainerLocator, logger *slog.Logger) *LoggingLocator {
	return &LoggingLocator{next: next, logger: logger}
}

// Locate delegates to the wrapped locator and logs whether a list was found.
func (l *LoggingLocator) Locate(ctx context.Context) (c roster.Container, err error) {
	defer func(begin time.Time) {
		l.logger.Info("locate list",
			"found", c != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Locate(ctx)
}
