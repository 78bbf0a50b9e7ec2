package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/roster"
)

// Ensure LoggingResultService implements roster.ResultService.
var _ roster.ResultService = (*LoggingResultService)(nil)

// LoggingResultService wraps a ResultService with debug logging.
type LoggingResultService struct {
	next   roster.ResultService
	logger *slog.Logger
}

// NewLoggingResultService creates a new LoggingResultService.
func NewLoggingResultService(next roster.ResultService, logger *slog.Logger) *LoggingResultService {
	return &LoggingResultService{next: next, logger: logger}
}

func (s *LoggingResultService) CreateResult(ctx context.Context, result *roster.Result) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create result",
			"id", result.ID,
			"members", result.TotalMembers,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateResult(ctx, result)
}

func (s *LoggingResultService) FindResultByID(ctx context.Context, id string) (result *roster.Result, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find result",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindResultByID(ctx, id)
}

func (s *LoggingResultService) FindResults(ctx context.Context, filter roster.ResultFilter) (results []*roster.Result, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find results",
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindResults(ctx, filter)
}

func (s *LoggingResultService) DeleteResult(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete result",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteResult(ctx, id)
}
