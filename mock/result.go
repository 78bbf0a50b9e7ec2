package mock

import (
	"context"
	"io"

	"github.com/fwojciec/roster"
)

var _ roster.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of roster.ResultService.
type ResultService struct {
	CreateResultFn   func(ctx context.Context, result *roster.Result) error
	FindResultByIDFn func(ctx context.Context, id string) (*roster.Result, error)
	FindResultsFn    func(ctx context.Context, filter roster.ResultFilter) ([]*roster.Result, error)
	DeleteResultFn   func(ctx context.Context, id string) error
}

func (s *ResultService) CreateResult(ctx context.Context, result *roster.Result) error {
	return s.CreateResultFn(ctx, result)
}

func (s *ResultService) FindResultByID(ctx context.Context, id string) (*roster.Result, error) {
	return s.FindResultByIDFn(ctx, id)
}

func (s *ResultService) FindResults(ctx context.Context, filter roster.ResultFilter) ([]*roster.Result, error) {
	return s.FindResultsFn(ctx, filter)
}

func (s *ResultService) DeleteResult(ctx context.Context, id string) error {
	return s.DeleteResultFn(ctx, id)
}

var _ roster.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of roster.Exporter.
type Exporter struct {
	ExportFn    func(ctx context.Context, result *roster.Result, w io.Writer) error
	ExtensionFn func() string
}

func (e *Exporter) Export(ctx context.Context, result *roster.Result, w io.Writer) error {
	return e.ExportFn(ctx, result, w)
}

func (e *Exporter) Extension() string {
	return e.ExtensionFn()
}
