package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.NodeExtractor = (*NodeExtractor)(nil)

// NodeExtractor is a mock implementation of roster.NodeExtractor.
type NodeExtractor struct {
	ExtractFn func(ctx context.Context, node roster.Node) (*roster.RawRecord, error)
}

func (e *NodeExtractor) Extract(ctx context.Context, node roster.Node) (*roster.RawRecord, error) {
	return e.ExtractFn(ctx, node)
}

var _ roster.NodeFinder = (*NodeFinder)(nil)

// NodeFinder is a mock implementation of roster.NodeFinder.
type NodeFinder struct {
	FindItemNodesFn func(ctx context.Context, c roster.Container) ([]roster.Node, error)
}

func (f *NodeFinder) FindItemNodes(ctx context.Context, c roster.Container) ([]roster.Node, error) {
	return f.FindItemNodesFn(ctx, c)
}

var _ roster.SizeEstimator = (*SizeEstimator)(nil)

// SizeEstimator is a mock implementation of roster.SizeEstimator.
type SizeEstimator struct {
	EstimateTotalFn func(ctx context.Context, c roster.Container) (int, error)
}

func (s *SizeEstimator) EstimateTotal(ctx context.Context, c roster.Container) (int, error) {
	return s.EstimateTotalFn(ctx, c)
}
