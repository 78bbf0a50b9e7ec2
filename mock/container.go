package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.Container = (*Container)(nil)

// Container is a mock implementation of roster.Container.
type Container struct {
	QueryAllFn func(ctx context.Context, selector string) ([]roster.Node, error)
	HTMLFn     func(ctx context.Context) (string, error)
	MetricsFn  func(ctx context.Context) (roster.ScrollMetrics, error)
	ScrollToFn func(ctx context.Context, top float64) error
}

func (c *Container) QueryAll(ctx context.Context, selector string) ([]roster.Node, error) {
	return c.QueryAllFn(ctx, selector)
}

func (c *Container) HTML(ctx context.Context) (string, error) {
	return c.HTMLFn(ctx)
}

func (c *Container) Metrics(ctx context.Context) (roster.ScrollMetrics, error) {
	return c.MetricsFn(ctx)
}

func (c *Container) ScrollTo(ctx context.Context, top float64) error {
	return c.ScrollToFn(ctx, top)
}

var _ roster.Node = (*Node)(nil)

// Node is a mock implementation of roster.Node.
type Node struct {
	IDFn     func() string
	BoundsFn func() roster.Rect
	HTMLFn   func(ctx context.Context) (string, error)
}

func (n *Node) ID() string {
	return n.IDFn()
}

func (n *Node) Bounds() roster.Rect {
	return n.BoundsFn()
}

func (n *Node) HTML(ctx context.Context) (string, error) {
	return n.HTMLFn(ctx)
}

var _ roster.ContainerLocator = (*ContainerLocator)(nil)

// ContainerLocator is a mock implementation of roster.ContainerLocator.
type ContainerLocator struct {
	LocateFn func(ctx context.Context) (roster.Container, error)
}

func (l *ContainerLocator) Locate(ctx context.Context) (roster.Container, error) {
	return l.LocateFn(ctx)
}
