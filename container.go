package roster

import (
	"context"
	"time"
)

// Rect is the vertical extent of a node in viewport coordinates.
type Rect struct {
	Top    float64
	Bottom float64
}

// Intersects reports whether r overlaps the closed range [lo, hi].
func (r Rect) Intersects(lo, hi float64) bool {
	return r.Bottom >= lo && r.Top <= hi
}

// ScrollMetrics describes the scrollable element of a list.
type ScrollMetrics struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64

	// ViewportTop is the top edge of the scrollable box in viewport
	// coordinates, the same space Node bounds are expressed in.
	ViewportTop float64
}

// AtBottom reports whether the scroll position is within tolerance pixels
// of the end of the scroll range.
func (m ScrollMetrics) AtBottom(tolerance float64) bool {
	return m.ScrollTop+m.ClientHeight >= m.ScrollHeight-tolerance
}

// Node is a rendered list item. Nodes are snapshots: Bounds reflects the
// layout at the time the node was queried.
type Node interface {
	// ID returns a stable identifier of the underlying rendered node.
	// Virtualized lists recycle nodes, so the same ID may carry different
	// content over time.
	ID() string

	// Bounds returns the node's vertical extent.
	Bounds() Rect

	// HTML returns the node's current markup.
	HTML(ctx context.Context) (string, error)
}

// Container is a located virtualized list: its root (queried for item
// nodes) and its scrollable ancestor.
type Container interface {
	// QueryAll returns the nodes under the list root matching selector.
	QueryAll(ctx context.Context, selector string) ([]Node, error)

	// HTML returns the markup of the list root.
	HTML(ctx context.Context) (string, error)

	// Metrics returns the current scroll state.
	Metrics(ctx context.Context) (ScrollMetrics, error)

	// ScrollTo sets the scroll position. Implementations clamp to the
	// scroll range.
	ScrollTo(ctx context.Context, top float64) error
}

// ContainerLocator finds the virtualized list and its scrollable ancestor.
type ContainerLocator interface {
	// Locate returns ENOTFOUND if the list is not present.
	Locate(ctx context.Context) (Container, error)
}

// NodeExtractor parses one visible node into a raw record.
type NodeExtractor interface {
	// Extract returns a nil record if the node does not describe an entry.
	Extract(ctx context.Context, node Node) (*RawRecord, error)
}

// NodeFinder returns the candidate item nodes of a container. Host pages
// differ in markup, so finders are swappable without touching the harvester.
type NodeFinder interface {
	FindItemNodes(ctx context.Context, c Container) ([]Node, error)
}

// SizeEstimator returns a best-effort hint of how many entries a list has.
type SizeEstimator interface {
	EstimateTotal(ctx context.Context, c Container) (int, error)
}

// SessionPreparer performs the steps that bring the list on screen, such as
// navigating to a page and opening a panel. It runs before every attempt.
type SessionPreparer interface {
	Prepare(ctx context.Context) error
}

// GroupNamer resolves the display name of the harvested collection.
type GroupNamer interface {
	GroupName(ctx context.Context) (string, error)
}

// Clock abstracts time so harvest timing can be driven deterministically.
type Clock interface {
	Now() time.Time

	// Sleep waits for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}
