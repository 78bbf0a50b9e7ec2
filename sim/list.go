package sim

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/fwojciec/roster"
)

// Default geometry of a List.
const (
	DefaultItemHeight   = 50
	DefaultClientHeight = 400
	DefaultRender       = 20
	DefaultOverscan     = 4
	DefaultSelector     = `[role="listitem"]`
)

var (
	_ roster.Container        = (*List)(nil)
	_ roster.ContainerLocator = (*List)(nil)
	_ roster.GroupNamer       = (*List)(nil)
)

// List is a simulated virtualized list implementing roster.Container.
// Only Render nodes exist at any time; their IDs are reused as the window
// moves, so the same ID shows different entries at different positions.
type List struct {
	mu sync.Mutex

	items        []Item
	loaded       int
	batch        int
	pending      bool
	itemHeight   float64
	clientHeight float64
	viewportTop  float64
	render       int
	overscan     int
	selector     string
	groupName    string
	sizeHint     bool
	scrollTop    float64
	scrolls      int
	queries      int
}

// Option configures a List.
type Option func(*List)

// WithRender sets the number of rendered nodes.
func WithRender(n int) Option {
	return func(l *List) { l.render = max(n, 1) }
}

// WithSelector sets the selector that matches item nodes.
func WithSelector(sel string) Option {
	return func(l *List) { l.selector = sel }
}

// WithGroupName sets the name shown in the list header.
func WithGroupName(name string) Option {
	return func(l *List) { l.groupName = name }
}

// WithoutSizeHint removes the row count and member count from the markup.
func WithoutSizeHint() Option {
	return func(l *List) { l.sizeHint = false }
}

// WithLazyLoad makes only batch items available at first; reaching the
// bottom loads the next batch, as infinite-scroll lists do.
func WithLazyLoad(batch int) Option {
	return func(l *List) { l.batch = max(batch, 1) }
}

// WithViewportTop sets the top of the scroll box in viewport coordinates.
func WithViewportTop(top float64) Option {
	return func(l *List) { l.viewportTop = top }
}

// New returns a List of items scrolled to the top.
func New(items []Item, opts ...Option) *List {
	l := &List{
		items:        items,
		itemHeight:   DefaultItemHeight,
		clientHeight: DefaultClientHeight,
		viewportTop:  100,
		render:       DefaultRender,
		overscan:     DefaultOverscan,
		selector:     DefaultSelector,
		groupName:    "Simulated group",
		sizeHint:     true,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.loaded = len(items)
	if l.batch > 0 {
		l.loaded = min(l.batch, len(items))
	}
	return l
}

// Items returns all items of the list, loaded or not.
func (l *List) Items() []Item {
	return l.items
}

// Locate returns the list itself, so a List can stand in for a page.
func (l *List) Locate(context.Context) (roster.Container, error) {
	return l, nil
}

// GroupName returns the header name.
func (l *List) GroupName(context.Context) (string, error) {
	return l.groupName, nil
}

// Scrolls returns the number of ScrollTo calls.
func (l *List) Scrolls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scrolls
}

// Queries returns the number of QueryAll calls.
func (l *List) Queries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queries
}

// QueryAll returns the rendered nodes if selector is the item selector.
func (l *List) QueryAll(_ context.Context, selector string) ([]roster.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries++
	if selector != l.selector {
		return nil, nil
	}
	first, last := l.window()
	nodes := make([]roster.Node, 0, last-first)
	for i := first; i < last; i++ {
		nodes = append(nodes, &node{
			id: fmt.Sprintf("row-%d", i%l.render),
			bounds: roster.Rect{
				Top:    l.viewportTop + float64(i)*l.itemHeight - l.scrollTop,
				Bottom: l.viewportTop + float64(i+1)*l.itemHeight - l.scrollTop,
			},
			html: l.items[i].markup(i + 1),
		})
	}
	return nodes, nil
}

// HTML returns the markup of the list root with the rendered window.
func (l *List) HTML(context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	if l.sizeHint {
		fmt.Fprintf(&b, `<div role="list" aria-rowcount="%d">`, len(l.items))
		fmt.Fprintf(&b, `<header><span>%s</span><span>%d members</span></header>`, l.groupName, len(l.items))
	} else {
		b.WriteString(`<div role="list">`)
	}
	first, last := l.window()
	for i := first; i < last; i++ {
		b.WriteString(l.items[i].markup(i + 1))
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}

// Metrics returns the scroll state. A pending lazy load completes here.
func (l *List) Metrics(context.Context) (roster.ScrollMetrics, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending {
		l.pending = false
		l.loaded = min(l.loaded+l.batch, len(l.items))
	}
	return roster.ScrollMetrics{
		ScrollTop:    l.scrollTop,
		ScrollHeight: l.scrollHeight(),
		ClientHeight: l.clientHeight,
		ViewportTop:  l.viewportTop,
	}, nil
}

// ScrollTo moves the scroll position, clamped to the scroll range.
func (l *List) ScrollTo(_ context.Context, top float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scrolls++
	l.scrollTop = math.Max(0, math.Min(top, l.maxScroll()))
	if l.batch > 0 && l.loaded < len(l.items) && l.scrollTop >= l.maxScroll() {
		l.pending = true
	}
	return nil
}

func (l *List) scrollHeight() float64 {
	return float64(l.loaded) * l.itemHeight
}

func (l *List) maxScroll() float64 {
	return math.Max(0, l.scrollHeight()-l.clientHeight)
}

// window returns the index range of rendered items.
func (l *List) window() (int, int) {
	first := max(int(l.scrollTop/l.itemHeight)-l.overscan, 0)
	last := min(first+l.render, l.loaded)
	return first, last
}

// node is a rendered row at the time it was queried.
type node struct {
	id     string
	bounds roster.Rect
	html   string
}

func (n *node) ID() string                           { return n.id }
func (n *node) Bounds() roster.Rect                  { return n.bounds }
func (n *node) HTML(context.Context) (string, error) { return n.html, nil }
