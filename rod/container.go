package rod

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fwojciec/roster"
	"github.com/go-rod/rod"
)

const metricsJS = `function () {
	const doc = this === document.scrollingElement || this === document.documentElement;
	return {
		scrollTop: this.scrollTop,
		scrollHeight: this.scrollHeight,
		clientHeight: doc ? window.innerHeight : this.clientHeight,
		top: doc ? 0 : this.getBoundingClientRect().top,
	};
}`

const boundsJS = `function () {
	const r = this.getBoundingClientRect();
	return { top: r.top, bottom: r.bottom };
}`

const scrollToJS = `function (y) { this.scrollTop = y; }`

var _ roster.Container = (*Container)(nil)

// Container is a list located in a live page.
type Container struct {
	root     *rod.Element
	scroller *rod.Element
}

// QueryAll returns the nodes under the list root matching selector. Nodes
// that detach while being read are skipped.
func (c *Container) QueryAll(ctx context.Context, selector string) ([]roster.Node, error) {
	els, err := c.root.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	nodes := make([]roster.Node, 0, len(els))
	for _, el := range els {
		n, err := newNode(ctx, el)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// HTML returns the outer HTML of the list root.
func (c *Container) HTML(ctx context.Context) (string, error) {
	return c.root.Context(ctx).HTML()
}

// Metrics reads the scroll state of the scrollable ancestor.
func (c *Container) Metrics(ctx context.Context) (roster.ScrollMetrics, error) {
	res, err := c.scroller.Context(ctx).Eval(metricsJS)
	if err != nil {
		return roster.ScrollMetrics{}, fmt.Errorf("read scroll metrics: %w", err)
	}
	v := res.Value
	return roster.ScrollMetrics{
		ScrollTop:    v.Get("scrollTop").Num(),
		ScrollHeight: v.Get("scrollHeight").Num(),
		ClientHeight: v.Get("clientHeight").Num(),
		ViewportTop:  v.Get("top").Num(),
	}, nil
}

// ScrollTo sets the scroll position. The browser clamps it to the range.
func (c *Container) ScrollTo(ctx context.Context, top float64) error {
	if _, err := c.scroller.Context(ctx).Eval(scrollToJS, top); err != nil {
		return fmt.Errorf("scroll to %.0f: %w", top, err)
	}
	return nil
}

// node is a list item with its layout captured at query time.
type node struct {
	el     *rod.Element
	id     string
	bounds roster.Rect
}

func newNode(ctx context.Context, el *rod.Element) (*node, error) {
	el = el.Context(ctx)
	desc, err := el.Describe(0, false)
	if err != nil {
		return nil, err
	}
	res, err := el.Eval(boundsJS)
	if err != nil {
		return nil, err
	}
	return &node{
		el: el,
		id: strconv.Itoa(int(desc.BackendNodeID)),
		bounds: roster.Rect{
			Top:    res.Value.Get("top").Num(),
			Bottom: res.Value.Get("bottom").Num(),
		},
	}, nil
}

func (n *node) ID() string          { return n.id }
func (n *node) Bounds() roster.Rect { return n.bounds }

func (n *node) HTML(ctx context.Context) (string, error) {
	return n.el.Context(ctx).HTML()
}
