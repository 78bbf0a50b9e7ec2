package rod

import (
	"context"
	"fmt"

	"github.com/fwojciec/roster"
	"github.com/go-rod/rod"
)

// scrollParentJS returns the nearest ancestor of this that scrolls
// vertically, falling back to the document scroller.
const scrollParentJS = `function () {
	for (let el = this; el; el = el.parentElement) {
		const oy = getComputedStyle(el).overflowY;
		if ((oy === "auto" || oy === "scroll" || oy === "overlay") && el.scrollHeight > el.clientHeight) {
			return el;
		}
	}
	return document.scrollingElement || document.documentElement;
}`

var _ roster.ContainerLocator = (*Locator)(nil)

// Locator finds the list root by trying selectors in order and pairs it
// with its scrollable ancestor.
type Locator struct {
	page      *rod.Page
	selectors []string
}

// NewLocator creates a Locator. DefaultListSelectors are used when no
// selectors are given.
func NewLocator(page *rod.Page, selectors ...string) *Locator {
	if len(selectors) == 0 {
		selectors = DefaultListSelectors
	}
	return &Locator{page: page, selectors: selectors}
}

// Locate returns ENOTFOUND if no selector matches.
func (l *Locator) Locate(ctx context.Context) (roster.Container, error) {
	page := l.page.Context(ctx)
	for _, sel := range l.selectors {
		has, root, err := page.Has(sel)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", sel, err)
		}
		if !has {
			continue
		}
		scroller, err := root.ElementByJS(rod.Eval(scrollParentJS))
		if err != nil {
			return nil, fmt.Errorf("find scroll container: %w", err)
		}
		return &Container{root: root, scroller: scroller}, nil
	}
	return nil, roster.Errorf(roster.ENOTFOUND, "member list not found")
}

var _ roster.GroupNamer = (*GroupNamer)(nil)

// GroupNamer reads the collection name from the first matching header.
type GroupNamer struct {
	page      *rod.Page
	selectors []string
}

// NewGroupNamer creates a GroupNamer.
func NewGroupNamer(page *rod.Page, selectors ...string) *GroupNamer {
	if len(selectors) == 0 {
		selectors = []string{"header [title]", "header h1", "h1"}
	}
	return &GroupNamer{page: page, selectors: selectors}
}

// GroupName returns ENOTFOUND if no selector yields text.
func (n *GroupNamer) GroupName(ctx context.Context) (string, error) {
	page := n.page.Context(ctx)
	for _, sel := range n.selectors {
		has, el, err := page.Has(sel)
		if err != nil {
			return "", fmt.Errorf("query %q: %w", sel, err)
		}
		if !has {
			continue
		}
		if title, err := el.Attribute("title"); err == nil && title != nil && *title != "" {
			return *title, nil
		}
		text, err := el.Text()
		if err != nil {
			return "", fmt.Errorf("read %q: %w", sel, err)
		}
		if text != "" {
			return text, nil
		}
	}
	return "", roster.Errorf(roster.ENOTFOUND, "group name not found")
}
