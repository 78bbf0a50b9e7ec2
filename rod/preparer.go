package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/roster"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultListSelectors match the root of a virtualized list.
var DefaultListSelectors = []string{
	`[role="list"]`,
	`[role="grid"]`,
	`[role="listbox"]`,
}

// DefaultWaitTimeout bounds how long Prepare waits for page elements.
const DefaultWaitTimeout = 15 * time.Second

var _ roster.SessionPreparer = (*Preparer)(nil)

// Preparer brings a member list on screen: it loads the page, optionally
// clicks the control that opens the list and waits for the list to appear.
type Preparer struct {
	page          *rod.Page
	url           string
	openSelector  string
	listSelectors []string
	timeout       time.Duration
}

// PreparerOption configures a Preparer.
type PreparerOption func(*Preparer)

// WithOpenSelector sets a control to click before the list appears, such
// as a "View all members" button.
func WithOpenSelector(sel string) PreparerOption {
	return func(p *Preparer) {
		p.openSelector = sel
	}
}

// WithListSelectors sets the selectors awaited after opening.
func WithListSelectors(selectors ...string) PreparerOption {
	return func(p *Preparer) {
		p.listSelectors = selectors
	}
}

// WithWaitTimeout sets how long to wait for each page element.
func WithWaitTimeout(d time.Duration) PreparerOption {
	return func(p *Preparer) {
		p.timeout = d
	}
}

// NewPreparer creates a Preparer that loads url in page.
func NewPreparer(page *rod.Page, url string, opts ...PreparerOption) *Preparer {
	p := &Preparer{
		page:          page,
		url:           url,
		listSelectors: DefaultListSelectors,
		timeout:       DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare navigates and opens the list. Missing elements are reported as
// ENOTFOUND so the caller may retry.
func (p *Preparer) Prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page := p.page.Context(ctx)

	if err := page.Navigate(p.url); err != nil {
		return fmt.Errorf("navigate %s: %w", p.url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", p.url, err)
	}

	if p.openSelector != "" {
		el, err := page.Timeout(p.timeout).Element(p.openSelector)
		if err != nil {
			return roster.Errorf(roster.ENOTFOUND, "open control %q not found: %v", p.openSelector, err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("click %q: %w", p.openSelector, err)
		}
	}

	if len(p.listSelectors) == 0 {
		return nil
	}
	race := page.Timeout(p.timeout).Race()
	for _, sel := range p.listSelectors {
		race = race.Element(sel)
	}
	if _, err := race.Do(); err != nil {
		return roster.Errorf(roster.ENOTFOUND, "member list did not appear: %v", err)
	}
	return nil
}
