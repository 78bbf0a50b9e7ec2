package harvest

import (
	"context"
	"fmt"

	"github.com/fwojciec/roster"
)

// DefaultItemSelectors are tried in order when no selectors are configured.
var DefaultItemSelectors = []string{
	`[role="listitem"]`,
	`[role="row"]`,
	`[role="option"]`,
	`li`,
}

var _ roster.NodeFinder = (*SelectorFinder)(nil)

// SelectorFinder finds item nodes by trying CSS selectors in order and
// keeping the first one that matches the most nodes.
type SelectorFinder struct {
	Selectors []string
}

// NewSelectorFinder returns a SelectorFinder using selectors, or
// DefaultItemSelectors when none are given.
func NewSelectorFinder(selectors ...string) *SelectorFinder {
	if len(selectors) == 0 {
		selectors = DefaultItemSelectors
	}
	return &SelectorFinder{Selectors: selectors}
}

// FindItemNodes returns the nodes matched by the best selector. A selector
// that fails is skipped; an error is returned only if all of them fail.
func (f *SelectorFinder) FindItemNodes(ctx context.Context, c roster.Container) ([]roster.Node, error) {
	var (
		best    []roster.Node
		lastErr error
		failed  int
	)
	for _, sel := range f.Selectors {
		nodes, err := c.QueryAll(ctx, sel)
		if err != nil {
			lastErr = fmt.Errorf("query %q: %w", sel, err)
			failed++
			continue
		}
		if len(nodes) > len(best) {
			best = nodes
		}
	}
	if failed > 0 && failed == len(f.Selectors) {
		return nil, lastErr
	}
	return best, nil
}
