package harvest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/harvest"
	"github.com/fwojciec/roster/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(ids ...string) []roster.Node {
	out := make([]roster.Node, len(ids))
	for i, id := range ids {
		out[i] = &mock.Node{IDFn: func() string { return id }}
	}
	return out
}

func TestSelectorFinder(t *testing.T) {
	t.Parallel()

	t.Run("keeps the first selector with the most matches", func(t *testing.T) {
		t.Parallel()

		c := &mock.Container{
			QueryAllFn: func(_ context.Context, sel string) ([]roster.Node, error) {
				switch sel {
				case "a":
					return nodes("a1"), nil
				case "b":
					return nodes("b1", "b2"), nil
				case "c":
					return nodes("c1", "c2"), nil
				}
				return nil, nil
			},
		}
		f := harvest.NewSelectorFinder("a", "b", "c")

		got, err := f.FindItemNodes(context.Background(), c)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b1", got[0].ID())
	})

	t.Run("skips failing selectors", func(t *testing.T) {
		t.Parallel()

		c := &mock.Container{
			QueryAllFn: func(_ context.Context, sel string) ([]roster.Node, error) {
				if sel == "bad" {
					return nil, errors.New("invalid selector")
				}
				return nodes("x"), nil
			},
		}
		f := harvest.NewSelectorFinder("bad", "good")

		got, err := f.FindItemNodes(context.Background(), c)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("returns an error when every selector fails", func(t *testing.T) {
		t.Parallel()

		c := &mock.Container{
			QueryAllFn: func(context.Context, string) ([]roster.Node, error) {
				return nil, errors.New("detached")
			},
		}
		f := harvest.NewSelectorFinder("a", "b")

		_, err := f.FindItemNodes(context.Background(), c)

		require.Error(t, err)
	})

	t.Run("uses default selectors", func(t *testing.T) {
		t.Parallel()

		f := harvest.NewSelectorFinder()

		assert.Equal(t, harvest.DefaultItemSelectors, f.Selectors)
	})
}
