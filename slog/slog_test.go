package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/mock"
	rslog "github.com/fwojciec/roster/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingPreparer_Prepare(t *testing.T) {
	t.Parallel()

	t.Run("logs duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SessionPreparer{PrepareFn: func(context.Context) error { return nil }}

		err := rslog.NewLoggingPreparer(inner, debugLogger(&buf)).Prepare(context.Background())

		require.NoError(t, err)
		assert.Contains(t, buf.String(), `msg="prepare session"`)
		assert.Contains(t, buf.String(), "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SessionPreparer{PrepareFn: func(context.Context) error { return errors.New("navigation timeout") }}

		err := rslog.NewLoggingPreparer(inner, debugLogger(&buf)).Prepare(context.Background())

		require.Error(t, err)
		assert.Contains(t, buf.String(), `err="navigation timeout"`)
	})
}

func TestLoggingLocator_Locate(t *testing.T) {
	t.Parallel()

	t.Run("logs found list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ContainerLocator{
			LocateFn: func(context.Context) (roster.Container, error) { return &mock.Container{}, nil },
		}

		c, err := rslog.NewLoggingLocator(inner, debugLogger(&buf)).Locate(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, c)
		assert.Contains(t, buf.String(), "found=true")
	})

	t.Run("logs missing list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ContainerLocator{
			LocateFn: func(context.Context) (roster.Container, error) {
				return nil, roster.Errorf(roster.ENOTFOUND, "member list not found")
			},
		}

		_, err := rslog.NewLoggingLocator(inner, debugLogger(&buf)).Locate(context.Background())

		assert.Equal(t, roster.ENOTFOUND, roster.ErrorCode(err))
		assert.Contains(t, buf.String(), "found=false")
		assert.Contains(t, buf.String(), "member list not found")
	})
}

func TestLoggingResultService(t *testing.T) {
	t.Parallel()

	t.Run("logs created result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ResultService{
			CreateResultFn: func(_ context.Context, r *roster.Result) error {
				r.ID = "abc"
				return nil
			},
		}
		svc := rslog.NewLoggingResultService(inner, debugLogger(&buf))

		err := svc.CreateResult(context.Background(), &roster.Result{TotalMembers: 3})

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "id=abc")
		assert.Contains(t, buf.String(), "members=3")
	})

	t.Run("logs result count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ResultService{
			FindResultsFn: func(context.Context, roster.ResultFilter) ([]*roster.Result, error) {
				return []*roster.Result{{}, {}}, nil
			},
		}
		svc := rslog.NewLoggingResultService(inner, debugLogger(&buf))

		got, err := svc.FindResults(context.Background(), roster.ResultFilter{})

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Contains(t, buf.String(), "count=2")
	})

	t.Run("logs lookups and deletes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ResultService{
			FindResultByIDFn: func(context.Context, string) (*roster.Result, error) {
				return nil, roster.Errorf(roster.ENOTFOUND, "result not found")
			},
			DeleteResultFn: func(context.Context, string) error { return nil },
		}
		svc := rslog.NewLoggingResultService(inner, debugLogger(&buf))

		_, err := svc.FindResultByID(context.Background(), "r1")
		require.Error(t, err)
		require.NoError(t, svc.DeleteResult(context.Background(), "r1"))

		assert.Contains(t, buf.String(), `msg="find result" id=r1`)
		assert.Contains(t, buf.String(), `msg="delete result" id=r1`)
	})
}
