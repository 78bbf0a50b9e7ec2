package harvest_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/harvest"
	"github.com/fwojciec/roster/mock"
	"github.com/fwojciec/roster/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	t.Parallel()

	t.Run("runs a harvest and keeps the last progress", func(t *testing.T) {
		t.Parallel()

		svc := harvest.NewService(newRunner(sim.New(sim.Generate(50)), testConfig(), mock.NewClock(testStart)))
		var running bool

		result, err := svc.Start(context.Background(), func(roster.Progress) {
			running = running || svc.Status().Running
		})

		require.NoError(t, err)
		assert.Len(t, result.Members, 50)
		assert.True(t, running)

		st := svc.Status()
		assert.False(t, st.Running)
		assert.Equal(t, roster.Progress{Status: roster.StatusDone, Count: 50, Percent: 100}, st.Progress)
	})

	t.Run("rejects a second harvest while one runs", func(t *testing.T) {
		t.Parallel()

		svc := harvest.NewService(newRunner(sim.New(sim.Generate(30)), testConfig(), mock.NewClock(testStart)))
		var conflict error
		tried := false

		_, err := svc.Start(context.Background(), func(roster.Progress) {
			if !tried {
				tried = true
				_, conflict = svc.Start(context.Background(), nil)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, roster.ECONFLICT, roster.ErrorCode(conflict))
	})

	t.Run("accepts a new harvest after the previous one ends", func(t *testing.T) {
		t.Parallel()

		list := sim.New(sim.Generate(30))
		svc := harvest.NewService(newRunner(list, testConfig(), mock.NewClock(testStart)))

		_, err := svc.Start(context.Background(), nil)
		require.NoError(t, err)
		result, err := svc.Start(context.Background(), nil)
		require.NoError(t, err)

		assert.Len(t, result.Members, 30)
	})

	t.Run("stop returns the members collected so far", func(t *testing.T) {
		t.Parallel()

		svc := harvest.NewService(newRunner(sim.New(sim.Generate(250)), testConfig(), mock.NewClock(testStart)))
		stoppedAt := -1
		var stopping bool

		result, err := svc.Start(context.Background(), func(p roster.Progress) {
			if p.Count >= 40 && stoppedAt < 0 {
				stoppedAt = p.Count
				svc.Stop()
				stopping = svc.Status().Stopping
			}
		})

		require.NoError(t, err)
		assert.True(t, stopping)
		assert.True(t, result.Stopped)
		assert.GreaterOrEqual(t, result.TotalMembers, 40)
		assert.Equal(t, stoppedAt, result.TotalMembers)
		assert.Less(t, result.TotalMembers, 250)
		assert.Equal(t, roster.StatusStopped, svc.Status().Progress.Status)
	})

	t.Run("pause suspends and resume continues without losing members", func(t *testing.T) {
		t.Parallel()

		clock := mock.NewClock(testStart)
		svc := harvest.NewService(newRunner(sim.New(sim.Generate(250)), testConfig(), clock))
		pausedSleeps := 0
		clock.OnSleep = func(time.Time, time.Duration) {
			if svc.Status().Paused {
				pausedSleeps++
				if pausedSleeps == 5 {
					svc.Resume()
				}
			}
		}
		rec := &recorder{}
		requested := false

		result, err := svc.Start(context.Background(), func(p roster.Progress) {
			rec.record(p)
			if p.Count >= 30 && !requested {
				requested = true
				svc.Pause()
			}
		})

		require.NoError(t, err)
		assert.Len(t, result.Members, 250)
		assert.Equal(t, 5, pausedSleeps)

		events := rec.all()
		idx := -1
		for i, p := range events {
			if p.Status == roster.StatusPaused {
				idx = i
				break
			}
		}
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx+1, len(events))
		assert.Equal(t, roster.StatusScanning, events[idx+1].Status)
		assert.Equal(t, events[idx].Count, events[idx+1].Count)
		assertMonotonic(t, events)
	})

	t.Run("stop releases a pause", func(t *testing.T) {
		t.Parallel()

		clock := mock.NewClock(testStart)
		svc := harvest.NewService(newRunner(sim.New(sim.Generate(250)), testConfig(), clock))
		var during roster.Status
		pausedSleeps := 0
		clock.OnSleep = func(time.Time, time.Duration) {
			if svc.Status().Paused {
				pausedSleeps++
				svc.Stop()
				during = svc.Status()
			}
		}
		requested := false

		result, err := svc.Start(context.Background(), func(p roster.Progress) {
			if p.Count >= 30 && !requested {
				requested = true
				svc.Pause()
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, pausedSleeps)
		assert.True(t, during.Stopping)
		assert.False(t, during.Paused)
		assert.True(t, result.Stopped)
		assert.Less(t, result.TotalMembers, 250)
	})

	t.Run("controls are no-ops when idle", func(t *testing.T) {
		t.Parallel()

		svc := harvest.NewService(newRunner(sim.New(nil), testConfig(), mock.NewClock(testStart)))

		svc.Pause()
		svc.Resume()
		svc.Stop()

		assert.Equal(t, roster.Status{}, svc.Status())
	})
}
