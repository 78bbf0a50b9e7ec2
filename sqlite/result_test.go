package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var extractedAt = time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)

func newResult(group string, n int) *roster.Result {
	members := make([]roster.Member, n)
	for i := range members {
		members[i] = roster.Member{
			Key:         fmt.Sprintf("1555000%04d", i),
			Name:        fmt.Sprintf("Person %d", i),
			Phone:       fmt.Sprintf("+1 555 000 %04d", i),
			IsAdmin:     i == 0,
			ExtractedAt: extractedAt,
		}
	}
	return &roster.Result{
		GroupName:    group,
		SourceURL:    "https://chat.example.com/g/1",
		TotalMembers: n,
		Members:      members,
		ExtractedAt:  extractedAt,
	}
}

func TestResultService_CreateResult(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and fingerprint", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		result := newResult("Book club", 3)

		err := svc.CreateResult(context.Background(), result)

		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)
		assert.Equal(t, sqlite.Fingerprint(result.Members), result.Fingerprint)
	})

	t.Run("returns error for invalid result", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))

		err := svc.CreateResult(context.Background(), &roster.Result{})

		assert.Equal(t, roster.EINVALID, roster.ErrorCode(err))
	})

	t.Run("rolls back when a member cannot be stored", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewResultService(db)
		result := newResult("Book club", 2)
		result.Members[1].Key = result.Members[0].Key

		err := svc.CreateResult(context.Background(), result)
		require.Error(t, err)

		found, err := svc.FindResults(context.Background(), roster.ResultFilter{})
		require.NoError(t, err)
		assert.Empty(t, found)
		assert.Empty(t, result.ID)
	})
}

func TestResultService_FindResultByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips members in order", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		result := newResult("Book club", 25)
		result.Stopped = true
		require.NoError(t, svc.CreateResult(ctx, result))

		got, err := svc.FindResultByID(ctx, result.ID)

		require.NoError(t, err)
		assert.Equal(t, result, got)
	})

	t.Run("round-trips an empty result", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		result := newResult("Quiet group", 0)
		require.NoError(t, svc.CreateResult(ctx, result))

		got, err := svc.FindResultByID(ctx, result.ID)

		require.NoError(t, err)
		assert.True(t, got.Empty())
		assert.Empty(t, got.Members)
	})

	t.Run("returns not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))

		_, err := svc.FindResultByID(context.Background(), "missing")

		assert.Equal(t, roster.ENOTFOUND, roster.ErrorCode(err))
	})
}

func TestResultService_FindResults(t *testing.T) {
	t.Parallel()

	t.Run("lists newest first without members", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		older := newResult("A", 2)
		older.ExtractedAt = extractedAt.Add(-time.Hour)
		newer := newResult("B", 3)
		require.NoError(t, svc.CreateResult(ctx, older))
		require.NoError(t, svc.CreateResult(ctx, newer))

		got, err := svc.FindResults(ctx, roster.ResultFilter{})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, 3, got[0].TotalMembers)
		assert.Nil(t, got[0].Members)
		assert.Equal(t, older.ID, got[1].ID)
	})

	t.Run("filters by group name", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, svc.CreateResult(ctx, newResult("A", 1)))
		require.NoError(t, svc.CreateResult(ctx, newResult("B", 1)))

		name := "B"
		got, err := svc.FindResults(ctx, roster.ResultFilter{GroupName: &name})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "B", got[0].GroupName)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		for i := range 5 {
			r := newResult(fmt.Sprintf("G%d", i), 1)
			r.ExtractedAt = extractedAt.Add(time.Duration(i) * time.Minute)
			require.NoError(t, svc.CreateResult(ctx, r))
		}

		got, err := svc.FindResults(ctx, roster.ResultFilter{Limit: 2, Offset: 1})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "G3", got[0].GroupName)
		assert.Equal(t, "G2", got[1].GroupName)

		got, err = svc.FindResults(ctx, roster.ResultFilter{Offset: 3})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "G1", got[0].GroupName)
	})

	t.Run("orders sub-second timestamps", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))
		ctx := context.Background()
		early := newResult("early", 1)
		late := newResult("late", 1)
		late.ExtractedAt = extractedAt.Add(500 * time.Millisecond)
		late.Members[0].ExtractedAt = late.ExtractedAt
		require.NoError(t, svc.CreateResult(ctx, late))
		require.NoError(t, svc.CreateResult(ctx, early))

		got, err := svc.FindResults(ctx, roster.ResultFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "late", got[0].GroupName)

		stored, err := svc.FindResultByID(ctx, late.ID)
		require.NoError(t, err)
		assert.True(t, stored.Members[0].ExtractedAt.Equal(late.ExtractedAt))
	})
}

func TestResultService_DeleteResult(t *testing.T) {
	t.Parallel()

	t.Run("removes result and members", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewResultService(db)
		ctx := context.Background()
		result := newResult("A", 4)
		require.NoError(t, svc.CreateResult(ctx, result))

		require.NoError(t, svc.DeleteResult(ctx, result.ID))

		_, err := svc.FindResultByID(ctx, result.ID)
		assert.Equal(t, roster.ENOTFOUND, roster.ErrorCode(err))

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM members").Scan(&n))
		assert.Zero(t, n)
	})

	t.Run("returns not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewResultService(setupTestDB(t))

		err := svc.DeleteResult(context.Background(), "missing")

		assert.Equal(t, roster.ENOTFOUND, roster.ErrorCode(err))
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("ignores member order", func(t *testing.T) {
		t.Parallel()

		a := []roster.Member{{Key: "1"}, {Key: "2"}, {Key: "3"}}
		b := []roster.Member{{Key: "3"}, {Key: "1"}, {Key: "2"}}

		assert.Equal(t, sqlite.Fingerprint(a), sqlite.Fingerprint(b))
	})

	t.Run("changes with membership", func(t *testing.T) {
		t.Parallel()

		a := []roster.Member{{Key: "1"}, {Key: "2"}}
		b := []roster.Member{{Key: "1"}, {Key: "3"}}

		assert.NotEqual(t, sqlite.Fingerprint(a), sqlite.Fingerprint(b))
		assert.Len(t, sqlite.Fingerprint(a), 16)
	})
}
