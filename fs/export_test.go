package fs_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/fs"
	"github.com/fwojciec/roster/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func testResult() *roster.Result {
	return &roster.Result{
		ID:           "r1",
		GroupName:    "Hiking",
		TotalMembers: 2,
		Members: []roster.Member{
			{Key: "15550001", Name: "Ada", Phone: "+1 555 0001", IsAdmin: true, ExtractedAt: at},
			{Key: "=sum(a1)", Name: "=SUM(A1)", ExtractedAt: at},
		},
		ExtractedAt: at,
	}
}

func TestJSONExporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := fs.JSONExporter{}

	require.NoError(t, e.Export(context.Background(), testResult(), &buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "json", e.Extension())
	assert.Equal(t, "Hiking", got["groupName"])
	assert.EqualValues(t, 2, got["totalMembers"])
	members := got["members"].([]any)
	require.Len(t, members, 2)
	first := members[0].(map[string]any)
	assert.Equal(t, "Ada", first["name"])
	assert.Equal(t, true, first["isAdmin"])
	assert.NotContains(t, first, "key")
}

func TestCSVExporter(t *testing.T) {
	t.Parallel()

	t.Run("writes a header and one row per member", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		e := fs.CSVExporter{}

		require.NoError(t, e.Export(context.Background(), testResult(), &buf))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, "csv", e.Extension())
		assert.Equal(t, [][]string{
			{"name", "phone", "is_admin", "extracted_at"},
			{"Ada", "+1 555 0001", "true", "2026-02-03T04:05:06Z"},
			{"'=SUM(A1)", "", "false", "2026-02-03T04:05:06Z"},
		}, rows)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fs.CSVExporter{}.Export(ctx, testResult(), io.Discard)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestExporterFor(t *testing.T) {
	t.Parallel()

	e, err := fs.ExporterFor("CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", e.Extension())

	e, err = fs.ExporterFor("json")
	require.NoError(t, err)
	assert.Equal(t, "json", e.Extension())

	_, err = fs.ExporterFor("xml")
	assert.Equal(t, roster.EINVALID, roster.ErrorCode(err))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("writes the export to a new directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "members.json")

		err := fs.WriteFile(context.Background(), path, testResult(), fs.JSONExporter{})

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"groupName": "Hiking"`)
	})

	t.Run("leaves no file behind on failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "members.csv")
		failing := &mock.Exporter{
			ExportFn: func(_ context.Context, _ *roster.Result, w io.Writer) error {
				_, _ = w.Write([]byte("partial"))
				return errors.New("disk full")
			},
		}

		err := fs.WriteFile(context.Background(), path, testResult(), failing)

		require.Error(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("replaces an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "members.csv")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		err := fs.WriteFile(context.Background(), path, testResult(), fs.CSVExporter{})

		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "old")
	})
}
