package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/roster/cmd/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"harvest", "simulate", "list", "show", "export", "delete"}

// fastConfig keeps every delay at a millisecond so that simulated harvests
// finish quickly on the wall clock.
const fastConfig = `harvest:
  settle_delay: 1ms
  pause_interval: 1ms
  confirm_delay: 1ms
  sweep_delay: 1ms
  default_delay: 1ms
  slow_delay: 1ms
  fast_delay: 1ms
  backoff: 1ms
  progress_interval: -1ns
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	return m
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range allCommands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help succeeds without opening the database", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		for _, cmd := range allCommands {
			assert.Contains(t, stdout.String(), cmd)
		}
		assert.NoFileExists(t, m.DBPath)
	})

	t.Run("returns error without a command", func(t *testing.T) {
		t.Parallel()

		err := newTestMain(t).Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("simulates, stores and lists a harvest", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		cfg := writeConfig(t, fastConfig)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--config", cfg, "simulate", "--items", "30"}, stdout, stderr)

		require.NoError(t, err, stderr.String())
		assert.Contains(t, stdout.String(), "[100%] done 30")
		assert.Contains(t, stdout.String(), `Collected 30 members from "Simulated group"`)
		assert.Contains(t, stdout.String(), "Saved result ")

		stdout.Reset()
		err = newMainAt(m.DBPath).Run(context.Background(), []string{"list"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Simulated group  30 members")
	})

	t.Run("writes the simulated result to a file", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		cfg := writeConfig(t, fastConfig)
		out := filepath.Join(t.TempDir(), "members.csv")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{
			"--config", cfg, "simulate", "--items", "12", "--duplicates", "3",
			"--no-save", "--out", out, "--format", "csv",
		}, stdout, stderr)

		require.NoError(t, err, stderr.String())
		assert.NotContains(t, stdout.String(), "Saved result")
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "name,phone,is_admin,extracted_at\n")
		assert.Contains(t, string(data), "Person 0011")
	})

	t.Run("reports an empty list", func(t *testing.T) {
		t.Parallel()

		cfg := writeConfig(t, fastConfig)
		stdout := &bytes.Buffer{}

		err := newTestMain(t).Run(context.Background(), []string{"--config", cfg, "simulate", "--items", "0"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No members found")
	})

	t.Run("rejects an invalid config file", func(t *testing.T) {
		t.Parallel()

		cfg := writeConfig(t, "harvest:\n  settle: fast\n")
		stderr := &bytes.Buffer{}

		err := newTestMain(t).Run(context.Background(), []string{"--config", cfg, "list"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "parse config")
	})
}

func newMainAt(path string) *main.Main {
	m := main.NewMain()
	m.DBPath = path
	return m
}
