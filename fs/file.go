package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/roster"
)

// WriteFile exports result to path. The file is written next to its final
// location and renamed into place, so a failed export never leaves a
// partial file behind.
func WriteFile(ctx context.Context, path string, result *roster.Result, e roster.Exporter) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := e.Export(ctx, result, tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
