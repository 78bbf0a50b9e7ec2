// Package fs provides file exports of harvest results.
package fs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/roster"
)

// Ensure exporters implement roster.Exporter at compile time.
var (
	_ roster.Exporter = (*JSONExporter)(nil)
	_ roster.Exporter = (*CSVExporter)(nil)
)

// JSONExporter writes a result as an indented JSON document.
type JSONExporter struct{}

func (JSONExporter) Extension() string { return "json" }

func (JSONExporter) Export(ctx context.Context, result *roster.Result, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// CSVExporter writes one row per member with a header row.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Export(ctx context.Context, result *roster.Result, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "phone", "is_admin", "extracted_at"}); err != nil {
		return err
	}
	for i, m := range result.Members {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{
			escapeFormula(m.Name),
			m.Phone,
			strconv.FormatBool(m.IsAdmin),
			m.ExtractedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// escapeFormula keeps spreadsheet applications from evaluating a name as
// a formula.
func escapeFormula(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// ExporterFor returns the exporter for a format name ("json" or "csv").
func ExporterFor(format string) (roster.Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSONExporter{}, nil
	case "csv":
		return CSVExporter{}, nil
	}
	return nil, roster.Errorf(roster.EINVALID, "unsupported export format %q", format)
}
