package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/roster"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ roster.ResultService = (*ResultService)(nil)

// ResultService implements roster.ResultService using SQLite.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// Fingerprint returns the xxHash of the sorted member keys as a hex string.
// Two harvests of an unchanged list have the same fingerprint regardless
// of the order members were seen in.
func Fingerprint(members []roster.Member) string {
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = m.Key
	}
	slices.Sort(keys)

	h := xxhash.New()
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.WriteString("\n")
	}
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, h.Sum64()))
}

// CreateResult stores a result with its members in one transaction.
func (s *ResultService) CreateResult(ctx context.Context, result *roster.Result) error {
	if err := result.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	fingerprint := Fingerprint(result.Members)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO results (id, group_name, source_url, total_members, stopped, fingerprint, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, result.GroupName, result.SourceURL, result.TotalMembers, result.Stopped, fingerprint,
		formatTime(result.ExtractedAt)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO members (result_id, position, key, name, phone, is_admin, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range result.Members {
		extractedAt := m.ExtractedAt
		if extractedAt.IsZero() {
			extractedAt = result.ExtractedAt
		}
		if _, err := stmt.ExecContext(ctx, id, i, m.Key, m.Name, m.Phone, m.IsAdmin,
			formatTime(extractedAt)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	result.ID = id
	result.Fingerprint = fingerprint
	return nil
}

// FindResultByID retrieves a result with its members in harvest order.
func (s *ResultService) FindResultByID(ctx context.Context, id string) (*roster.Result, error) {
	results, err := s.findResults(ctx, roster.ResultFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, roster.Errorf(roster.ENOTFOUND, "result not found")
	}
	result := results[0]

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, name, phone, is_admin, extracted_at
		FROM members
		WHERE result_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result.Members = make([]roster.Member, 0, result.TotalMembers)
	for rows.Next() {
		var m roster.Member
		var extractedAt string
		if err := rows.Scan(&m.Key, &m.Name, &m.Phone, &m.IsAdmin, &extractedAt); err != nil {
			return nil, err
		}
		if m.ExtractedAt, err = parseTime(extractedAt, "member extracted_at"); err != nil {
			return nil, err
		}
		result.Members = append(result.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindResults retrieves results matching the filter, newest first. Members
// are not loaded.
func (s *ResultService) FindResults(ctx context.Context, filter roster.ResultFilter) ([]*roster.Result, error) {
	return s.findResults(ctx, filter)
}

func (s *ResultService) findResults(ctx context.Context, filter roster.ResultFilter) ([]*roster.Result, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, group_name, source_url, total_members, stopped, fingerprint, extracted_at FROM results WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.GroupName != nil {
		query.WriteString(" AND group_name = ?")
		args = append(args, *filter.GroupName)
	}

	query.WriteString(" ORDER BY extracted_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*roster.Result
	for rows.Next() {
		var r roster.Result
		var extractedAt string
		if err := rows.Scan(&r.ID, &r.GroupName, &r.SourceURL, &r.TotalMembers, &r.Stopped,
			&r.Fingerprint, &extractedAt); err != nil {
			return nil, err
		}
		if r.ExtractedAt, err = parseTime(extractedAt, "extracted_at"); err != nil {
			return nil, err
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// DeleteResult permanently removes a result and its members.
func (s *ResultService) DeleteResult(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE id = ?", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return roster.Errorf(roster.ENOTFOUND, "result not found")
	}
	return nil
}
