package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/artex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ artex.ResultStore = (*ResultStore)(nil)

// ResultStore implements artex.ResultStore using SQLite. Results are
// stored as their JSON contract alongside indexed summary columns.
type ResultStore struct {
	db *DB
}

// NewResultStore creates a new ResultStore.
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

const selectResults = "SELECT id, url, method, success, confidence, content_hash, body, created_at FROM results"

// Record persists res for url.
func (s *ResultStore) Record(ctx context.Context, url string, res *artex.ExtractionResult) (*artex.ResultRecord, error) {
	rec := &artex.ResultRecord{URL: url, Result: res}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	rec.ID = uuid.New().String()
	rec.Method = res.Method
	rec.Success = res.Success
	rec.Confidence = res.Confidence
	rec.CreatedAt = time.Now().UTC()
	if res.Data != nil && res.Data.Content != "" {
		rec.ContentHash = hashContent(res.Data.Content)
	}
	var ruleID string
	if res.Metadata.RuleID != nil {
		ruleID = *res.Metadata.RuleID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, url, domain, method, success, confidence, rule_id, content_hash, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.URL, artex.DomainOf(url), rec.Method, rec.Success, rec.Confidence, ruleID,
		rec.ContentHash, string(body), formatTime(rec.CreatedAt))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByID retrieves a record by ID.
func (s *ResultStore) FindByID(ctx context.Context, id string) (*artex.ResultRecord, error) {
	row := s.db.QueryRowContext(ctx, selectResults+" WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artex.Errorf(artex.ENOTFOUND, "result not found")
	}
	return rec, err
}

// FindByURL returns every record for url, newest first.
func (s *ResultStore) FindByURL(ctx context.Context, url string) ([]*artex.ResultRecord, error) {
	return s.Find(ctx, artex.ResultFilter{URL: &url})
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *ResultStore) Recent(ctx context.Context, limit int) ([]*artex.ResultRecord, error) {
	return s.Find(ctx, artex.ResultFilter{Limit: limit})
}

// Find returns records matching filter, newest first.
func (s *ResultStore) Find(ctx context.Context, filter artex.ResultFilter) ([]*artex.ResultRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString(selectResults + " WHERE 1=1")
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Method != nil {
		query.WriteString(" AND method = ?")
		args = append(args, *filter.Method)
	}
	if filter.SuccessOnly {
		query.WriteString(" AND success = 1")
	}
	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*artex.ResultRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*artex.ResultRecord, error) {
	var rec artex.ResultRecord
	var body, createdAt string
	if err := row.Scan(&rec.ID, &rec.URL, &rec.Method, &rec.Success, &rec.Confidence,
		&rec.ContentHash, &body, &createdAt); err != nil {
		return nil, err
	}

	var res artex.ExtractionResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", rec.ID, err)
	}
	rec.Result = &res

	var err error
	rec.CreatedAt, err = parseTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
