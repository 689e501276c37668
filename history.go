package artex

import (
	"context"
	"time"
)

// ResultRecord is one persisted extraction result.
type ResultRecord struct {
	ID          string
	URL         string
	Method      string
	Success     bool
	Confidence  float64
	ContentHash string
	Result      *ExtractionResult
	CreatedAt   time.Time
}

// Validate returns an error if the record is missing required fields.
func (r *ResultRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "result URL required")
	}
	if r.Result == nil {
		return Errorf(EINVALID, "result required")
	}
	return nil
}

// ResultFilter narrows a history query. Zero values match everything.
type ResultFilter struct {
	URL         *string
	Method      *string
	SuccessOnly bool
	Limit       int
	Offset      int
}

// ResultStore persists the history of produced extraction results.
// It is an audit log; the cascade never reads from it.
type ResultStore interface {
	// Record persists res for url and returns the stored record.
	Record(ctx context.Context, url string, res *ExtractionResult) (*ResultRecord, error)

	// FindByID returns the record with id. Returns ENOTFOUND if absent.
	FindByID(ctx context.Context, id string) (*ResultRecord, error)

	// FindByURL returns every record for url, newest first.
	FindByURL(ctx context.Context, url string) ([]*ResultRecord, error)

	// Find returns records matching filter, newest first.
	Find(ctx context.Context, filter ResultFilter) ([]*ResultRecord, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*ResultRecord, error)
}
