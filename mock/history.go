package mock

import (
	"context"

	"github.com/fwojciec/artex"
)

// Compile-time interface verification.
var _ artex.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of artex.ResultStore.
type ResultStore struct {
	RecordFn    func(ctx context.Context, url string, res *artex.ExtractionResult) (*artex.ResultRecord, error)
	FindByIDFn  func(ctx context.Context, id string) (*artex.ResultRecord, error)
	FindByURLFn func(ctx context.Context, url string) ([]*artex.ResultRecord, error)
	FindFn      func(ctx context.Context, filter artex.ResultFilter) ([]*artex.ResultRecord, error)
	RecentFn    func(ctx context.Context, limit int) ([]*artex.ResultRecord, error)
}

func (s *ResultStore) Record(ctx context.Context, url string, res *artex.ExtractionResult) (*artex.ResultRecord, error) {
	return s.RecordFn(ctx, url, res)
}

func (s *ResultStore) FindByID(ctx context.Context, id string) (*artex.ResultRecord, error) {
	return s.FindByIDFn(ctx, id)
}

func (s *ResultStore) FindByURL(ctx context.Context, url string) ([]*artex.ResultRecord, error) {
	return s.FindByURLFn(ctx, url)
}

func (s *ResultStore) Find(ctx context.Context, filter artex.ResultFilter) ([]*artex.ResultRecord, error) {
	return s.FindFn(ctx, filter)
}

func (s *ResultStore) Recent(ctx context.Context, limit int) ([]*artex.ResultRecord, error) {
	return s.RecentFn(ctx, limit)
}
