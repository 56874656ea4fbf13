package store

import (
	"context"
	"time"

	"github.com/daviddao/learnlog/pkg/model"
)

// StoreInterface is the set of store operations the CLI depends on.
type StoreInterface interface {
	Close() error
	Path() string

	// --- Records ---

	LoadRecords(ctx context.Context) (model.Records, error)
	SaveRecords(ctx context.Context, recs model.Records) error
	LastSaved(ctx context.Context) (time.Time, error)

	// --- Activity ---

	AppendActivity(ctx context.Context, a *Activity) (int64, error)
	ListActivity(ctx context.Context, kind string, limit int) ([]Activity, error)
}

var _ StoreInterface = (*Store)(nil)
