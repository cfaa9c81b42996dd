package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StorageGC reclaims badger value-log space left behind by drained inboxes.
// Badger only rewrites a log file when at least the given ratio is garbage,
// so running with nothing to collect is cheap.
type StorageGC struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	log      *slog.Logger
}

func NewStorageGC(db *badger.DB, interval time.Duration, log *slog.Logger) *StorageGC {
	return &StorageGC{db: db, interval: interval, ratio: 0.5, log: log}
}

func (w *StorageGC) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// One pass per tick; ErrNoRewrite just means nothing to reclaim
			if err := w.db.RunValueLogGC(w.ratio); err != nil && err != badger.ErrNoRewrite {
				w.log.Warn("value log GC failed", "error", err)
			}
		}
	}
}
