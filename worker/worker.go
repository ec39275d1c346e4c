package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"restoanalytics/catalog"
	"restoanalytics/database"
	"restoanalytics/metrics"
)

const (
	DefaultInterval = 10 * time.Minute
	buildTimeout    = 2 * time.Minute
)

// CatalogWorker rebuilds the catalog document on a fixed interval.
type CatalogWorker struct {
	log      zerolog.Logger
	store    database.Store
	holder   *catalog.Holder
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time
}

// NewCatalogWorker returns a worker that refreshes holder every interval,
// or every DefaultInterval when interval is not positive.
func NewCatalogWorker(log zerolog.Logger, store database.Store, holder *catalog.Holder, m *metrics.Metrics, interval time.Duration) *CatalogWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &CatalogWorker{
		log:      log,
		store:    store,
		holder:   holder,
		metrics:  m,
		interval: interval,
		now:      time.Now,
	}
}

// Run builds the catalog immediately and then on every tick until ctx is done.
func (w *CatalogWorker) Run(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("starting catalog worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Rebuild(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("catalog worker stopped")
			return
		case <-ticker.C:
			w.Rebuild(ctx)
		}
	}
}

// Rebuild builds one catalog document. On failure the previous document is
// kept.
func (w *CatalogWorker) Rebuild(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	start := time.Now()
	doc, err := catalog.Build(ctx, w.store, w.now())
	w.metrics.ObserveCatalogRebuild(err, time.Since(start))
	if err != nil {
		w.log.Error().Err(err).Msg("catalog rebuild failed")
		return err
	}

	w.holder.Set(doc)
	w.log.Info().
		Int("countries", len(doc.Locations)).
		Int("cuisines", len(doc.Cuisines)).
		Int("meals", len(doc.Meals)).
		Dur("took", time.Since(start)).
		Msg("catalog rebuilt")
	return nil
}
