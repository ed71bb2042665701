package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
	"github.com/aurelioventura/healthscan-backend/pkg/metrics"
)

const defaultRecoveryAttempts = 3

// Service recomputes and caches the statistics snapshot.
type Service interface {
	Refresh(ctx context.Context) (*Snapshot, error)
	Current() *Snapshot
}

type productLister interface {
	All(ctx context.Context) ([]models.Product, error)
}

// Notifier delivers non-fatal user-facing notices.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Exporter receives finished snapshots for warehousing.
type Exporter interface {
	InsertStatsSnapshot(ctx context.Context, row any) error
}

type service struct {
	store         productLister
	notifier      Notifier
	exporter      Exporter
	logg          *logger.Logger
	searchMetrics *metrics.SearchMetrics
	attempts      int
	now           func() time.Time

	mu     sync.RWMutex
	latest *Snapshot
}

// NewService constructs a statistics service instance.
func NewService(store productLister, notifier Notifier, exporter Exporter, logg *logger.Logger, searchMetrics *metrics.SearchMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("product store required")
	}
	return &service{
		store:         store,
		notifier:      notifier,
		exporter:      exporter,
		logg:          logg,
		searchMetrics: searchMetrics,
		attempts:      defaultRecoveryAttempts,
		now:           time.Now,
	}, nil
}

// Refresh recomputes the snapshot from the full product collection. A
// failed attempt triggers a fresh data fetch up to the attempt budget;
// exhaustion surfaces a non-fatal notice rather than a crash.
func (s *service) Refresh(ctx context.Context) (*Snapshot, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		snapshot, err := s.computeOnce(ctx)
		if err == nil {
			s.mu.Lock()
			s.latest = snapshot
			s.mu.Unlock()
			s.export(ctx, snapshot)
			return snapshot, nil
		}

		lastErr = err
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("stats aggregation attempt %d/%d failed", attempt, s.attempts))
		}
		if ctx.Err() != nil {
			break
		}
	}

	if s.searchMetrics != nil {
		s.searchMetrics.IncStatsFailure()
	}
	s.notify(ctx, pkgerrors.MetadataFor(pkgerrors.CodeAggregation).PublicMessage)
	return nil, pkgerrors.Wrap(pkgerrors.CodeAggregation, lastErr, "refresh statistics")
}

// Current returns the most recent snapshot, or nil before the first refresh.
func (s *service) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *service) computeOnce(ctx context.Context) (snapshot *Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snapshot = nil
			err = fmt.Errorf("aggregating statistics: %v", r)
		}
	}()

	products, err := s.store.All(ctx)
	if err != nil {
		return nil, pkgerrors.Classify(err, "load products for statistics")
	}

	result := Aggregate(products, s.now())
	return &result, nil
}

func (s *service) export(ctx context.Context, snapshot *Snapshot) {
	if s.exporter == nil || snapshot == nil {
		return
	}
	if err := s.exporter.InsertStatsSnapshot(ctx, NewSnapshotRow(*snapshot)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "exporting stats snapshot failed")
	}
}

func (s *service) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, message)
}
