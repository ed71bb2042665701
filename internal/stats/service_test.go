package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
)

type fakeLister struct {
	products []models.Product
	errs     []error
	calls    int
}

func (f *fakeLister) All(ctx context.Context) ([]models.Product, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.products, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, message string) {
	f.messages = append(f.messages, message)
}

type fakeExporter struct {
	rows []any
	err  error
}

func (f *fakeExporter) InsertStatsSnapshot(ctx context.Context, row any) error {
	f.rows = append(f.rows, row)
	return f.err
}

func TestRefreshComputesAndCachesSnapshot(t *testing.T) {
	lister := &fakeLister{products: []models.Product{
		{Category: enums.ProductCategoryHealthy, HealthScore: intPtr(80)},
		{Category: enums.ProductCategoryHarmful, HasFatalIncidents: true},
	}}
	exporter := &fakeExporter{}
	svc, err := NewService(lister, nil, exporter, nil, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	snapshot, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if snapshot.TotalProducts != 2 || snapshot.HighRiskCount != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	if current := svc.Current(); current == nil || current.TotalProducts != 2 {
		t.Fatal("expected cached snapshot after refresh")
	}
	if len(exporter.rows) != 1 {
		t.Fatalf("expected one exported row, got %d", len(exporter.rows))
	}
	row, ok := exporter.rows[0].(SnapshotRow)
	if !ok {
		t.Fatalf("expected SnapshotRow export, got %T", exporter.rows[0])
	}
	if row.TotalProducts != 2 {
		t.Fatalf("exported row out of sync: %+v", row)
	}
}

func TestRefreshRetriesWithFreshFetch(t *testing.T) {
	lister := &fakeLister{
		products: []models.Product{{Category: enums.ProductCategoryHealthy}},
		errs:     []error{errors.New("connection reset"), nil},
	}
	svc, err := NewService(lister, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	snapshot, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("expected recovery on second attempt, got %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected 2 fetch attempts, got %d", lister.calls)
	}
	if snapshot.TotalProducts != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestRefreshExhaustionNotifiesNonFatally(t *testing.T) {
	lister := &fakeLister{
		errs: []error{
			errors.New("connection reset"),
			errors.New("connection reset"),
			errors.New("connection reset"),
		},
	}
	notifier := &fakeNotifier{}
	svc, err := NewService(lister, notifier, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected error after exhausting recovery attempts")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAggregation {
		t.Fatalf("expected aggregation error, got %v", err)
	}

	if lister.calls != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", lister.calls)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.messages))
	}
	want := pkgerrors.MetadataFor(pkgerrors.CodeAggregation).PublicMessage
	if notifier.messages[0] != want {
		t.Fatalf("expected closed-set message %q, got %q", want, notifier.messages[0])
	}

	if svc.Current() != nil {
		t.Fatal("failed refresh must not publish a snapshot")
	}
}

func TestRefreshSurvivesExporterFailure(t *testing.T) {
	lister := &fakeLister{products: []models.Product{{Category: enums.ProductCategoryHealthy}}}
	exporter := &fakeExporter{err: errors.New("bq unavailable")}
	svc, err := NewService(lister, nil, exporter, nil, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("export failure must not fail the refresh: %v", err)
	}
}

func TestSnapshotRowMapsAllFields(t *testing.T) {
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	snapshot := Aggregate([]models.Product{
		{Category: enums.ProductCategoryHealthy, HealthScore: intPtr(95), CreatedAt: now.Add(-time.Hour)},
	}, now)

	row := NewSnapshotRow(snapshot)
	if row.TotalProducts != 1 || row.TopPerformerCount != 1 || row.DailyScans != 1 {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.GeneratedAt != snapshot.GeneratedAt {
		t.Fatal("generated_at should carry over")
	}
}
