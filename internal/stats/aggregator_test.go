package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
)

func intPtr(v int) *int { return &v }

func costPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestAggregateEmptyCollectionYieldsZeroSnapshot(t *testing.T) {
	now := time.Now()
	snapshot := Aggregate(nil, now)

	if snapshot.TotalProducts != 0 || snapshot.HighRiskCount != 0 || snapshot.DailyScans != 0 {
		t.Fatalf("expected zero counters, got %+v", snapshot)
	}
	if snapshot.DisplayAverageScore() != "0%" {
		t.Fatalf("expected 0%%, got %q", snapshot.DisplayAverageScore())
	}
	if snapshot.DisplayAverageCost() != "$0.00" {
		t.Fatalf("expected $0.00, got %q", snapshot.DisplayAverageCost())
	}
	if snapshot.ActiveUsers != 1200 {
		t.Fatalf("active users should clamp to the floor, got %d", snapshot.ActiveUsers)
	}
	if snapshot.AccuracyRate != 98.5 {
		t.Fatalf("unexpected accuracy rate %f", snapshot.AccuracyRate)
	}
}

func TestAggregateIsPureAndIdempotent(t *testing.T) {
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	products := []models.Product{
		{ID: uuid.New(), Category: enums.ProductCategoryHealthy, HealthScore: intPtr(90), CreatedAt: now.Add(-time.Hour)},
		{ID: uuid.New(), Category: enums.ProductCategoryHarmful, HasFatalIncidents: true, CreatedAt: now.Add(-48 * time.Hour)},
	}

	first := Aggregate(products, now)
	second := Aggregate(products, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical snapshots, got %+v vs %+v", first, second)
	}
}

func TestAggregateCategoryCountsPartitionCollection(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{Category: enums.ProductCategoryHealthy},
		{Category: enums.ProductCategoryHealthy},
		{Category: enums.ProductCategoryRestricted},
		{Category: enums.ProductCategoryHarmful},
		{Category: enums.ProductCategory("")},
		{Category: enums.ProductCategory("junk")},
	}

	snapshot := Aggregate(products, now)
	sum := snapshot.HealthyCount + snapshot.RestrictedCount + snapshot.HarmfulCount + snapshot.UncategorizedCount
	if sum != snapshot.TotalProducts {
		t.Fatalf("category counts must partition the collection: %d != %d", sum, snapshot.TotalProducts)
	}
	if snapshot.UncategorizedCount != 2 {
		t.Fatalf("expected 2 uncategorized, got %d", snapshot.UncategorizedCount)
	}
}

func TestAggregateMissingScoreCountsAsZeroInAverage(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{HealthScore: intPtr(80), Category: enums.ProductCategoryHealthy},
		{HealthScore: nil, Category: enums.ProductCategoryHealthy},
	}

	snapshot := Aggregate(products, now)
	if snapshot.AverageHealthScore != 40 {
		t.Fatalf("expected average 40, got %f", snapshot.AverageHealthScore)
	}
	if snapshot.DisplayAverageScore() != "40%" {
		t.Fatalf("expected 40%%, got %q", snapshot.DisplayAverageScore())
	}
}

func TestAggregateMissingCostCountsAsZeroInAverage(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{AnalysisCost: costPtr(0.04), Category: enums.ProductCategoryHealthy},
		{AnalysisCost: nil, Category: enums.ProductCategoryHealthy},
	}

	snapshot := Aggregate(products, now)
	want := decimal.NewFromFloat(0.02)
	if !snapshot.AverageAnalysisCost.Equal(want) {
		t.Fatalf("expected average cost %s, got %s", want, snapshot.AverageAnalysisCost)
	}
	if snapshot.DisplayAverageCost() != "$0.02" {
		t.Fatalf("expected $0.02, got %q", snapshot.DisplayAverageCost())
	}
}

func TestAggregateHighRiskUsesLogicalOr(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{HasFatalIncidents: true, HasSeriousAdverseEvents: true},
		{HasFatalIncidents: true},
		{HasSeriousAdverseEvents: true},
		{},
	}

	snapshot := Aggregate(products, now)
	if snapshot.HighRiskCount != 3 {
		t.Fatalf("expected 3 high-risk items, got %d", snapshot.HighRiskCount)
	}
	if snapshot.HighRiskCount > snapshot.TotalProducts {
		t.Fatal("high-risk count must not exceed total")
	}
}

func TestAggregateTopPerformerThresholdIsStrict(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{HealthScore: intPtr(94)},
		{HealthScore: intPtr(93)},
		{HealthScore: intPtr(100)},
		{HealthScore: nil},
	}

	snapshot := Aggregate(products, now)
	if snapshot.TopPerformerCount != 2 {
		t.Fatalf("expected 2 top performers (score > 93), got %d", snapshot.TopPerformerCount)
	}
}

func TestAggregateDailyScansWindowIsStrict(t *testing.T) {
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	products := []models.Product{
		{CreatedAt: now.Add(-time.Hour)},
		{CreatedAt: now.Add(-23 * time.Hour)},
		{CreatedAt: now.Add(-24 * time.Hour)},
		{CreatedAt: now.Add(-25 * time.Hour)},
	}

	snapshot := Aggregate(products, now)
	if snapshot.DailyScans != 2 {
		t.Fatalf("expected 2 scans strictly inside 24h, got %d", snapshot.DailyScans)
	}
}

func TestAggregateActiveUsersClamp(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{total: 0, want: 1200},
		{total: 500, want: 1200},
		{total: 601, want: 1202},
		{total: 5000, want: 10000},
		{total: 9000, want: 13000},
	}
	for _, tt := range tests {
		products := make([]models.Product, tt.total)
		snapshot := Aggregate(products, time.Now())
		if snapshot.ActiveUsers != tt.want {
			t.Fatalf("total %d: expected %d active users, got %d", tt.total, tt.want, snapshot.ActiveUsers)
		}
	}
}

func TestAggregateTotalIngredients(t *testing.T) {
	products := []models.Product{
		{Ingredients: pq.StringArray{"a", "b"}},
		{Ingredients: pq.StringArray{"c"}},
		{Ingredients: nil},
	}

	snapshot := Aggregate(products, time.Now())
	if snapshot.TotalIngredients != 3 {
		t.Fatalf("expected 3 ingredients, got %d", snapshot.TotalIngredients)
	}
}
