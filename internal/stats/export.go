package stats

import (
	"time"
)

// SnapshotRow is the warehouse representation of a snapshot.
type SnapshotRow struct {
	TotalProducts       int       `bigquery:"total_products"`
	HealthyCount        int       `bigquery:"healthy_count"`
	RestrictedCount     int       `bigquery:"restricted_count"`
	HarmfulCount        int       `bigquery:"harmful_count"`
	UncategorizedCount  int       `bigquery:"uncategorized_count"`
	AverageHealthScore  float64   `bigquery:"average_health_score"`
	AverageAnalysisCost string    `bigquery:"average_analysis_cost"`
	HighRiskCount       int       `bigquery:"high_risk_count"`
	TopPerformerCount   int       `bigquery:"top_performer_count"`
	DailyScans          int       `bigquery:"daily_scans"`
	TotalIngredients    int       `bigquery:"total_ingredients"`
	ActiveUsers         int       `bigquery:"active_users"`
	AccuracyRate        float64   `bigquery:"accuracy_rate"`
	GeneratedAt         time.Time `bigquery:"generated_at"`
}

// NewSnapshotRow maps a snapshot onto its warehouse row.
func NewSnapshotRow(s Snapshot) SnapshotRow {
	return SnapshotRow{
		TotalProducts:       s.TotalProducts,
		HealthyCount:        s.HealthyCount,
		RestrictedCount:     s.RestrictedCount,
		HarmfulCount:        s.HarmfulCount,
		UncategorizedCount:  s.UncategorizedCount,
		AverageHealthScore:  s.AverageHealthScore,
		AverageAnalysisCost: s.AverageAnalysisCost.StringFixed(4),
		HighRiskCount:       s.HighRiskCount,
		TopPerformerCount:   s.TopPerformerCount,
		DailyScans:          s.DailyScans,
		TotalIngredients:    s.TotalIngredients,
		ActiveUsers:         s.ActiveUsers,
		AccuracyRate:        s.AccuracyRate,
		GeneratedAt:         s.GeneratedAt,
	}
}
