package stats

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
)

const (
	topPerformerThreshold = 93
	dailyScanWindow       = 24 * time.Hour

	// AccuracyRate is a fixed display placeholder, not a measured quantity.
	AccuracyRate = 98.5

	activeUsersMultiplier = 2
	activeUsersFloor      = 1200
	activeUsersCeiling    = 13000
)

// Snapshot holds every derived metric for the current product collection.
// It is always recomputed from scratch; a snapshot is a pure function of
// its input collection and the aggregation time.
type Snapshot struct {
	TotalProducts       int             `json:"total_products"`
	HealthyCount        int             `json:"healthy_count"`
	RestrictedCount     int             `json:"restricted_count"`
	HarmfulCount        int             `json:"harmful_count"`
	UncategorizedCount  int             `json:"uncategorized_count"`
	AverageHealthScore  float64         `json:"average_health_score"`
	AverageAnalysisCost decimal.Decimal `json:"average_analysis_cost"`
	HighRiskCount       int             `json:"high_risk_count"`
	TopPerformerCount   int             `json:"top_performer_count"`
	DailyScans          int             `json:"daily_scans"`
	TotalIngredients    int             `json:"total_ingredients"`
	ActiveUsers         int             `json:"active_users"`
	AccuracyRate        float64         `json:"accuracy_rate"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

// Aggregate derives a statistics snapshot from the full product collection.
// An empty collection yields the all-zero snapshot, not an error.
func Aggregate(products []models.Product, now time.Time) Snapshot {
	snapshot := Snapshot{
		TotalProducts: len(products),
		AccuracyRate:  AccuracyRate,
		ActiveUsers:   activeUsers(len(products)),
		GeneratedAt:   now.UTC(),
	}
	if len(products) == 0 {
		snapshot.AverageAnalysisCost = decimal.Zero
		return snapshot
	}

	scoreSum := 0
	costSum := decimal.Zero
	recencyCutoff := now.Add(-dailyScanWindow)

	for i := range products {
		p := &products[i]

		switch p.Category {
		case enums.ProductCategoryHealthy:
			snapshot.HealthyCount++
		case enums.ProductCategoryRestricted:
			snapshot.RestrictedCount++
		case enums.ProductCategoryHarmful:
			snapshot.HarmfulCount++
		default:
			snapshot.UncategorizedCount++
		}

		// Missing scores and costs count as zero in the numerator but the
		// denominator stays the full collection size.
		if p.HealthScore != nil {
			scoreSum += *p.HealthScore
		}
		if p.AnalysisCost != nil {
			costSum = costSum.Add(*p.AnalysisCost)
		}

		if p.IsHighRisk() {
			snapshot.HighRiskCount++
		}
		if p.HealthScore != nil && *p.HealthScore > topPerformerThreshold {
			snapshot.TopPerformerCount++
		}
		if p.CreatedAt.After(recencyCutoff) {
			snapshot.DailyScans++
		}
		snapshot.TotalIngredients += len(p.Ingredients)
	}

	snapshot.AverageHealthScore = float64(scoreSum) / float64(len(products))
	snapshot.AverageAnalysisCost = costSum.Div(decimal.NewFromInt(int64(len(products)))).Round(4)
	return snapshot
}

func activeUsers(total int) int {
	users := total * activeUsersMultiplier
	if users < activeUsersFloor {
		return activeUsersFloor
	}
	if users > activeUsersCeiling {
		return activeUsersCeiling
	}
	return users
}

// DisplayAverageScore renders the average health score for the dashboard.
func (s Snapshot) DisplayAverageScore() string {
	return formatPercent(s.AverageHealthScore)
}

// DisplayAccuracyRate renders the placeholder accuracy figure.
func (s Snapshot) DisplayAccuracyRate() string {
	return formatPercent(s.AccuracyRate)
}

// DisplayAverageCost renders the average analysis cost as currency.
func (s Snapshot) DisplayAverageCost() string {
	return fmt.Sprintf("$%s", s.AverageAnalysisCost.StringFixed(2))
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}
