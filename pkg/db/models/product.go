package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/enums"
)

// Product represents one analyzed consumer product.
type Product struct {
	ID                        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                      string                `gorm:"column:name;not null"`
	Company                   *string               `gorm:"column:company"`
	Ingredients               pq.StringArray        `gorm:"column:ingredients;type:text[];not null;default:ARRAY[]::text[]"`
	Category                  enums.ProductCategory `gorm:"column:category;not null"`
	HealthScore               *int                  `gorm:"column:health_score"`
	Summary                   *string               `gorm:"column:summary"`
	Pros                      pq.StringArray        `gorm:"column:pros;type:text[];not null;default:ARRAY[]::text[]"`
	Cons                      pq.StringArray        `gorm:"column:cons;type:text[];not null;default:ARRAY[]::text[]"`
	HasFatalIncidents         bool                  `gorm:"column:has_fatal_incidents;not null;default:false"`
	HasSeriousAdverseEvents   bool                  `gorm:"column:has_serious_adverse_events;not null;default:false"`
	AllergyRisks              pq.StringArray        `gorm:"column:allergy_risks;type:text[];not null;default:ARRAY[]::text[]"`
	DrugInteractions          pq.StringArray        `gorm:"column:drug_interactions;type:text[];not null;default:ARRAY[]::text[]"`
	SpecialPopulationWarnings pq.StringArray        `gorm:"column:special_population_warnings;type:text[];not null;default:ARRAY[]::text[]"`
	SafetyIncidents           pq.StringArray        `gorm:"column:safety_incidents;type:text[];not null;default:ARRAY[]::text[]"`
	EnvironmentalImpact       *string               `gorm:"column:environmental_impact"`
	AnalysisCost              *decimal.Decimal      `gorm:"column:analysis_cost;type:numeric(10,4)"`
	AmazonURL                 *string               `gorm:"column:amazon_url"`
	CreatedAt                 time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsHighRisk reports whether either serious safety flag is set.
func (p Product) IsHighRisk() bool {
	return p.HasFatalIncidents || p.HasSeriousAdverseEvents
}
