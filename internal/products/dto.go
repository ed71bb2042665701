package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
)

// ProductDTO is the read model returned by search and detail endpoints.
type ProductDTO struct {
	ID                        uuid.UUID `json:"id"`
	Name                      string    `json:"name"`
	Company                   *string   `json:"company,omitempty"`
	Ingredients               []string  `json:"ingredients"`
	Category                  string    `json:"category"`
	HealthScore               *int      `json:"health_score,omitempty"`
	Summary                   *string   `json:"summary,omitempty"`
	Pros                      []string  `json:"pros"`
	Cons                      []string  `json:"cons"`
	HasFatalIncidents         bool      `json:"has_fatal_incidents"`
	HasSeriousAdverseEvents   bool      `json:"has_serious_adverse_events"`
	AllergyRisks              []string  `json:"allergy_risks"`
	DrugInteractions          []string  `json:"drug_interactions"`
	SpecialPopulationWarnings []string  `json:"special_population_warnings"`
	SafetyIncidents           []string  `json:"safety_incidents"`
	EnvironmentalImpact       *string   `json:"environmental_impact,omitempty"`
	AnalysisCost              *string   `json:"analysis_cost,omitempty"`
	AmazonURL                 *string   `json:"amazon_url,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
}

// NewProductDTO maps a stored product onto the read model.
func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:                        p.ID,
		Name:                      p.Name,
		Company:                   p.Company,
		Ingredients:               stringSlice(p.Ingredients),
		Category:                  p.Category.String(),
		HealthScore:               p.HealthScore,
		Summary:                   p.Summary,
		Pros:                      stringSlice(p.Pros),
		Cons:                      stringSlice(p.Cons),
		HasFatalIncidents:         p.HasFatalIncidents,
		HasSeriousAdverseEvents:   p.HasSeriousAdverseEvents,
		AllergyRisks:              stringSlice(p.AllergyRisks),
		DrugInteractions:          stringSlice(p.DrugInteractions),
		SpecialPopulationWarnings: stringSlice(p.SpecialPopulationWarnings),
		SafetyIncidents:           stringSlice(p.SafetyIncidents),
		EnvironmentalImpact:       p.EnvironmentalImpact,
		AmazonURL:                 p.AmazonURL,
		CreatedAt:                 p.CreatedAt,
	}
	if p.AnalysisCost != nil {
		cost := p.AnalysisCost.StringFixed(4)
		dto.AnalysisCost = &cost
	}
	return dto
}

func stringSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// SearchResult is one page of search output.
type SearchResult struct {
	Products   []ProductDTO `json:"products"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	TotalItems int          `json:"total_items"`
	Fallback   bool         `json:"fallback"`
	Generation uint64       `json:"generation"`
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
