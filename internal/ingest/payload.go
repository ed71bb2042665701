package ingest

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AnalysisResultPayload is the message body published by the AI analysis
// pipeline when a product finishes analysis.
type AnalysisResultPayload struct {
	EventID                   string   `json:"event_id" validate:"required,uuid4"`
	Name                      string   `json:"name" validate:"required,min=1,max=512"`
	Company                   *string  `json:"company,omitempty"`
	Ingredients               []string `json:"ingredients,omitempty"`
	Category                  string   `json:"category" validate:"required,oneof=healthy restricted harmful"`
	HealthScore               *int     `json:"health_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Summary                   *string  `json:"summary,omitempty"`
	Pros                      []string `json:"pros,omitempty"`
	Cons                      []string `json:"cons,omitempty"`
	HasFatalIncidents         bool     `json:"has_fatal_incidents"`
	HasSeriousAdverseEvents   bool     `json:"has_serious_adverse_events"`
	AllergyRisks              []string `json:"allergy_risks,omitempty"`
	DrugInteractions          []string `json:"drug_interactions,omitempty"`
	SpecialPopulationWarnings []string `json:"special_population_warnings,omitempty"`
	SafetyIncidents           []string `json:"safety_incidents,omitempty"`
	EnvironmentalImpact       *string  `json:"environmental_impact,omitempty"`
	AnalysisCost              *string  `json:"analysis_cost,omitempty"`
	AmazonURL                 *string  `json:"amazon_url,omitempty" validate:"omitempty,url"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

var payloadValidator = validator.New()

// Validate checks the payload shape and the analysis cost format.
func (p AnalysisResultPayload) Validate() error {
	if err := payloadValidator.Struct(p); err != nil {
		return err
	}
	if p.AnalysisCost != nil {
		if _, err := decimal.NewFromString(*p.AnalysisCost); err != nil {
			return err
		}
	}
	return nil
}
