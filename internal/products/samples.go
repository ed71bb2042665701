package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aurelioventura/healthscan-backend/pkg/db/models"
	"github.com/aurelioventura/healthscan-backend/pkg/enums"
)

// sampleProducts is the curated dataset served when the live store has no
// matching rows. It is filtered with the same semantics as the live path:
// substring match on name/ingredients in query mode, exact category otherwise.
var sampleProducts = buildSampleProducts()

func buildSampleProducts() []models.Product {
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	return []models.Product{
		{
			ID:          uuid.MustParse("3f1a2b9e-0001-4c8f-9f10-aaaaaaaaaaaa"),
			Name:        "Steel-Cut Oats",
			Company:     ptr("Harvest Morning Co."),
			Ingredients: pq.StringArray{"whole grain oats"},
			Category:    enums.ProductCategoryHealthy,
			HealthScore: ptr(94),
			Summary:     ptr("Single-ingredient whole grain with high soluble fiber."),
			Pros:        pq.StringArray{"high fiber", "no additives", "low glycemic load"},
			Cons:        pq.StringArray{"longer cook time than instant oats"},
			CreatedAt:   now,
		},
		{
			ID:          uuid.MustParse("3f1a2b9e-0002-4c8f-9f10-aaaaaaaaaaaa"),
			Name:        "Wild Sockeye Salmon Fillet",
			Company:     ptr("North Current Seafood"),
			Ingredients: pq.StringArray{"wild sockeye salmon"},
			Category:    enums.ProductCategoryHealthy,
			HealthScore: ptr(91),
			Summary:     ptr("Omega-3 rich protein with no processing additives."),
			Pros:        pq.StringArray{"omega-3 fatty acids", "complete protein"},
			Cons:        pq.StringArray{"trace mercury exposure"},
			CreatedAt:   now.Add(-time.Hour),
		},
		{
			ID:                  uuid.MustParse("3f1a2b9e-0003-4c8f-9f10-aaaaaaaaaaaa"),
			Name:                "Lentil Pasta",
			Company:             ptr("Verde Pantry"),
			Ingredients:         pq.StringArray{"red lentil flour"},
			Category:            enums.ProductCategoryHealthy,
			HealthScore:         ptr(85),
			Summary:             ptr("Legume-based pasta alternative with added protein."),
			Pros:                pq.StringArray{"plant protein", "gluten free"},
			Cons:                pq.StringArray{"softer texture when overcooked"},
			EnvironmentalImpact: ptr("Low water footprint relative to wheat pasta."),
			CreatedAt:           now.Add(-2 * time.Hour),
		},
		{
			ID:           uuid.MustParse("3f1a2b9e-0004-4c8f-9f10-bbbbbbbbbbbb"),
			Name:         "Diet Cola 12-Pack",
			Company:      ptr("Fizz Works Beverage"),
			Ingredients:  pq.StringArray{"carbonated water", "caramel color", "aspartame", "phosphoric acid", "caffeine"},
			Category:     enums.ProductCategoryRestricted,
			HealthScore:  ptr(38),
			Summary:      ptr("Zero-calorie soda relying on artificial sweeteners."),
			Pros:         pq.StringArray{"no sugar"},
			Cons:         pq.StringArray{"artificial sweeteners", "phosphoric acid erodes enamel"},
			AllergyRisks: pq.StringArray{"phenylketonurics: contains phenylalanine"},
			CreatedAt:    now.Add(-3 * time.Hour),
		},
		{
			ID:                        uuid.MustParse("3f1a2b9e-0005-4c8f-9f10-bbbbbbbbbbbb"),
			Name:                      "Energy Shot Extra Strength",
			Company:                   ptr("VoltMax Labs"),
			Ingredients:               pq.StringArray{"caffeine", "taurine", "niacin", "vitamin b12"},
			Category:                  enums.ProductCategoryRestricted,
			HealthScore:               ptr(29),
			Summary:                   ptr("Concentrated caffeine shot near the single-serving limit."),
			Pros:                      pq.StringArray{"fast acting"},
			Cons:                      pq.StringArray{"high caffeine per ounce", "niacin flush at label dose"},
			DrugInteractions:          pq.StringArray{"stimulant medications"},
			SpecialPopulationWarnings: pq.StringArray{"not for children or pregnant women"},
			CreatedAt:                 now.Add(-4 * time.Hour),
		},
		{
			ID:                        uuid.MustParse("3f1a2b9e-0006-4c8f-9f10-bbbbbbbbbbbb"),
			Name:                      "Herbal Sleep Gummies",
			Company:                   ptr("Quiet Hollow Wellness"),
			Ingredients:               pq.StringArray{"melatonin", "valerian root", "glucose syrup"},
			Category:                  enums.ProductCategoryRestricted,
			HealthScore:               ptr(41),
			Summary:                   ptr("Melatonin supplement with sedative herb blend."),
			Pros:                      pq.StringArray{"may shorten sleep onset"},
			Cons:                      pq.StringArray{"next-day drowsiness", "unregulated dosing"},
			DrugInteractions:          pq.StringArray{"sedatives", "blood thinners"},
			SpecialPopulationWarnings: pq.StringArray{"consult a doctor before use while pregnant"},
			CreatedAt:                 now.Add(-5 * time.Hour),
		},
		{
			ID:                      uuid.MustParse("3f1a2b9e-0007-4c8f-9f10-cccccccccccc"),
			Name:                    "Raw Apricot Kernels",
			Company:                 ptr("Orchard Bulk Foods"),
			Ingredients:             pq.StringArray{"raw bitter apricot kernels"},
			Category:                enums.ProductCategoryHarmful,
			HealthScore:             ptr(8),
			Summary:                 ptr("Contains amygdalin which converts to cyanide when ingested."),
			Pros:                    pq.StringArray{},
			Cons:                    pq.StringArray{"cyanide poisoning risk", "marketed with unproven health claims"},
			HasFatalIncidents:       true,
			HasSeriousAdverseEvents: true,
			SafetyIncidents:         pq.StringArray{"documented cyanide poisoning hospitalizations"},
			AnalysisCost:            decimalPtr(decimal.NewFromFloat(0.0412)),
			CreatedAt:               now.Add(-6 * time.Hour),
		},
		{
			ID:                        uuid.MustParse("3f1a2b9e-0008-4c8f-9f10-cccccccccccc"),
			Name:                      "Miracle Mineral Solution",
			Company:                   ptr("ClearSpring Remedies"),
			Ingredients:               pq.StringArray{"sodium chlorite solution"},
			Category:                  enums.ProductCategoryHarmful,
			HealthScore:               ptr(2),
			Summary:                   ptr("Industrial bleach precursor sold as a cure-all supplement."),
			Pros:                      pq.StringArray{},
			Cons:                      pq.StringArray{"forms chlorine dioxide bleach", "no therapeutic benefit"},
			HasFatalIncidents:         true,
			HasSeriousAdverseEvents:   true,
			SafetyIncidents:           pq.StringArray{"FDA warnings after life-threatening reactions"},
			SpecialPopulationWarnings: pq.StringArray{"unsafe for any population"},
			AnalysisCost:              decimalPtr(decimal.NewFromFloat(0.0388)),
			CreatedAt:                 now.Add(-7 * time.Hour),
		},
		{
			ID:                      uuid.MustParse("3f1a2b9e-0009-4c8f-9f10-cccccccccccc"),
			Name:                    "Lead-Glazed Ceramic Mug",
			Company:                 ptr("Terra Kiln Imports"),
			Ingredients:             pq.StringArray{"ceramic", "lead-based glaze"},
			Category:                enums.ProductCategoryHarmful,
			HealthScore:             ptr(5),
			Summary:                 ptr("Glaze leaches lead into hot and acidic drinks."),
			Pros:                    pq.StringArray{},
			Cons:                    pq.StringArray{"lead leaching", "cumulative neurotoxicity"},
			HasFatalIncidents:       false,
			HasSeriousAdverseEvents: true,
			SafetyIncidents:         pq.StringArray{"recalled after elevated blood lead findings"},
			AnalysisCost:            decimalPtr(decimal.NewFromFloat(0.0291)),
			CreatedAt:               now.Add(-8 * time.Hour),
		},
	}
}

// filterSamples applies live-path filter semantics to the curated dataset.
func filterSamples(filter SearchFilter) []models.Product {
	if search := strings.TrimSpace(filter.Query); search != "" {
		needle := strings.ToLower(search)
		matched := []models.Product{}
		for _, p := range sampleProducts {
			if sampleMatchesQuery(p, needle) {
				matched = append(matched, p)
			}
		}
		return matched
	}
	if filter.Category != nil {
		matched := []models.Product{}
		for _, p := range sampleProducts {
			if p.Category == *filter.Category {
				matched = append(matched, p)
			}
		}
		return matched
	}
	return append([]models.Product(nil), sampleProducts...)
}

func sampleMatchesQuery(p models.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	for _, ingredient := range p.Ingredients {
		if strings.Contains(strings.ToLower(ingredient), needle) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
