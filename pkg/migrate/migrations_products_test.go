package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestProductsMigrationCoversModelColumns(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var productsSQL string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_create_products.sql") {
			b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
			if err != nil {
				t.Fatalf("read migration: %v", err)
			}
			productsSQL = string(b)
		}
	}
	if productsSQL == "" {
		t.Fatal("create_products migration not found")
	}

	for _, column := range []string{
		"health_score",
		"has_fatal_incidents",
		"has_serious_adverse_events",
		"analysis_cost",
		"special_population_warnings",
		"created_at",
	} {
		if !strings.Contains(productsSQL, column) {
			t.Fatalf("products migration missing column %q", column)
		}
	}

	if !strings.Contains(productsSQL, "'harmful'") {
		t.Fatal("category check constraint should include harmful")
	}
}
