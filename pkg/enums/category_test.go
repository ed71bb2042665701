package enums

import "testing"

func TestProductCategoryIsValid(t *testing.T) {
	for _, c := range []ProductCategory{ProductCategoryHealthy, ProductCategoryRestricted, ProductCategoryHarmful} {
		if !c.IsValid() {
			t.Fatalf("expected %q to be valid", c)
		}
	}
	if ProductCategory("organic").IsValid() {
		t.Fatal("unknown category should be invalid")
	}
}

func TestParseProductCategory(t *testing.T) {
	got, err := ParseProductCategory("harmful")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ProductCategoryHarmful {
		t.Fatalf("expected harmful, got %q", got)
	}

	if _, err := ParseProductCategory("Harmful"); err == nil {
		t.Fatal("parse is case sensitive; expected error")
	}
}
