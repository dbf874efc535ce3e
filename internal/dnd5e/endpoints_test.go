package dnd5e

import "testing"

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 24 {
		t.Fatalf("len(Categories()) = %d, want 24", len(cats))
	}
	if cats[0] != "ability-scores" || cats[len(cats)-1] != "weapon-properties" {
		t.Errorf("unexpected order: first=%q last=%q", cats[0], cats[len(cats)-1])
	}

	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c == "" {
			t.Error("empty category")
		}
		if seen[c] {
			t.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0] = "mutated"

	if Categories()[0] != "ability-scores" {
		t.Error("mutating the returned slice changed the registry")
	}
}

func TestIsCategory(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"spells", true},
		{"monsters", true},
		{"weapon-properties", true},
		{"Spells", false},
		{"dragons", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsCategory(tt.name); got != tt.want {
			t.Errorf("IsCategory(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "root"},
		{"", "root"},
		{"/spells", "spells"},
		{"/spells?level=3", "spells"},
		{"/spells/fireball", "spells"},
		{"/classes/wizard/levels/5", "classes"},
		{"/not-a-category/x", "other"},
	}

	for _, tt := range tests {
		if got := categoryOf(tt.path); got != tt.want {
			t.Errorf("categoryOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
