package dnd5e

import "strings"

// categories is the closed vocabulary of resource categories served by the
// D&D 5e API, in the order they are advertised to clients.
var categories = []string{
	"ability-scores",
	"alignments",
	"backgrounds",
	"classes",
	"conditions",
	"damage-types",
	"equipment-categories",
	"equipment",
	"feats",
	"features",
	"languages",
	"magic-items",
	"magic-schools",
	"monsters",
	"proficiencies",
	"races",
	"rule-sections",
	"rules",
	"skills",
	"spells",
	"subclasses",
	"subraces",
	"traits",
	"weapon-properties",
}

// Categories returns the ordered list of known resource categories.
// The returned slice is a copy and may be modified by the caller.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether name is a known resource category.
//
// The dispatcher does not reject unknown categories; the remote service
// decides what exists. This is for schema generation and diagnostics.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// categoryOf extracts the category label of an API path for metrics,
// e.g. "/spells/fireball" -> "spells" and "/" -> "root".
func categoryOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	if !IsCategory(path) {
		return "other"
	}
	return path
}
