// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are declared once in AllTools and registered with a single raw
// handler that routes every call through the dnd5e dispatcher.
package tools

import "github.com/google/jsonschema-go/jsonschema"

// ToolSpec defines a tool's metadata for declarative registration.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "search_spells")
	Name string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (catalog, search, classes)
	Category string

	// InputSchema describes the tool arguments. It always has type "object".
	InputSchema *jsonschema.Schema

	// ReadOnly indicates the tool doesn't modify upstream state
	ReadOnly bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// Find returns the spec registered under name.
func Find(name string) (ToolSpec, bool) {
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
