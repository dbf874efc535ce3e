// Package dnd5e exposes read-only lookups against the D&D 5e SRD REST API.
// Tool calls are decoded into typed arguments, turned into an API path, fetched
// with a single GET and wrapped in an Envelope.
package dnd5e

// APIReference points at a single resource, as returned in category listings.
type APIReference struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// ListResponse is the body returned when listing a category.
type ListResponse struct {
	Count   int            `json:"count"`
	Results []APIReference `json:"results"`
}
