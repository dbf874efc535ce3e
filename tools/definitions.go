package tools

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
)

// AllTools contains all tool specifications for the D&D 5e MCP server, in the
// order they are documented.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// CATALOG TOOLS
	// ==========================================================================
	{
		Name:     dnd5e.ToolListEndpoints,
		Title:    "List D&D 5e Endpoints",
		Category: "catalog",
		Description: `Get a list of all available D&D 5e API endpoints and their URLs.

USE WHEN: User asks "what can I look up", "which categories exist", or you need a category name before listing resources.

NOT FOR: Listing the entries of one category (use list_resources instead).

PARAMETERS: none

RETURNS: A JSON object mapping each category name to its API URL.`,
		InputSchema: objectSchema(nil),
		ReadOnly:    true,
		Idempotent:  true,
		OpenWorld:   true,
	},
	{
		Name:     dnd5e.ToolListResources,
		Title:    "List D&D 5e Resources",
		Category: "catalog",
		Description: `Get a list of all available resources for a specific endpoint (e.g., all spells, all monsters).

USE WHEN: User asks "list all feats", "what races are there", or you need the index of an entry before fetching it.

NOT FOR: Filtering spells or monsters (use search_spells or search_monsters instead).

PARAMETERS:
- endpoint: Category name (required)

RETURNS: count plus results, each with index, name, and url.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"endpoint": endpointProperty("The endpoint to list resources from."),
		}, "endpoint"),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     dnd5e.ToolGetResource,
		Title:    "Get D&D 5e Resource",
		Category: "catalog",
		Description: `Get detailed information about a specific resource by its index (e.g., a specific spell, monster, or class).

USE WHEN: User asks "what does fireball do", "stats for an ancient red dragon", "tell me about the wizard class".

NOT FOR: Discovering which indexes exist (use list_resources first).

PARAMETERS:
- endpoint: Category name (required)
- index: Resource index such as 'fireball' (required)

RETURNS: The full resource document as published by the API.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"endpoint": endpointProperty("The endpoint type."),
			"index": {
				Type:        "string",
				Description: "The index/ID of the resource (e.g., 'fireball' for a spell, 'ancient-red-dragon' for a monster)",
			},
		}, "endpoint", "index"),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// SEARCH TOOLS
	// ==========================================================================
	{
		Name:     dnd5e.ToolSearchSpells,
		Title:    "Search Spells",
		Category: "search",
		Description: `Search for spells with optional filters (level, school, class).

USE WHEN: User asks "3rd level evocation spells", "cantrips for bards", "all abjuration spells".

NOT FOR: The full text of one spell (use get_resource with endpoint "spells").

PARAMETERS:
- level: Spell level 0-9, 0 means cantrips (optional)
- school: Magic school (optional)
- class: Class index (optional)

RETURNS: count plus matching spell references.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"level": numberProperty("Filter by spell level (0-9)", dnd5e.MinSpellLevel, dnd5e.MaxSpellLevel),
			"school": {
				Type:        "string",
				Description: "Filter by magic school (e.g., evocation, abjuration, conjuration)",
			},
			"class": {
				Type:        "string",
				Description: "Filter by class (e.g., wizard, cleric, bard)",
			},
		}),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     dnd5e.ToolSearchMonsters,
		Title:    "Search Monsters",
		Category: "search",
		Description: `Search for monsters with optional filters (challenge rating, type).

USE WHEN: User asks "CR 5 monsters", "list the dragons", "undead for a low level party".

NOT FOR: A single stat block (use get_resource with endpoint "monsters").

PARAMETERS:
- challenge_rating: Challenge rating such as 0.25 or 17 (optional)
- type: Monster type (optional)

RETURNS: count plus matching monster references.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"challenge_rating": {
				Type:        "number",
				Description: "Filter by challenge rating (CR)",
			},
			"type": {
				Type:        "string",
				Description: "Filter by monster type (e.g., dragon, undead, humanoid)",
			},
		}),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// CLASS TOOLS
	// ==========================================================================
	{
		Name:     dnd5e.ToolGetClassLevels,
		Title:    "Get Class Levels",
		Category: "classes",
		Description: `Get level progression details for a specific class.

USE WHEN: User asks "what does a level 5 wizard get", "fighter progression", "spell slots for a cleric".

NOT FOR: The class overview (use get_resource with endpoint "classes").

PARAMETERS:
- class_index: Class index (required)
- level: A single level 1-20 (optional, all levels when omitted)

RETURNS: One level document, or the list of all levels.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"class_index": {
				Type:        "string",
				Description: "The class index (e.g., 'wizard', 'fighter', 'cleric')",
			},
			"level": numberProperty("Optional: Get details for a specific level (1-20)", dnd5e.MinClassLevel, dnd5e.MaxClassLevel),
		}, "class_index"),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     dnd5e.ToolGetClassSpells,
		Title:    "Get Class Spells",
		Category: "classes",
		Description: `Get all spells available to a specific class.

USE WHEN: User asks "which spells can a bard learn", "paladin spell list".

NOT FOR: Filtering by level or school (use search_spells with class).

PARAMETERS:
- class_index: Class index (required)

RETURNS: count plus spell references.`,
		InputSchema: objectSchema(map[string]*jsonschema.Schema{
			"class_index": {
				Type:        "string",
				Description: "The class index (e.g., 'wizard', 'cleric', 'bard')",
			},
		}, "class_index"),
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// endpointProperty lists the known categories both in the description and as
// an enum so hosts can offer them.
func endpointProperty(description string) *jsonschema.Schema {
	cats := dnd5e.Categories()
	enum := make([]any, len(cats))
	for i, c := range cats {
		enum[i] = c
	}
	return &jsonschema.Schema{
		Type:        "string",
		Description: description + " Available: " + strings.Join(cats, ", "),
		Enum:        enum,
	}
}

func numberProperty(description string, lo, hi int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "number",
		Description: description,
		Minimum:     ptr(float64(lo)),
		Maximum:     ptr(float64(hi)),
	}
}
