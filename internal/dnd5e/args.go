package dnd5e

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

// Tool names, in the order they are advertised.
const (
	ToolListEndpoints  = "list_endpoints"
	ToolListResources  = "list_resources"
	ToolGetResource    = "get_resource"
	ToolSearchSpells   = "search_spells"
	ToolSearchMonsters = "search_monsters"
	ToolGetClassLevels = "get_class_levels"
	ToolGetClassSpells = "get_class_spells"
)

// Spell and class level bounds accepted by the API.
const (
	MinSpellLevel = 0
	MaxSpellLevel = 9
	MinClassLevel = 1
	MaxClassLevel = 20
)

// Args is the decoded, typed argument set of one tool call. Each tool has
// exactly one implementation.
type Args interface {
	// Tool returns the tool name the arguments belong to.
	Tool() string
	// Path builds the API path relative to the base address, or returns a
	// *errors.ValidationError when the arguments cannot form one.
	Path() (string, error)
}

// ListEndpointsArgs takes no parameters.
type ListEndpointsArgs struct{}

// ListResourcesArgs lists every resource in a category.
type ListResourcesArgs struct {
	Endpoint string `json:"endpoint"`
}

// GetResourceArgs fetches one resource by category and index.
type GetResourceArgs struct {
	Endpoint string `json:"endpoint"`
	Index    string `json:"index"`
}

// SearchSpellsArgs filters the spell list. All fields are optional.
type SearchSpellsArgs struct {
	Level  *float64 `json:"level,omitempty"`
	School string   `json:"school,omitempty"`
	Class  string   `json:"class,omitempty"`
}

// SearchMonstersArgs filters the monster list. All fields are optional.
type SearchMonstersArgs struct {
	ChallengeRating *float64 `json:"challenge_rating,omitempty"`
	Type            string   `json:"type,omitempty"`
}

// GetClassLevelsArgs fetches level progression for a class, optionally a single level.
type GetClassLevelsArgs struct {
	ClassIndex string   `json:"class_index"`
	Level      *float64 `json:"level,omitempty"`
}

// GetClassSpellsArgs lists spells available to a class.
type GetClassSpellsArgs struct {
	ClassIndex string `json:"class_index"`
}

func (*ListEndpointsArgs) Tool() string  { return ToolListEndpoints }
func (*ListResourcesArgs) Tool() string  { return ToolListResources }
func (*GetResourceArgs) Tool() string    { return ToolGetResource }
func (*SearchSpellsArgs) Tool() string   { return ToolSearchSpells }
func (*SearchMonstersArgs) Tool() string { return ToolSearchMonsters }
func (*GetClassLevelsArgs) Tool() string { return ToolGetClassLevels }
func (*GetClassSpellsArgs) Tool() string { return ToolGetClassSpells }

// rules maps each tool name to a constructor for its argument type.
var rules = map[string]func() Args{
	ToolListEndpoints:  func() Args { return &ListEndpointsArgs{} },
	ToolListResources:  func() Args { return &ListResourcesArgs{} },
	ToolGetResource:    func() Args { return &GetResourceArgs{} },
	ToolSearchSpells:   func() Args { return &SearchSpellsArgs{} },
	ToolSearchMonsters: func() Args { return &SearchMonstersArgs{} },
	ToolGetClassLevels: func() Args { return &GetClassLevelsArgs{} },
	ToolGetClassSpells: func() Args { return &GetClassSpellsArgs{} },
}

// ToolNames returns every supported tool name in advertised order.
func ToolNames() []string {
	return []string{
		ToolListEndpoints,
		ToolListResources,
		ToolGetResource,
		ToolSearchSpells,
		ToolSearchMonsters,
		ToolGetClassLevels,
		ToolGetClassSpells,
	}
}

// IsTool reports whether name is a supported tool.
func IsTool(name string) bool {
	_, ok := rules[name]
	return ok
}

// DecodeArgs turns the raw JSON arguments of a tool call into the tool's
// typed Args. Missing or null arguments decode to the zero value; anything
// that is not a JSON object, or has a field of the wrong type, is rejected.
func DecodeArgs(tool string, raw json.RawMessage) (Args, error) {
	newArgs, ok := rules[tool]
	if !ok {
		return nil, apierrors.NewUnknownToolError(tool)
	}
	args := newArgs()

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return args, nil
	}
	if raw[0] != '{' {
		return nil, apierrors.NewValidationError(tool, "", "arguments must be a JSON object")
	}
	if err := json.Unmarshal(raw, args); err != nil {
		return nil, decodeError(tool, err)
	}
	return args, nil
}

// decodeError converts a json decoding failure into a ValidationError that
// names the offending field.
func decodeError(tool string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apierrors.NewValidationError(tool, typeErr.Field,
			fmt.Sprintf("must be a %s, got %s", jsonKind(typeErr.Type), typeErr.Value))
	}
	return apierrors.NewValidationError(tool, "", fmt.Sprintf("malformed arguments: %v", err))
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	default:
		return t.Kind().String()
	}
}
