package dnd5e

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

func (a *ListEndpointsArgs) Path() (string, error) {
	return "/", nil
}

func (a *ListResourcesArgs) Path() (string, error) {
	endpoint, err := requireSegment(a.Tool(), "endpoint", a.Endpoint)
	if err != nil {
		return "", err
	}
	return "/" + endpoint, nil
}

func (a *GetResourceArgs) Path() (string, error) {
	endpoint, err := requireSegment(a.Tool(), "endpoint", a.Endpoint)
	if err != nil {
		return "", err
	}
	index, err := requireSegment(a.Tool(), "index", a.Index)
	if err != nil {
		return "", err
	}
	return "/" + endpoint + "/" + index, nil
}

// Path builds /spells with filters appended in the order level, school, class.
func (a *SearchSpellsArgs) Path() (string, error) {
	var q orderedQuery
	if a.Level != nil {
		if err := checkWholeInRange(a.Tool(), "level", *a.Level, MinSpellLevel, MaxSpellLevel); err != nil {
			return "", err
		}
		q.add("level", formatNumber(*a.Level))
	}
	q.addIfSet("school", a.School)
	q.addIfSet("class", a.Class)
	return "/spells" + q.encode(), nil
}

// Path builds /monsters with filters appended in the order challenge_rating, type.
func (a *SearchMonstersArgs) Path() (string, error) {
	var q orderedQuery
	if a.ChallengeRating != nil {
		cr := *a.ChallengeRating
		if math.IsNaN(cr) || math.IsInf(cr, 0) || cr < 0 {
			return "", apierrors.NewValidationError(a.Tool(), "challenge_rating", "must be a non-negative number")
		}
		q.add("challenge_rating", formatNumber(cr))
	}
	q.addIfSet("type", a.Type)
	return "/monsters" + q.encode(), nil
}

func (a *GetClassLevelsArgs) Path() (string, error) {
	class, err := requireSegment(a.Tool(), "class_index", a.ClassIndex)
	if err != nil {
		return "", err
	}
	path := "/classes/" + class + "/levels"
	if a.Level == nil {
		return path, nil
	}
	if err := checkWholeInRange(a.Tool(), "level", *a.Level, MinClassLevel, MaxClassLevel); err != nil {
		return "", err
	}
	return path + "/" + formatNumber(*a.Level), nil
}

func (a *GetClassSpellsArgs) Path() (string, error) {
	class, err := requireSegment(a.Tool(), "class_index", a.ClassIndex)
	if err != nil {
		return "", err
	}
	return "/classes/" + class + "/spells", nil
}

// requireSegment validates a required path parameter and escapes it so it
// stays a single path segment.
func requireSegment(tool, field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", apierrors.NewValidationError(tool, field, "is required")
	}
	return url.PathEscape(value), nil
}

func checkWholeInRange(tool, field string, v float64, lo, hi int) error {
	if v != math.Trunc(v) || v < float64(lo) || v > float64(hi) {
		return apierrors.NewValidationError(tool, field,
			fmt.Sprintf("must be a whole number between %d and %d", lo, hi))
	}
	return nil
}

// formatNumber renders v in its shortest decimal form: 3, 0.25, 30.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// orderedQuery is a query string that keeps parameters in insertion order.
// url.Values sorts keys on Encode.
type orderedQuery []string

func (q *orderedQuery) add(key, value string) {
	*q = append(*q, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

// addIfSet appends the parameter only when value is non-empty.
func (q *orderedQuery) addIfSet(key, value string) {
	if value != "" {
		q.add(key, value)
	}
}

func (q orderedQuery) encode() string {
	if len(q) == 0 {
		return ""
	}
	return "?" + strings.Join(q, "&")
}
