package dnd5e

import (
	"bytes"
	"encoding/json"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

// Envelope is the uniform result of a tool call: one block of text and a flag
// telling the host whether it describes a failure.
type Envelope struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error,omitempty"`
}

// Success wraps an upstream body as pretty-printed JSON.
func Success(body []byte) Envelope {
	return Envelope{Text: PrettyJSON(body)}
}

// Failure wraps err. The error's message is the envelope text.
func Failure(err error) Envelope {
	return Envelope{Text: err.Error(), IsError: true}
}

// PrettyJSON indents a JSON document with two spaces, preserving key order.
// A body that is not JSON is returned as a JSON string literal of its text.
// The output depends only on the input bytes.
func PrettyJSON(body []byte) string {
	body = bytes.TrimSpace(body)
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			return buf.String()
		}
	}
	return apierrors.QuoteText(string(body))
}
