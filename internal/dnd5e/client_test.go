package dnd5e

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	defer c.Close()

	if c.baseURL != BaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, BaseURL)
	}
	if c.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want %q", c.userAgent, DefaultUserAgent)
	}
}

func TestNewClient_EmptyUserAgentKeepsDefault(t *testing.T) {
	c := NewClient(WithUserAgent(""))
	defer c.Close()

	if c.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want default", c.userAgent)
	}
}

func TestClientGet_Success(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":1,"results":[{"index":"fireball","name":"Fireball","url":"/api/spells/fireball"}]}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL+"/api/"), WithUserAgent("test-agent"), WithLogger(quietLogger()))
	defer c.Close()

	body, err := c.Get(context.Background(), "/spells?level=3&school=evocation")
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if gotPath != "/api/spells" {
		t.Errorf("path = %q, want /api/spells", gotPath)
	}
	if gotQuery != "level=3&school=evocation" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", gotUA)
	}
	if !strings.Contains(string(body), `"fireball"`) {
		t.Errorf("body = %s", body)
	}
}

func TestClientGet_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	defer c.Close()

	_, err := c.Get(context.Background(), "/spells/not-a-spell")
	if !apierrors.IsAPIError(err) {
		t.Fatalf("expected APIError, got %v", err)
	}
	want := `API error: 404 - {"error":"Not found"}`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestClientGet_ServerErrorWithTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithLogger(quietLogger()))
	defer c.Close()

	_, err := c.Get(context.Background(), "/monsters")
	if err == nil {
		t.Fatal("expected error")
	}
	want := `API error: 502 - "upstream exploded\n"`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestClientGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c := NewClient(WithBaseURL(addr), WithLogger(quietLogger()))
	defer c.Close()

	_, err := c.Get(context.Background(), "/")
	if !apierrors.IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Request failed: ") {
		t.Errorf("error = %q, want Request failed: prefix", err.Error())
	}
}

func TestClientGet_MalformedBaseURLIsTransportError(t *testing.T) {
	c := NewClient(WithBaseURL("http://bad host"), WithLogger(quietLogger()))
	defer c.Close()

	_, err := c.Get(context.Background(), "/spells")
	if !apierrors.IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
