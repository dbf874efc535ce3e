package base

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

func TestNewClient(t *testing.T) {
	client := NewClient()
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
	defer client.Close()

	if client.HTTPClient == nil {
		t.Error("HTTPClient is nil")
	}
	if client.Logger == nil {
		t.Error("Logger is nil")
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
	if client.MaxBody != MaxResponseBytes {
		t.Errorf("MaxBody = %d, want %d", client.MaxBody, MaxResponseBytes)
	}
}

func TestNewClientWithOptions(t *testing.T) {
	customHTTP := &http.Client{Timeout: 60 * time.Second}
	customLogger := slog.Default()

	client := NewClient(
		WithHTTPClient(customHTTP),
		WithLogger(customLogger),
	)
	defer client.Close()

	if client.HTTPClient != customHTTP {
		t.Error("custom HTTP client was not set")
	}
	if client.Logger != customLogger {
		t.Error("custom logger was not set")
	}
}

func TestWithTimeout(t *testing.T) {
	client := NewClient(WithTimeout(2 * time.Second))
	defer client.Close()

	if client.HTTPClient.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", client.HTTPClient.Timeout)
	}
}

func TestDoRequest_Success(t *testing.T) {
	var gotAccept, gotUA, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"index":"fireball"}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	body, status, err := client.DoRequest(context.Background(), RequestConfig{
		URL:       server.URL + "/spells/fireball",
		UserAgent: "test-agent/1.0",
		Category:  "spells",
	})
	if err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != `{"index":"fireball"}` {
		t.Errorf("body = %q", body)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestDoRequest_DefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	if _, _, err := client.DoRequest(context.Background(), RequestConfig{URL: server.URL}); err != nil {
		t.Fatalf("DoRequest failed: %v", err)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
}

func TestDoRequest_ErrorStatusIsNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			client := NewClient()
			defer client.Close()

			body, status, err := client.DoRequest(context.Background(), RequestConfig{URL: server.URL})
			if err != nil {
				t.Fatalf("DoRequest returned error for HTTP %d: %v", tt.status, err)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if string(body) != `{"error":"nope"}` {
				t.Errorf("body = %q", body)
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("upstream called %d times, want exactly 1", got)
			}
		})
	}
}

func TestDoRequest_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient()
	defer client.Close()

	_, _, err := client.DoRequest(context.Background(), RequestConfig{URL: url})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !apierrors.IsTransport(err) {
		t.Errorf("expected TransportError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(err.Error(), "Request failed: ") {
		t.Errorf("error = %q, want prefix 'Request failed: '", err.Error())
	}
}

func TestDoRequest_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"index":"fireball"}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	url := server.URL + "/api/spells/fireball"
	if _, _, err := client.DoRequest(context.Background(), RequestConfig{URL: url, Category: "spells"}); err != nil {
		t.Fatalf("DoRequest: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "dnd5e.api.get" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	got := make(map[string]string)
	for _, kv := range spans[0].Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["http.url"] != url {
		t.Errorf("http.url = %q, want %q", got["http.url"], url)
	}
	if got["dnd5e.api.category"] != "spells" {
		t.Errorf("dnd5e.api.category = %q, want spells", got["dnd5e.api.category"])
	}
	if got["http.status_code"] != "200" {
		t.Errorf("http.status_code = %q, want 200", got["http.status_code"])
	}
}

func TestDoRequest_ResponseSizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"under limit", `{"a":1}`, false},
		{"at limit", `{"ab":1}`, false},
		{"over limit", `{"abc":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithMaxResponseBytes(8))
			defer client.Close()

			body, _, err := client.DoRequest(context.Background(), RequestConfig{URL: server.URL})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("DoRequest: %v", err)
				}
				if string(body) != tt.body {
					t.Errorf("body = %q, want %q", body, tt.body)
				}
				return
			}

			if !apierrors.IsTransport(err) {
				t.Fatalf("expected TransportError, got %v", err)
			}
			if body != nil {
				t.Errorf("body = %q, want nil", body)
			}
			want := "Request failed: failed to read response: response exceeds 8 bytes"
			if err.Error() != want {
				t.Errorf("error = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestDoRequest_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	defer client.Close()

	_, _, err := client.DoRequest(context.Background(), RequestConfig{URL: server.URL})
	if !apierrors.IsTransport(err) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

func TestDoRequest_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.DoRequest(ctx, RequestConfig{URL: server.URL})
	if !apierrors.IsTransport(err) {
		t.Fatalf("expected TransportError for canceled context, got %v", err)
	}
}

func TestDoRequest_InvalidURL(t *testing.T) {
	client := NewClient()
	defer client.Close()

	_, _, err := client.DoRequest(context.Background(), RequestConfig{URL: "://bad"})
	if err == nil {
		t.Fatal("expected error for malformed URL")
	}
	if apierrors.IsTransport(err) {
		t.Error("malformed URL should not be reported as a transport failure")
	}
}
