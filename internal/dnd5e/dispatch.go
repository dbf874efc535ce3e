package dnd5e

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
	"github.com/olgasafonova/dnd5e-mcp-server/metrics"
)

// Fetcher performs the single outbound GET of a tool call.
type Fetcher interface {
	Get(ctx context.Context, path string) ([]byte, error)
}

// Dispatcher turns tool calls into API requests. It holds no mutable state
// and is safe for concurrent use.
type Dispatcher struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher that fetches through f.
func NewDispatcher(f Fetcher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{fetcher: f, logger: logger}
}

// BuildPath resolves a tool call to the API path it would request, without
// performing it.
func BuildPath(tool string, raw json.RawMessage) (string, error) {
	args, err := DecodeArgs(tool, raw)
	if err != nil {
		return "", err
	}
	return args.Path()
}

// Dispatch executes one tool call. It never panics and never returns a Go
// error: every outcome, including unknown tools and malformed arguments, is
// an Envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, raw json.RawMessage) (env Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.PanicsRecovered.WithLabelValues(tool).Inc()
			d.logger.Error("Panic recovered",
				"tool", tool,
				"panic", rec,
				"stack", string(debug.Stack()))
			env = Envelope{Text: "Internal error: " + tool + " panicked", IsError: true}
		}
	}()

	path, err := BuildPath(tool, raw)
	if err != nil {
		d.logFailure(tool, "", err)
		return Failure(err)
	}

	body, err := d.fetcher.Get(ctx, path)
	if err != nil {
		d.logFailure(tool, path, err)
		return Failure(err)
	}
	return Success(body)
}

func (d *Dispatcher) logFailure(tool, path string, err error) {
	attrs := []any{"tool", tool, "error_code", apierrors.Code(err), "error", err}
	if path != "" {
		attrs = append(attrs, "path", path)
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		// 4xx: the caller asked for something the API does not have
		d.logger.Info("Tool call rejected upstream", attrs...)
		return
	}
	if apierrors.IsValidation(err) || apierrors.IsUnknownTool(err) {
		d.logger.Info("Tool call rejected", attrs...)
		return
	}
	d.logger.Warn("Tool call failed", attrs...)
}
