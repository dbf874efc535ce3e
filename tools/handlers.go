package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
	"github.com/olgasafonova/dnd5e-mcp-server/metrics"
	"github.com/olgasafonova/dnd5e-mcp-server/tracing"
)

const methodCallTool = "tools/call"

// HandlerRegistry registers every tool in AllTools against one dispatcher.
type HandlerRegistry struct {
	dispatcher *dnd5e.Dispatcher
	logger     *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(dispatcher *dnd5e.Dispatcher, logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterAll registers all tools with the MCP server, plus the middleware
// that answers calls to tools outside AllTools.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		server.AddTool(h.buildTool(spec), h.handler(spec))
	}
	server.AddReceivingMiddleware(h.unknownToolMiddleware)
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,

		// Every tool is a GET; none can delete or overwrite.
		DestructiveHint: ptr(false),
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Title:       spec.Title,
		Description: spec.Description,
		InputSchema: spec.InputSchema,
		Annotations: annotations,
	}
}

// handler wraps the dispatcher with panic recovery, metrics, tracing, and logging.
// Arguments are passed to the dispatcher unvalidated; it owns validation so
// every failure comes back as an error envelope.
func (h *HandlerRegistry) handler(spec ToolSpec) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer h.recoverPanic(spec.Name, &result)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		start := time.Now()
		env := h.dispatcher.Dispatch(ctx, spec.Name, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))
		if env.IsError {
			span.SetStatus(codes.Error, env.Text)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		metrics.RecordRequest(spec.Name, duration, !env.IsError)
		h.logExecution(spec, args, env, duration)

		return ToCallToolResult(env), nil
	}
}

// unknownToolMiddleware answers tools/call for names outside AllTools with an
// error envelope. Without it the SDK rejects the call as a protocol error.
func (h *HandlerRegistry) unknownToolMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != methodCallTool {
			return next(ctx, method, req)
		}
		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil || dnd5e.IsTool(call.Params.Name) {
			return next(ctx, method, req)
		}

		name := call.Params.Name
		metrics.RecordRequest("unknown", 0, false)
		return ToCallToolResult(h.dispatcher.Dispatch(ctx, name, call.Params.Arguments)), nil
	}
}

// recoverPanic converts a panic in a tool handler into an error result.
func (h *HandlerRegistry) recoverPanic(toolName string, result **mcp.CallToolResult) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		*result = ToCallToolResult(dnd5e.Envelope{
			Text:    "Internal error: " + toolName + " panicked",
			IsError: true,
		})
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args json.RawMessage, env dnd5e.Envelope, duration float64) {
	attrs := []any{
		"tool", spec.Name,
		"category", spec.Category,
		"is_error", env.IsError,
		"bytes", len(env.Text),
		"duration_seconds", duration,
	}

	if decoded, err := dnd5e.DecodeArgs(spec.Name, args); err == nil {
		switch a := decoded.(type) {
		case *dnd5e.ListResourcesArgs:
			attrs = append(attrs, "endpoint", a.Endpoint)
		case *dnd5e.GetResourceArgs:
			attrs = append(attrs, "endpoint", a.Endpoint, "index", a.Index)
		case *dnd5e.SearchSpellsArgs:
			if a.Level != nil {
				attrs = append(attrs, "level", *a.Level)
			}
			attrs = append(attrs, "school", a.School, "class", a.Class)
		case *dnd5e.SearchMonstersArgs:
			if a.ChallengeRating != nil {
				attrs = append(attrs, "challenge_rating", *a.ChallengeRating)
			}
			attrs = append(attrs, "type", a.Type)
		case *dnd5e.GetClassLevelsArgs:
			attrs = append(attrs, "class_index", a.ClassIndex)
			if a.Level != nil {
				attrs = append(attrs, "level", *a.Level)
			}
		case *dnd5e.GetClassSpellsArgs:
			attrs = append(attrs, "class_index", a.ClassIndex)
		case *dnd5e.ListEndpointsArgs:
			// No args to log
		}
	}

	if env.IsError {
		attrs = append(attrs, "error", env.Text)
	}
	h.logger.Info("Tool executed", attrs...)
}

// ToCallToolResult renders an envelope as a single text block.
func ToCallToolResult(env dnd5e.Envelope) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: env.Text}},
		IsError: env.IsError,
	}
}
