package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/pkg/logger"
	"github.com/drew-ai/voice-relay/pkg/metrics"
)

// ErrUnknownTool is returned when the model requests a tool that was never
// declared to it.
var ErrUnknownTool = errors.New("unknown tool")

// Identity carries the per-call caller identity tool actions are performed
// on behalf of.
type Identity struct {
	UserID      string
	AssistantID string
}

// Config holds the external endpoints the invoker talks to.
type Config struct {
	BackendURL      string
	PlacesAPIURL    string
	PlacesAPIKey    string
	PropertyAPI1URL string
	PropertyAPI1Key string
	PropertyAPI2URL string
	PropertyAPI2Key string
}

// Invoker validates and dispatches model-requested tool calls.
type Invoker struct {
	cfg        Config
	httpClient *http.Client
	cache      ResponseCache
	logger     *logger.Logger
	now        func() time.Time
}

// NewInvoker creates a tool invoker. A nil cache disables response caching.
func NewInvoker(cfg Config, cache ResponseCache, log *logger.Logger) *Invoker {
	return &Invoker{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		logger:     log,
		now:        time.Now,
	}
}

// Invoke parses and validates the raw JSON arguments for the named tool and
// executes it. Argument and validation failures are returned as errors; the
// caller is expected to fold them into the conversation rather than fail the
// session.
func (inv *Invoker) Invoke(ctx context.Context, name, rawArgs string, identity Identity) (any, error) {
	started := time.Now()

	ctx, span := otel.Tracer("voice-relay/tools").Start(ctx, "tool_invocation")
	span.SetAttributes(attribute.String("tool", name))
	defer span.End()

	result, err := inv.dispatch(ctx, name, rawArgs, identity)

	status := "ok"
	if err != nil {
		status = "error"
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			status = "invalid"
		}
	}
	metrics.RecordToolInvocation(name, status, time.Since(started).Seconds())

	if err != nil {
		inv.logger.Warn("tool invocation failed",
			zap.String("tool", name),
			zap.String("status", status),
			zap.Error(err),
		)
	}
	return result, err
}

func (inv *Invoker) dispatch(ctx context.Context, name, rawArgs string, identity Identity) (any, error) {
	switch name {
	case ToolPlacesSearch:
		var req PlacesSearchRequest
		if err := decodeArgs(name, rawArgs, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		if cached, ok := inv.cached(name, rawArgs); ok {
			return cached, nil
		}
		result, err := inv.findPlaces(ctx, &req)
		if err != nil {
			return nil, err
		}
		inv.store(name, rawArgs, result)
		return result, nil

	case ToolPropertySearch:
		var req PropertySearchRequest
		if err := decodeArgs(name, rawArgs, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		if cached, ok := inv.cached(name, rawArgs); ok {
			return cached, nil
		}
		result, err := inv.searchProperties(ctx, &req)
		if err != nil {
			return nil, err
		}
		inv.store(name, rawArgs, result)
		return result, nil

	case ToolBookingRequest:
		var req BookingRequest
		if err := decodeArgs(name, rawArgs, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return inv.bookAppointment(&req, identity), nil

	case ToolCallRequest:
		var req CallRequest
		if err := decodeArgs(name, rawArgs, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(inv.now()); err != nil {
			return nil, err
		}
		return inv.initiateCall(ctx, &req, identity)

	case ToolMessageRequest:
		var req MessageRequest
		if err := decodeArgs(name, rawArgs, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return inv.sendMessage(ctx, &req, identity)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func decodeArgs(tool, rawArgs string, v any) error {
	if rawArgs == "" {
		rawArgs = "{}"
	}
	if err := json.Unmarshal([]byte(rawArgs), v); err != nil {
		return &ValidationError{Tool: tool, Field: "arguments", Reason: "malformed JSON"}
	}
	return nil
}

func (inv *Invoker) cached(tool, args string) (any, bool) {
	if inv.cache == nil {
		return nil, false
	}
	return inv.cache.Get(tool, args)
}

func (inv *Invoker) store(tool, args string, response any) {
	if inv.cache == nil {
		return
	}
	inv.cache.Set(tool, args, response, DefaultCacheTTL)
}

// getJSON executes a prepared request and decodes a JSON body, treating any
// non-2xx status as an error.
func (inv *Invoker) getJSON(req *http.Request, v any) error {
	resp, err := inv.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
