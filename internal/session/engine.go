package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/internal/llm"
	"github.com/drew-ai/voice-relay/internal/model"
	"github.com/drew-ai/voice-relay/internal/tools"
	"github.com/drew-ai/voice-relay/pkg/logger"
	"github.com/drew-ai/voice-relay/pkg/metrics"
)

// Emitter delivers one response frame to the peer.
type Emitter func(frame model.ResponseFrame) error

// Dispatcher executes one named tool call.
type Dispatcher interface {
	Invoke(ctx context.Context, name, rawArgs string, identity tools.Identity) (any, error)
}

// errSuperseded aborts a generation once a newer response id has started.
// It is an expected outcome, not a fault.
var errSuperseded = errors.New("response superseded")

const apologyMessage = "I apologize, but I encountered an unexpected error. Could you please try again? "

const defaultTemperature = 0.3

// Engine drives one generation cycle: stream text, accumulate tool-call
// deltas, execute tools, then stream a follow-up pass with the results.
type Engine struct {
	llm         llm.Client
	dispatcher  Dispatcher
	definitions []llm.ToolDefinition
	model       string
	logger      *logger.Logger
	pickFiller  func() string
}

// NewEngine creates a response engine. The tool definitions are offered on
// the first generation pass only.
func NewEngine(client llm.Client, dispatcher Dispatcher, definitions []llm.ToolDefinition, modelName string, log *logger.Logger) *Engine {
	return &Engine{
		llm:         client,
		dispatcher:  dispatcher,
		definitions: definitions,
		model:       modelName,
		logger:      log,
		pickFiller:  func() string { return pickVariant(waitVariants) },
	}
}

// accumulatedCall is a tool call reassembled from streamed deltas. Name and
// arguments may each arrive split across several deltas.
type accumulatedCall struct {
	id   string
	name strings.Builder
	args strings.Builder
}

// Run executes one full generation cycle for the given response id. Every
// fragment emission is preceded by an isCurrent check; once superseded the
// cycle stops silently. Any fault is converted into a single apologetic
// complete frame.
func (e *Engine) Run(ctx context.Context, responseID int, messages []llm.ChatMessage, identity tools.Identity, isCurrent func(int) bool, emit Emitter) {
	started := time.Now()

	ctx, span := otel.Tracer("voice-relay/session").Start(ctx, "generation_cycle")
	span.SetAttributes(attribute.Int("response_id", responseID))
	defer span.End()

	outcome := "completed"
	if err := e.run(ctx, responseID, messages, identity, isCurrent, emit); err != nil {
		if errors.Is(err, errSuperseded) {
			outcome = "superseded"
			metrics.GenerationsSuperseded.Inc()
			e.logger.Debug("generation superseded", zap.Int("response_id", responseID))
		} else {
			outcome = "error"
			e.logger.Error("generation cycle failed",
				zap.Int("response_id", responseID),
				zap.Error(err),
			)
			e.emitFrame(isCurrent, emit, model.NewResponseFrame(responseID, apologyMessage, true, false))
		}
	}
	metrics.RecordGeneration(e.model, outcome, time.Since(started).Seconds())
}

func (e *Engine) run(ctx context.Context, responseID int, messages []llm.ChatMessage, identity tools.Identity, isCurrent func(int) bool, emit Emitter) error {
	var (
		content   strings.Builder
		toolCalls []*accumulatedCall
	)

	req := &llm.Request{
		Model:       e.model,
		Messages:    messages,
		Tools:       e.definitions,
		Temperature: defaultTemperature,
	}

	err := e.llm.StreamChat(ctx, req, func(delta llm.Delta) error {
		for _, tc := range delta.ToolCalls {
			for tc.Index >= len(toolCalls) {
				toolCalls = append(toolCalls, &accumulatedCall{})
			}
			call := toolCalls[tc.Index]
			if tc.ID != "" {
				call.id = tc.ID
			}
			call.name.WriteString(tc.Name)
			call.args.WriteString(tc.Arguments)
		}

		if delta.Content == "" {
			return nil
		}
		content.WriteString(delta.Content)
		if err := e.emitFrame(isCurrent, emit, model.NewResponseFrame(responseID, delta.Content, false, false)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(toolCalls) > 0 {
		if err := e.emitFrame(isCurrent, emit, model.NewResponseFrame(responseID, e.pickFiller(), false, false)); err != nil {
			return err
		}

		messages = append(messages, e.executeTools(ctx, toolCalls, content.String(), identity)...)

		followup := &llm.Request{Model: e.model, Messages: messages}
		err = e.llm.StreamChat(ctx, followup, func(delta llm.Delta) error {
			if delta.Content == "" {
				return nil
			}
			return e.emitFrame(isCurrent, emit, model.NewResponseFrame(responseID, delta.Content, false, false))
		})
		if err != nil {
			return err
		}
	}

	return e.emitFrame(isCurrent, emit, model.NewResponseFrame(responseID, "", true, false))
}

// executeTools runs every accumulated tool call, isolating failures per
// call, and returns the assistant and tool messages for the follow-up pass.
func (e *Engine) executeTools(ctx context.Context, calls []*accumulatedCall, contentSoFar string, identity tools.Identity) []llm.ChatMessage {
	assistant := llm.ChatMessage{
		Role:    string(model.RoleAssistant),
		Content: contentSoFar,
	}
	for _, call := range calls {
		assistant.ToolCalls = append(assistant.ToolCalls, llm.ToolCall{
			ID:        call.id,
			Name:      call.name.String(),
			Arguments: call.args.String(),
		})
	}
	appended := []llm.ChatMessage{assistant}

	for _, call := range calls {
		name := call.name.String()

		result, err := e.dispatcher.Invoke(ctx, name, call.args.String(), identity)
		if err != nil {
			result = map[string]any{"error": fmt.Sprintf("Error executing tool: %v", err)}
		}

		payload, err := json.Marshal(result)
		if err != nil {
			payload = []byte(`{"error": "tool result could not be encoded"}`)
		}

		appended = append(appended, llm.ChatMessage{
			Role:       string(model.RoleTool),
			Name:       name,
			ToolCallID: call.id,
			Content:    string(payload),
		})
	}
	return appended
}

// emitFrame checks supersession immediately before handing the frame to the
// emitter.
func (e *Engine) emitFrame(isCurrent func(int) bool, emit Emitter, frame model.ResponseFrame) error {
	if !isCurrent(frame.ResponseID) {
		return errSuperseded
	}
	if err := emit(frame); err != nil {
		return fmt.Errorf("emitting frame: %w", err)
	}
	metrics.RecordFragment(frame.ContentComplete)
	return nil
}
