// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
)

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a fully assembled tool call extracted from model output.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes one callable tool offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCallDelta is an incremental piece of a tool call. Name and Arguments
// may each arrive split across several deltas for the same index.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Delta is one unit of streamed model output.
type Delta struct {
	Content   string
	ToolCalls []ToolCallDelta
}

// StreamHandler is called for each delta during streaming.
type StreamHandler func(delta Delta) error

// Request represents a streaming chat request.
type Request struct {
	Model       string
	Messages    []ChatMessage
	Tools       []ToolDefinition
	Temperature float32
	MaxTokens   int
}

// Client is the interface for LLM providers.
type Client interface {
	// StreamChat sends a chat request and invokes handler for every delta
	// until the stream ends.
	StreamChat(ctx context.Context, req *Request, handler StreamHandler) error

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}
