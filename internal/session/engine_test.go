package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew-ai/voice-relay/internal/llm"
	"github.com/drew-ai/voice-relay/internal/model"
	"github.com/drew-ai/voice-relay/internal/tools"
	"github.com/drew-ai/voice-relay/pkg/logger"
)

// scriptedLLM replays pre-built delta sequences, one per StreamChat call.
type scriptedLLM struct {
	passes   [][]llm.Delta
	errs     []error
	requests []*llm.Request
}

func (f *scriptedLLM) Name() string { return "scripted" }

func (f *scriptedLLM) StreamChat(_ context.Context, req *llm.Request, handler llm.StreamHandler) error {
	call := len(f.requests)
	f.requests = append(f.requests, req)

	if call < len(f.passes) {
		for _, delta := range f.passes[call] {
			if err := handler(delta); err != nil {
				return err
			}
		}
	}
	if call < len(f.errs) {
		return f.errs[call]
	}
	return nil
}

type fakeDispatcher struct {
	invocations []struct{ name, args string }
	results     map[string]any
	errs        map[string]error
}

func (f *fakeDispatcher) Invoke(_ context.Context, name, rawArgs string, _ tools.Identity) (any, error) {
	f.invocations = append(f.invocations, struct{ name, args string }{name, rawArgs})
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.results[name], nil
}

func collectFrames() (Emitter, *[]model.ResponseFrame) {
	frames := &[]model.ResponseFrame{}
	return func(frame model.ResponseFrame) error {
		*frames = append(*frames, frame)
		return nil
	}, frames
}

func alwaysCurrent(int) bool { return true }

func newTestEngine(client llm.Client, dispatcher Dispatcher) *Engine {
	e := NewEngine(client, dispatcher, tools.Definitions(), "gpt-4o", logger.NewNop())
	e.pickFiller = func() string { return "One moment." }
	return e
}

func TestEngineTextOnlyCycle(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{{
		{Content: "Hello "},
		{Content: "there!"},
	}}}
	engine := newTestEngine(client, &fakeDispatcher{})

	emit, frames := collectFrames()
	engine.Run(context.Background(), 3, []llm.ChatMessage{{Role: "user", Content: "hi"}}, tools.Identity{}, alwaysCurrent, emit)

	require.Len(t, *frames, 3)
	assert.Equal(t, "Hello ", (*frames)[0].Content)
	assert.False(t, (*frames)[0].ContentComplete)
	assert.Equal(t, "there!", (*frames)[1].Content)

	final := (*frames)[2]
	assert.Empty(t, final.Content)
	assert.True(t, final.ContentComplete)
	assert.Equal(t, 3, final.ResponseID)

	require.Len(t, client.requests, 1)
	assert.NotEmpty(t, client.requests[0].Tools, "first pass offers tool definitions")
}

func TestEngineToolCycleReassemblesDeltas(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{
		{
			{ToolCalls: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "Places"}}},
			{ToolCalls: []llm.ToolCallDelta{{Index: 0, Name: "Search", Arguments: `{"location":`}}},
			{ToolCalls: []llm.ToolCallDelta{{Index: 0, Arguments: `"Austin","query_type":"parks"}`}}},
		},
		{
			{Content: "Zilker Park is lovely."},
		},
	}}
	dispatcher := &fakeDispatcher{results: map[string]any{"PlacesSearch": []string{"Zilker Park"}}}
	engine := newTestEngine(client, dispatcher)

	emit, frames := collectFrames()
	engine.Run(context.Background(), 5, []llm.ChatMessage{{Role: "user", Content: "parks nearby?"}}, tools.Identity{}, alwaysCurrent, emit)

	require.Len(t, dispatcher.invocations, 1)
	assert.Equal(t, "PlacesSearch", dispatcher.invocations[0].name)

	var args map[string]string
	require.NoError(t, json.Unmarshal([]byte(dispatcher.invocations[0].args), &args))
	assert.Equal(t, "Austin", args["location"])
	assert.Equal(t, "parks", args["query_type"])

	require.Len(t, *frames, 3)
	assert.Equal(t, "One moment.", (*frames)[0].Content)
	assert.Equal(t, "Zilker Park is lovely.", (*frames)[1].Content)
	assert.True(t, (*frames)[2].ContentComplete)

	require.Len(t, client.requests, 2)
	followup := client.requests[1]
	assert.Empty(t, followup.Tools, "follow-up pass offers no tools")

	last := followup.Messages[len(followup.Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, "Zilker Park")

	assistant := followup.Messages[len(followup.Messages)-2]
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "PlacesSearch", assistant.ToolCalls[0].Name)
}

func TestEngineIsolatesToolFailures(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{
		{
			{ToolCalls: []llm.ToolCallDelta{
				{Index: 0, ID: "call_a", Name: "PlacesSearch", Arguments: `{"location":"Austin","query_type":"parks"}`},
			}},
			{ToolCalls: []llm.ToolCallDelta{
				{Index: 1, ID: "call_b", Name: "MessageRequest", Arguments: `{"lead_name":"Sam"}`},
			}},
		},
		{{Content: "Done what I could."}},
	}}
	dispatcher := &fakeDispatcher{
		results: map[string]any{"PlacesSearch": []string{"a park"}},
		errs:    map[string]error{"MessageRequest": errors.New("backend offline")},
	}
	engine := newTestEngine(client, dispatcher)

	emit, frames := collectFrames()
	engine.Run(context.Background(), 1, nil, tools.Identity{}, alwaysCurrent, emit)

	require.Len(t, dispatcher.invocations, 2)

	followup := client.requests[1]
	toolMessages := followup.Messages[len(followup.Messages)-2:]
	assert.Contains(t, toolMessages[0].Content, "a park")
	assert.Contains(t, toolMessages[1].Content, "Error executing tool")
	assert.Contains(t, toolMessages[1].Content, "backend offline")

	assert.True(t, (*frames)[len(*frames)-1].ContentComplete)
}

func TestEngineStreamFaultYieldsApology(t *testing.T) {
	client := &scriptedLLM{
		passes: [][]llm.Delta{{{Content: "Let me th"}}},
		errs:   []error{errors.New("stream interrupted")},
	}
	engine := newTestEngine(client, &fakeDispatcher{})

	emit, frames := collectFrames()
	engine.Run(context.Background(), 2, nil, tools.Identity{}, alwaysCurrent, emit)

	require.NotEmpty(t, *frames)
	final := (*frames)[len(*frames)-1]
	assert.True(t, final.ContentComplete)
	assert.Contains(t, final.Content, "I apologize")

	completeCount := 0
	for _, frame := range *frames {
		if frame.ContentComplete {
			completeCount++
		}
	}
	assert.Equal(t, 1, completeCount)
}

func TestEngineStopsWhenSuperseded(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{{
		{Content: "first"},
		{Content: "second"},
		{Content: "third"},
	}}}
	engine := newTestEngine(client, &fakeDispatcher{})

	emitted := 0
	isCurrent := func(int) bool { return emitted == 0 }
	emit := func(frame model.ResponseFrame) error {
		emitted++
		return nil
	}

	engine.Run(context.Background(), 1, nil, tools.Identity{}, isCurrent, emit)

	assert.Equal(t, 1, emitted, "no fragments, including the completion frame, after supersession")
}
