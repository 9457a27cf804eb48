package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew-ai/voice-relay/internal/comms"
	"github.com/drew-ai/voice-relay/internal/llm"
	"github.com/drew-ai/voice-relay/internal/model"
	"github.com/drew-ai/voice-relay/internal/prompt"
	"github.com/drew-ai/voice-relay/pkg/logger"
)

type fakeBackend struct {
	mu        sync.Mutex
	snapshot  *comms.Snapshot
	fetchErr  error
	fetched   chan string
	persisted []string
	persistErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fetched: make(chan string, 4)}
}

func (f *fakeBackend) FetchSnapshot(_ context.Context, userID string) (*comms.Snapshot, error) {
	f.fetched <- userID
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.snapshot != nil {
		return f.snapshot, nil
	}
	return &comms.Snapshot{}, nil
}

func (f *fakeBackend) PersistCallSummary(_ context.Context, callID, userID, assistantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persisted = append(f.persisted, callID)
	return f.persistErr
}

func (f *fakeBackend) persistCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.persisted)
}

func newTestSession(client llm.Client, backend Backend) *Session {
	engine := newTestEngine(client, &fakeDispatcher{})
	return New(Config{AssistantName: "Drew"}, engine, prompt.NewAssembler(), backend, logger.NewNop())
}

func TestGreetingWithoutMetadataIsGeneric(t *testing.T) {
	s := newTestSession(&scriptedLLM{}, newFakeBackend())

	frame := s.DraftBeginMessage()

	assert.Equal(t, 0, frame.ResponseID)
	assert.True(t, frame.ContentComplete)
	assert.False(t, frame.EndCall)
	assert.Contains(t, frame.Content, "Drew")
}

func TestGreetingFirstInteractionIsOnboarding(t *testing.T) {
	for _, flag := range []string{"true", "1", "YES"} {
		s := newTestSession(&scriptedLLM{}, newFakeBackend())
		s.SetMetadata(&model.CallDetails{
			CallID: "call_1",
			DynamicVariables: map[string]string{
				"user_name":         "Taylor",
				"bot_name":          "Drew",
				"first_interaction": flag,
			},
		})

		frame := s.DraftBeginMessage()
		assert.Contains(t, frame.Content, "Drew", "flag %q", flag)
		assert.Contains(t, frame.Content, "Taylor", "flag %q", flag)
	}
}

func TestGreetingReturningUserIsContextual(t *testing.T) {
	s := newTestSession(&scriptedLLM{}, newFakeBackend())
	s.SetMetadata(&model.CallDetails{
		CallID:           "call_1",
		DynamicVariables: map[string]string{"user_name": "Taylor"},
	})

	frame := s.DraftBeginMessage()
	assert.Contains(t, frame.Content, "Taylor")
}

func TestGreetingMetadataWithoutNameUsesOpeningLine(t *testing.T) {
	s := newTestSession(&scriptedLLM{}, newFakeBackend())
	s.SetMetadata(&model.CallDetails{
		CallID:           "call_1",
		DynamicVariables: map[string]string{"bot_name": "Ripley"},
	})

	frame := s.DraftBeginMessage()
	assert.Contains(t, frame.Content, "Ripley")
}

func TestSetMetadataRefreshesSnapshotAsync(t *testing.T) {
	backend := newFakeBackend()
	backend.snapshot = &comms.Snapshot{
		Communications: []comms.Communication{{CommunicationType: "UserDrewCommunication"}},
	}
	s := newTestSession(&scriptedLLM{}, backend)

	s.SetMetadata(&model.CallDetails{
		CallID:           "call_9",
		DynamicVariables: map[string]string{"user_id": "42"},
	})

	select {
	case userID := <-backend.fetched:
		assert.Equal(t, "42", userID)
	case <-time.After(time.Second):
		t.Fatal("snapshot refresh never started")
	}
}

func TestMetadataSetAtMostOnce(t *testing.T) {
	s := newTestSession(&scriptedLLM{}, newFakeBackend())

	s.SetMetadata(&model.CallDetails{
		CallID:           "call_first",
		DynamicVariables: map[string]string{"user_name": "Taylor"},
	})
	s.SetMetadata(&model.CallDetails{
		CallID:           "call_second",
		DynamicVariables: map[string]string{"user_name": "Impostor"},
	})

	assert.Equal(t, "call_first", s.CallID())
	frame := s.DraftBeginMessage()
	assert.NotContains(t, frame.Content, "Impostor")
}

func TestHandleInteractionIncludesGreetingHistory(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{{{Content: "sure"}}}}
	s := newTestSession(client, newFakeBackend())

	greeting := s.DraftBeginMessage()

	emit, _ := collectFrames()
	s.HandleInteraction(context.Background(), &model.InteractionRequest{
		InteractionType: model.InteractionResponseRequired,
		ResponseID:      1,
		Transcript: []model.Utterance{
			{Role: "agent", Content: greeting.Content},
			{Role: "user", Content: "what's new?"},
		},
	}, emit)

	require.Len(t, client.requests, 1)
	messages := client.requests[0].Messages
	require.GreaterOrEqual(t, len(messages), 3)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, greeting.Content, messages[1].Content)
	assert.Equal(t, "what's new?", messages[len(messages)-1].Content)
}

func TestOlderInteractionIsFullySuppressed(t *testing.T) {
	client := &scriptedLLM{passes: [][]llm.Delta{
		{{Content: "newer"}},
		{{Content: "stale"}},
	}}
	s := newTestSession(client, newFakeBackend())

	emit, frames := collectFrames()
	s.HandleInteraction(context.Background(), &model.InteractionRequest{
		InteractionType: model.InteractionResponseRequired,
		ResponseID:      7,
	}, emit)

	newerFrames := len(*frames)
	require.Greater(t, newerFrames, 0)

	s.HandleInteraction(context.Background(), &model.InteractionRequest{
		InteractionType: model.InteractionResponseRequired,
		ResponseID:      4,
	}, emit)

	assert.Equal(t, newerFrames, len(*frames), "no frames may be emitted for the stale id")
	for _, frame := range *frames {
		assert.Equal(t, 7, frame.ResponseID)
	}
}

func TestCleanupPersistsOnce(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSession(&scriptedLLM{}, backend)
	s.SetMetadata(&model.CallDetails{
		CallID:           "call_done",
		DynamicVariables: map[string]string{"user_id": "42", "drew_id": "drew-1"},
	})

	s.Cleanup(context.Background())
	s.Cleanup(context.Background())

	assert.Equal(t, 1, backend.persistCount())
}

func TestCleanupSkipsWithoutIdentity(t *testing.T) {
	backend := newFakeBackend()
	s := newTestSession(&scriptedLLM{}, backend)

	s.Cleanup(context.Background())
	assert.Zero(t, backend.persistCount())
}

func TestCleanupSwallowsPersistenceFault(t *testing.T) {
	backend := newFakeBackend()
	backend.persistErr = errors.New("backend down")
	s := newTestSession(&scriptedLLM{}, backend)
	s.SetMetadata(&model.CallDetails{
		CallID:           "call_x",
		DynamicVariables: map[string]string{"user_id": "42"},
	})

	assert.NotPanics(t, func() { s.Cleanup(context.Background()) })
}

func TestTimeGreetingBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{5, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{16, "Good afternoon"},
		{17, "Good evening"},
		{21, "Good evening"},
		{22, "Happy late night"},
		{3, "Happy late night"},
	}
	for _, tc := range cases {
		at := time.Date(2024, 6, 10, tc.hour, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.want, timeGreeting(at), "hour %d", tc.hour)
	}
}
