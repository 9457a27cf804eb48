package comms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew-ai/voice-relay/pkg/logger"
)

func newTestClient(backendURL, callAPIURL string) *Client {
	return NewClient(Config{
		BackendURL:        backendURL,
		CallAPIURL:        callAPIURL,
		SummaryMaxRetries: 3,
		SummaryRetryWait:  10 * time.Millisecond,
	}, logger.NewNop())
}

func TestPersistCallSummaryWaitsForAnalysis(t *testing.T) {
	var polls atomic.Int32
	callAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/get-call/call_1", r.URL.Path)
		record := CallRecord{
			CallID:         "call_1",
			DurationMs:     95500,
			StartTimestamp: 1718026200000,
			RecordingURL:   "https://recordings/call_1.wav",
		}
		if polls.Add(1) >= 2 {
			record.CallAnalysis = &CallAnalysis{CallSummary: "Discussed two listings."}
		}
		json.NewEncoder(w).Encode(record)
	}))
	defer callAPI.Close()

	var saved *CommunicationRecord
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/save_communication", r.URL.Path)
		var record CommunicationRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		saved = &record
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	client := newTestClient(backend.URL, callAPI.URL)
	err := client.PersistCallSummary(context.Background(), "call_1", "42", "drew-1")

	require.NoError(t, err)
	assert.Equal(t, int32(2), polls.Load())
	require.NotNil(t, saved)
	assert.Equal(t, 42, saved.UserID)
	assert.Equal(t, "drew-1", saved.AssistantID)
	assert.Equal(t, "CALL", saved.Type)
	assert.Equal(t, 95, saved.Duration)
	assert.Equal(t, "Discussed two listings.", saved.Details["notes"])
	assert.Equal(t, "https://recordings/call_1.wav", saved.Details["recording_url"])
}

func TestPersistCallSummaryAbandonsAfterBudget(t *testing.T) {
	var polls atomic.Int32
	callAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		json.NewEncoder(w).Encode(CallRecord{CallID: "call_2"})
	}))
	defer callAPI.Close()

	saves := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		saves++
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	client := newTestClient(backend.URL, callAPI.URL)
	err := client.PersistCallSummary(context.Background(), "call_2", "42", "drew-1")

	require.Error(t, err)
	assert.Equal(t, int32(3), polls.Load())
	assert.Zero(t, saves, "no persistence call without a summary")
}

func TestPersistCallSummaryStopsOnFetchFailure(t *testing.T) {
	var polls atomic.Int32
	callAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer callAPI.Close()

	client := newTestClient("http://unused", callAPI.URL)
	err := client.PersistCallSummary(context.Background(), "call_3", "42", "")

	require.Error(t, err)
	assert.Equal(t, int32(1), polls.Load(), "endpoint failures are not retried")
}

func TestPersistCallSummaryRejectsBadUserID(t *testing.T) {
	client := newTestClient("http://unused", "http://unused")
	err := client.PersistCallSummary(context.Background(), "call_4", "not-a-number", "")
	require.Error(t, err)
}

func TestFetchSnapshotDetectsHistory(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_user_communications/42", r.URL.Path)
		json.NewEncoder(w).Encode(Snapshot{
			Communications: []Communication{
				{CommunicationType: "UserDrewCommunication", Type: "CALL"},
			},
		})
	}))
	defer backend.Close()

	client := newTestClient(backend.URL, "http://unused")
	snapshot, err := client.FetchSnapshot(context.Background(), "42")

	require.NoError(t, err)
	assert.True(t, snapshot.HasAssistantHistory())
}
