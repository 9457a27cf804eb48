package comms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/pkg/logger"
	"github.com/drew-ai/voice-relay/pkg/metrics"
	"github.com/drew-ai/voice-relay/pkg/retry"
)

// ErrNoSummary is returned while the call platform has not produced an
// analysis summary yet.
var ErrNoSummary = errors.New("call summary not available")

// Config holds the backend and call platform endpoints.
type Config struct {
	BackendURL        string
	CallAPIURL        string
	CallAPIKey        string
	SummaryMaxRetries uint64
	SummaryRetryWait  time.Duration
}

// Client is the communication-history backend client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new communications client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log,
	}
}

// FetchSnapshot retrieves the history and metrics snapshot for a user.
func (c *Client) FetchSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	url := fmt.Sprintf("%s/get_user_communications/%s", c.cfg.BackendURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user communications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching user communications: unexpected status %d", resp.StatusCode)
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding communications snapshot: %w", err)
	}

	return &snapshot, nil
}

// SaveCommunication persists one communication record. The backend replies
// 201 on success.
func (c *Client) SaveCommunication(ctx context.Context, record *CommunicationRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding communication record: %w", err)
	}

	url := c.cfg.BackendURL + "/save_communication"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("saving communication: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("saving communication: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// FetchCallRecord retrieves the platform record for a finished call.
func (c *Client) FetchCallRecord(ctx context.Context, callID string) (*CallRecord, error) {
	url := fmt.Sprintf("%s/v2/get-call/%s", c.cfg.CallAPIURL, callID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.CallAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching call record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching call record: unexpected status %d", resp.StatusCode)
	}

	var record CallRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding call record: %w", err)
	}

	return &record, nil
}

// PersistCallSummary polls the call platform until an analysis summary is
// available, then saves a CALL communication record with the computed
// duration. It gives up after the retry budget and returns the final error
// for logging; persistence failures never propagate to the peer.
func (c *Client) PersistCallSummary(ctx context.Context, callID, userID, assistantID string) error {
	uid, err := strconv.Atoi(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	var record *CallRecord
	err = retry.Do(ctx, c.cfg.SummaryMaxRetries, c.cfg.SummaryRetryWait, func() error {
		r, err := c.FetchCallRecord(ctx, callID)
		if err != nil {
			// The record endpoint itself failing is not worth the budget.
			return retry.Permanent(err)
		}
		if !r.HasSummary() {
			return ErrNoSummary
		}
		record = r
		return nil
	})
	if err != nil {
		metrics.CallSummariesTotal.WithLabelValues("abandoned").Inc()
		return err
	}

	saved := &CommunicationRecord{
		UserID:      uid,
		AssistantID: assistantID,
		Type:        "CALL",
		Status:      "successful",
		Details: map[string]any{
			"notes":         record.CallAnalysis.CallSummary,
			"recording_url": record.RecordingURL,
		},
		Duration: int(record.DurationMs / 1000),
		CallTime: time.UnixMilli(int64(record.StartTimestamp)).Format(time.RFC3339),
		CallID:   callID,
	}

	if err := c.SaveCommunication(ctx, saved); err != nil {
		metrics.CallSummariesTotal.WithLabelValues("save_failed").Inc()
		return err
	}

	metrics.CallSummariesTotal.WithLabelValues("persisted").Inc()
	c.logger.Info("call summary persisted",
		zap.String("call_id", callID),
		zap.Int("duration_seconds", saved.Duration),
	)
	return nil
}
