package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Action outcomes surfaced back into the follow-up generation. The backend
// distinguishes accepted writes (200/202), ambiguous lead matches (300) and
// unknown leads (404); each is reported distinctly so the model can recover.
const (
	OutcomeAccepted        = "accepted"
	OutcomeMultipleMatches = "multiple_matches"
	OutcomeNotFound        = "not_found"
)

// ActionResult is the normalized response of a backend write action.
type ActionResult struct {
	Outcome string         `json:"outcome"`
	Body    map[string]any `json:"body,omitempty"`
}

// postAction posts a payload to a backend path and normalizes the response
// status families.
func (inv *Invoker) postAction(ctx context.Context, path string, payload any) (*ActionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inv.cfg.BackendURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := inv.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	responseBody := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		responseBody = nil
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return &ActionResult{Outcome: OutcomeAccepted, Body: responseBody}, nil
	case http.StatusMultipleChoices:
		return &ActionResult{Outcome: OutcomeMultipleMatches, Body: responseBody}, nil
	case http.StatusNotFound:
		return &ActionResult{Outcome: OutcomeNotFound, Body: responseBody}, nil
	default:
		message := "unknown error occurred"
		if m, ok := responseBody["message"].(string); ok && m != "" {
			message = m
		}
		return nil, fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode, message)
	}
}

const defaultAppointmentDuration = 30 * time.Minute

// bookAppointment acknowledges the booking immediately and dispatches the
// calendar write out of band.
func (inv *Invoker) bookAppointment(req *BookingRequest, identity Identity) map[string]any {
	startTime, _ := parseISOTime(req.StartTime)
	endTime := startTime.Add(defaultAppointmentDuration)

	payload := map[string]any{
		"user_id":      identity.UserID,
		"lead_name":    req.LeadName,
		"start_time":   startTime.Format("2006-01-02T15:04:05"),
		"end_time":     endTime.Format("2006-01-02T15:04:05"),
		"location":     req.Location,
		"description":  req.Description,
		"request_time": time.Now().Format(time.RFC3339),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := inv.postAction(ctx, "/book_appointment", payload)
		if err != nil {
			inv.logger.Error("background booking dispatch failed",
				zap.String("lead_name", req.LeadName),
				zap.Error(err),
			)
			return
		}
		inv.logger.Info("booking dispatched",
			zap.String("lead_name", req.LeadName),
			zap.String("outcome", result.Outcome),
		)
	}()

	return map[string]any{
		"status":     "scheduled",
		"message":    "Booking request has been processed, invite sent.",
		"user_id":    identity.UserID,
		"lead_name":  req.LeadName,
		"start_time": startTime.Format("2006-01-02T15:04:05"),
		"end_time":   endTime.Format("2006-01-02T15:04:05"),
	}
}

// initiateCall schedules a call through the backend.
func (inv *Invoker) initiateCall(ctx context.Context, req *CallRequest, identity Identity) (*ActionResult, error) {
	callTime, _ := parseISOTime(req.CallTime)

	return inv.postAction(ctx, "/initiate_call", map[string]any{
		"user_id":           identity.UserID,
		"contact_name":      req.ContactName,
		"call_time":         callTime.Format("2006-01-02T15:04:05"),
		"discussion_points": req.DiscussionPoints,
	})
}

// sendMessage dispatches an SMS or email to a lead through the backend.
func (inv *Invoker) sendMessage(ctx context.Context, req *MessageRequest, identity Identity) (*ActionResult, error) {
	return inv.postAction(ctx, "/send_message", map[string]any{
		"user_id":         identity.UserID,
		"lead_name":       req.LeadName,
		"message_type":    req.MessageType,
		"message_content": req.MessageContent,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
