// Package tools implements dispatch of model-requested tool calls to the
// external action backends.
package tools

import (
	"fmt"
	"strings"
	"time"
)

// Tool names as declared to the model.
const (
	ToolPlacesSearch   = "PlacesSearch"
	ToolBookingRequest = "BookingRequest"
	ToolCallRequest    = "CallRequest"
	ToolMessageRequest = "MessageRequest"
	ToolPropertySearch = "PropertySearch"
)

// ValidationError reports a rejected tool argument. It fails the single tool
// call, never the session.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Tool, e.Field, e.Reason)
}

// PlacesSearchRequest searches for places near a location.
type PlacesSearchRequest struct {
	Location  string `json:"location"`
	QueryType string `json:"query_type"`
}

// Validate checks required fields.
func (r *PlacesSearchRequest) Validate() error {
	if r.Location == "" {
		return &ValidationError{Tool: ToolPlacesSearch, Field: "location", Reason: "required"}
	}
	if r.QueryType == "" {
		return &ValidationError{Tool: ToolPlacesSearch, Field: "query_type", Reason: "required"}
	}
	return nil
}

// BookingRequest books an appointment with a lead.
type BookingRequest struct {
	LeadName    string `json:"lead_name"`
	StartTime   string `json:"start_time"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks required fields and the start time format.
func (r *BookingRequest) Validate() error {
	if r.LeadName == "" {
		return &ValidationError{Tool: ToolBookingRequest, Field: "lead_name", Reason: "required"}
	}
	if _, err := parseISOTime(r.StartTime); err != nil {
		return &ValidationError{Tool: ToolBookingRequest, Field: "start_time", Reason: "must be ISO format (YYYY-MM-DDTHH:MM:SS)"}
	}
	return nil
}

// CallRequest schedules a call with a contact. The call time must fall on
// today or the following calendar day.
type CallRequest struct {
	ContactName      string `json:"contact_name"`
	CallTime         string `json:"call_time"`
	DiscussionPoints string `json:"discussion_points,omitempty"`
}

// Validate checks required fields and the today-or-tomorrow window relative
// to now.
func (r *CallRequest) Validate(now time.Time) error {
	if r.ContactName == "" {
		return &ValidationError{Tool: ToolCallRequest, Field: "contact_name", Reason: "required"}
	}
	callTime, err := parseISOTime(r.CallTime)
	if err != nil {
		return &ValidationError{Tool: ToolCallRequest, Field: "call_time", Reason: "must be ISO format (YYYY-MM-DDTHH:MM:SS)"}
	}

	if !sameDate(callTime, now) && !sameDate(callTime, now.AddDate(0, 0, 1)) {
		return &ValidationError{Tool: ToolCallRequest, Field: "call_time", Reason: "must be either now (today) or the next day"}
	}
	return nil
}

// MessageRequest sends a message to a lead via SMS or email.
type MessageRequest struct {
	LeadName       string `json:"lead_name"`
	MessageType    string `json:"message_type"`
	MessageContent string `json:"message_content"`
}

// Validate checks required fields and the channel.
func (r *MessageRequest) Validate() error {
	if r.LeadName == "" {
		return &ValidationError{Tool: ToolMessageRequest, Field: "lead_name", Reason: "required"}
	}
	if r.MessageContent == "" {
		return &ValidationError{Tool: ToolMessageRequest, Field: "message_content", Reason: "required"}
	}
	switch strings.ToLower(r.MessageType) {
	case "sms", "email":
		return nil
	default:
		return &ValidationError{Tool: ToolMessageRequest, Field: "message_type", Reason: "must be 'SMS' or 'Email'"}
	}
}

// PropertySearchRequest searches property listings in a location.
type PropertySearchRequest struct {
	Location   string `json:"location"`
	StatusType string `json:"status_type,omitempty"`
}

// Validate checks required fields and normalizes the status filter.
func (r *PropertySearchRequest) Validate() error {
	if r.Location == "" {
		return &ValidationError{Tool: ToolPropertySearch, Field: "location", Reason: "required"}
	}
	if r.StatusType == "" {
		r.StatusType = "ForSale"
	}
	switch r.StatusType {
	case "ForSale", "ForRent":
		return nil
	default:
		return &ValidationError{Tool: ToolPropertySearch, Field: "status_type", Reason: "must be 'ForSale' or 'ForRent'"}
	}
}

// parseISOTime accepts RFC 3339 and timezone-less ISO timestamps.
func parseISOTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, time.Local)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
