// Package model defines wire frames and session records for the voice relay.
package model

// InteractionType tags inbound events on the call connection.
type InteractionType string

const (
	InteractionCallDetails      InteractionType = "call_details"
	InteractionPingPong         InteractionType = "ping_pong"
	InteractionUpdateOnly       InteractionType = "update_only"
	InteractionResponseRequired InteractionType = "response_required"
	InteractionReminderRequired InteractionType = "reminder_required"
)

// Utterance is one transcript entry. The peer tags assistant speech with
// role "agent" and caller speech with role "user".
type Utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallDetails is the one-time session bootstrap payload nested in a
// call_details event.
type CallDetails struct {
	CallID           string            `json:"call_id"`
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`
}

// InboundEvent is a frame received from the peer over the call connection.
type InboundEvent struct {
	InteractionType InteractionType `json:"interaction_type"`
	Call            *CallDetails    `json:"call,omitempty"`
	Timestamp       int64           `json:"timestamp,omitempty"`
	ResponseID      int             `json:"response_id,omitempty"`
	Transcript      []Utterance     `json:"transcript,omitempty"`
}

// InteractionRequest is the transient value handed to a generation cycle.
type InteractionRequest struct {
	InteractionType InteractionType
	ResponseID      int
	Transcript      []Utterance
}

// ConfigFrame is sent once after the connection is accepted.
type ConfigFrame struct {
	ResponseType string        `json:"response_type"`
	Config       ConfigOptions `json:"config"`
	ResponseID   int           `json:"response_id"`
}

// ConfigOptions declares the relay's connection capabilities.
type ConfigOptions struct {
	AutoReconnect bool `json:"auto_reconnect"`
	CallDetails   bool `json:"call_details"`
}

// NewConfigFrame builds the standard configuration frame.
func NewConfigFrame() ConfigFrame {
	return ConfigFrame{
		ResponseType: "config",
		Config: ConfigOptions{
			AutoReconnect: true,
			CallDetails:   true,
		},
		ResponseID: 1,
	}
}

// PingPongFrame is the heartbeat frame, also sent in reply to inbound pings.
type PingPongFrame struct {
	ResponseType string `json:"response_type"`
	Timestamp    int64  `json:"timestamp"`
}

// NewPingPong builds a ping_pong frame carrying the given timestamp.
func NewPingPong(timestamp int64) PingPongFrame {
	return PingPongFrame{ResponseType: "ping_pong", Timestamp: timestamp}
}

// ResponseFrame is the universal streaming unit: zero or more incomplete
// frames followed by exactly one complete frame per response id.
type ResponseFrame struct {
	ResponseType    string `json:"response_type"`
	ResponseID      int    `json:"response_id"`
	Content         string `json:"content"`
	ContentComplete bool   `json:"content_complete"`
	EndCall         bool   `json:"end_call"`
}

// NewResponseFrame builds a response frame for the given response id.
func NewResponseFrame(responseID int, content string, complete, endCall bool) ResponseFrame {
	return ResponseFrame{
		ResponseType:    "response",
		ResponseID:      responseID,
		Content:         content,
		ContentComplete: complete,
		EndCall:         endCall,
	}
}
