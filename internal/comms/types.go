// Package comms talks to the communication-history backend and the call
// platform's record API.
package comms

// Snapshot is the last-fetched history and metrics for one user. It is an
// advisory cache used only to enrich prompts; staleness is tolerated.
type Snapshot struct {
	Metrics        Metrics         `json:"metrics"`
	Communications []Communication `json:"communications"`
}

// Communication is one prior interaction record.
type Communication struct {
	CommunicationType string         `json:"communication_type"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	Details           map[string]any `json:"details"`
	CreatedAt         string         `json:"created_at"`
}

// assistantCommunicationType marks records of prior assistant-user calls.
const assistantCommunicationType = "UserDrewCommunication"

// HasAssistantHistory reports whether the snapshot contains any prior
// assistant-user communication.
func (s *Snapshot) HasAssistantHistory() bool {
	for _, c := range s.Communications {
		if c.CommunicationType == assistantCommunicationType {
			return true
		}
	}
	return false
}

// Metrics aggregates backend analytics for prompt personalization.
type Metrics struct {
	CallMetrics       CallMetrics       `json:"call_metrics"`
	LeadMetrics       LeadMetrics       `json:"lead_metrics"`
	Appointments      AppointmentData   `json:"appointments"`
	ActionableMetrics ActionableMetrics `json:"actionable_metrics"`
}

// CallMetrics summarizes call activity.
type CallMetrics struct {
	TotalCalls      int            `json:"total_calls"`
	CallsByStatus   map[string]int `json:"calls_by_status"`
	AverageDuration float64        `json:"average_duration"`
}

// LeadMetrics summarizes lead activity.
type LeadMetrics struct {
	TotalLeads         int               `json:"total_leads"`
	LeadsByStatus      map[string]int    `json:"leads_by_status"`
	LatestInteractions []LeadInteraction `json:"latest_interactions"`
	MostActiveLead     *ActiveLead       `json:"most_active_lead,omitempty"`
}

// LeadInteraction is one recent lead touchpoint.
type LeadInteraction struct {
	LeadName string            `json:"lead_name"`
	Type     string            `json:"type"`
	Status   string            `json:"status"`
	Details  InteractionDetail `json:"details"`
}

// InteractionDetail carries the free-form message of an interaction.
type InteractionDetail struct {
	Message string `json:"message"`
}

// ActiveLead identifies the lead with the most interactions.
type ActiveLead struct {
	Name             string `json:"name"`
	InteractionCount int    `json:"interaction_count"`
}

// AppointmentData summarizes recent and upcoming appointments.
type AppointmentData struct {
	RecentAppointments []Appointment `json:"recent_appointments"`
	UpcomingCount      int           `json:"upcoming_count"`
}

// Appointment is one scheduled appointment.
type Appointment struct {
	AppointmentTime    string             `json:"appointment_time"`
	Status             string             `json:"status"`
	ParticipantDetails ParticipantDetails `json:"participant_details"`
}

// ParticipantDetails names the appointment participant.
type ParticipantDetails struct {
	Name string `json:"name"`
}

// ActionableMetrics carries derived follow-up signals.
type ActionableMetrics struct {
	NewLeadsLast30Days         int     `json:"new_leads_last_30_days"`
	SuccessfulCallsRate        float64 `json:"successful_calls_rate"`
	AverageInteractionsPerLead float64 `json:"average_interactions_per_lead"`
	LeadsNeedingFollowup       int     `json:"leads_needing_followup"`
}

// CommunicationRecord is the payload persisted to the backend after a call.
type CommunicationRecord struct {
	UserID      int            `json:"user_id"`
	AssistantID string         `json:"drew_id,omitempty"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	Duration    int            `json:"duration,omitempty"`
	CallTime    string         `json:"call_time,omitempty"`
	CallID      string         `json:"call_id,omitempty"`
}

// CallRecord is the call platform's record for one finished call.
type CallRecord struct {
	CallID         string        `json:"call_id"`
	DurationMs     float64       `json:"duration_ms"`
	StartTimestamp float64       `json:"start_timestamp"`
	RecordingURL   string        `json:"recording_url"`
	CallAnalysis   *CallAnalysis `json:"call_analysis,omitempty"`
}

// CallAnalysis holds the post-call analysis produced by the platform.
type CallAnalysis struct {
	CallSummary string `json:"call_summary"`
}

// HasSummary reports whether the analysis summary is available yet.
func (r *CallRecord) HasSummary() bool {
	return r.CallAnalysis != nil && r.CallAnalysis.CallSummary != ""
}
