// Package prompt assembles the message sequence handed to the model for each
// generation cycle.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/drew-ai/voice-relay/internal/comms"
	"github.com/drew-ai/voice-relay/internal/llm"
	"github.com/drew-ai/voice-relay/internal/model"
)

// Input carries everything one assembly needs. Metadata and Snapshot may be
// nil; the assembler degrades to an unpersonalized prompt.
type Input struct {
	Metadata        map[string]string
	Snapshot        *comms.Snapshot
	History         []model.Message
	Transcript      []model.Utterance
	InteractionType model.InteractionType
}

// Assembler builds model message sequences. The clock is injectable so the
// datetime header is testable.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an assembler using the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Build produces the full message sequence: system prompt with datetime and
// personalized context, session history, transcript, and the reminder nudge
// when the interaction is unprompted.
func (a *Assembler) Build(in Input) []llm.ChatMessage {
	system := personaPrompt +
		"\n\nCurrent Date and Time: " + formatDatetime(a.now()) +
		"\n\nPersonalized Context:\n" + personalizedContext(in.Metadata, in.Snapshot)

	messages := []llm.ChatMessage{{Role: string(model.RoleSystem), Content: system}}

	for _, msg := range in.History {
		messages = append(messages, llm.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	for _, utterance := range in.Transcript {
		role := model.RoleUser
		if utterance.Role == "agent" {
			role = model.RoleAssistant
		}
		messages = append(messages, llm.ChatMessage{Role: string(role), Content: utterance.Content})
	}

	if in.InteractionType == model.InteractionReminderRequired {
		messages = append(messages, llm.ChatMessage{Role: string(model.RoleUser), Content: reminderNudge})
	}
	return messages
}

func formatDatetime(t time.Time) string {
	return t.Format("Monday, January 02, 2006 at 03:04 PM")
}

// personalizedContext renders the metadata and backend metrics into the
// context block of the system prompt. Empty when either source is missing.
func personalizedContext(metadata map[string]string, snapshot *comms.Snapshot) string {
	if metadata == nil || snapshot == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are %s\n", valueOr(metadata, "bot_name", "Drew"))
	fmt.Fprintf(&b, "You're speaking with %s.\n", valueOr(metadata, "user_name", "an agent"))
	fmt.Fprintf(&b, "Role: %s\n", valueOr(metadata, "role", "Agent"))
	fmt.Fprintf(&b, "Additional Information: %s\n\n", metadata["additional_info"])

	b.WriteString("Current Status:\n")
	b.WriteString(activityOverview(&snapshot.Metrics))

	b.WriteString("\nInstructions:\n")
	b.WriteString("- Use this context to personalize your responses and make relevant suggestions\n")
	b.WriteString("- Reference specific appointments and upcoming meetings when relevant\n")
	b.WriteString("- Prioritize leads needing follow-up in your recommendations\n")
	b.WriteString("- Consider the call success rate when making suggestions about communication methods\n")
	b.WriteString("- Use the lead status distribution to inform your strategy recommendations\n")
	b.WriteString("- Pay attention to the most active lead and recent interactions\n")
	b.WriteString("- Remember that the agent has access to full historical data through the dashboard\n")

	return b.String()
}

func activityOverview(m *comms.Metrics) string {
	var b strings.Builder

	b.WriteString("Recent Activity Overview:\n")
	b.WriteString("Call Statistics:\n")
	fmt.Fprintf(&b, "- Total Calls: %d\n", m.CallMetrics.TotalCalls)
	fmt.Fprintf(&b, "- Successful Calls: %d\n", m.CallMetrics.CallsByStatus["successful"])
	fmt.Fprintf(&b, "- Missed Calls: %d\n", m.CallMetrics.CallsByStatus["missed"])
	fmt.Fprintf(&b, "- Average Call Duration: %.0f seconds\n\n", m.CallMetrics.AverageDuration)

	b.WriteString("Lead Overview:\n")
	fmt.Fprintf(&b, "Total Leads: %d\n", m.LeadMetrics.TotalLeads)
	b.WriteString("Status Breakdown:\n")
	fmt.Fprintf(&b, "- New: %d\n", m.LeadMetrics.LeadsByStatus["new"])
	fmt.Fprintf(&b, "- Contacted: %d\n", m.LeadMetrics.LeadsByStatus["contacted"])
	fmt.Fprintf(&b, "- Qualified: %d\n", m.LeadMetrics.LeadsByStatus["qualified"])
	fmt.Fprintf(&b, "- Closed: %d\n", m.LeadMetrics.LeadsByStatus["closed"])

	if lead := m.LeadMetrics.MostActiveLead; lead != nil {
		fmt.Fprintf(&b, "Most Active Lead: %s (%d interactions)\n", lead.Name, lead.InteractionCount)
	}

	b.WriteString("\nRecent Interactions (last 5):\n")
	for _, interaction := range m.LeadMetrics.LatestInteractions {
		name := interaction.LeadName
		if name == "" {
			name = "Unknown"
		}
		details := interaction.Details.Message
		if details == "" {
			details = "No details available"
		}
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", name, interaction.Type, interaction.Status, details)
	}

	b.WriteString("\nRecent Appointments:\n")
	for _, apt := range m.Appointments.RecentAppointments {
		fmt.Fprintf(&b, "- %s: %s (%s)\n",
			formatAppointmentTime(apt.AppointmentTime),
			apt.Status,
			apt.ParticipantDetails.Name,
		)
	}
	fmt.Fprintf(&b, "Upcoming Appointments: %d\n", m.Appointments.UpcomingCount)

	b.WriteString("\nActionable Insights:\n")
	fmt.Fprintf(&b, "- New leads in last 30 days: %d\n", m.ActionableMetrics.NewLeadsLast30Days)
	fmt.Fprintf(&b, "- Successful calls rate: %.0f%%\n", m.ActionableMetrics.SuccessfulCallsRate)
	fmt.Fprintf(&b, "- Average interactions per lead: %.1f\n", m.ActionableMetrics.AverageInteractionsPerLead)
	fmt.Fprintf(&b, "- Leads needing follow-up: %d\n", m.ActionableMetrics.LeadsNeedingFollowup)

	return b.String()
}

func formatAppointmentTime(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		if t, err = time.Parse("2006-01-02T15:04:05", iso); err != nil {
			return iso
		}
	}
	return t.Format("January 02 at 03:04 PM")
}

func valueOr(metadata map[string]string, key, fallback string) string {
	if v := metadata[key]; v != "" {
		return v
	}
	return fallback
}
