package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drew-ai/voice-relay/internal/comms"
	"github.com/drew-ai/voice-relay/internal/model"
)

func fixedAssembler() *Assembler {
	return &Assembler{now: func() time.Time {
		return time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	}}
}

func TestBuildOrdersSystemHistoryTranscript(t *testing.T) {
	a := fixedAssembler()

	messages := a.Build(Input{
		History: []model.Message{
			{Role: model.RoleAssistant, Content: "Good afternoon, Taylor!"},
		},
		Transcript: []model.Utterance{
			{Role: "agent", Content: "How can I help?"},
			{Role: "user", Content: "Any new leads today?"},
		},
		InteractionType: model.InteractionResponseRequired,
	})

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "Current Date and Time: Monday, June 10, 2024 at 03:30 PM")
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "Good afternoon, Taylor!", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "user", messages[3].Role)
	assert.Equal(t, "Any new leads today?", messages[3].Content)
}

func TestBuildAppendsReminderNudge(t *testing.T) {
	a := fixedAssembler()

	messages := a.Build(Input{InteractionType: model.InteractionReminderRequired})

	last := messages[len(messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, "tailored recommendations")
}

func TestBuildPersonalizedContext(t *testing.T) {
	a := fixedAssembler()

	snapshot := &comms.Snapshot{
		Metrics: comms.Metrics{
			CallMetrics: comms.CallMetrics{
				TotalCalls:      12,
				CallsByStatus:   map[string]int{"successful": 9, "missed": 3},
				AverageDuration: 95,
			},
			LeadMetrics: comms.LeadMetrics{
				TotalLeads:     40,
				LeadsByStatus:  map[string]int{"new": 5, "contacted": 20, "qualified": 10, "closed": 5},
				MostActiveLead: &comms.ActiveLead{Name: "Morgan Lee", InteractionCount: 7},
				LatestInteractions: []comms.LeadInteraction{
					{LeadName: "Morgan Lee", Type: "CALL", Status: "successful",
						Details: comms.InteractionDetail{Message: "Discussed the lakefront listing"}},
				},
			},
			Appointments: comms.AppointmentData{
				RecentAppointments: []comms.Appointment{
					{AppointmentTime: "2024-06-08T10:00:00", Status: "completed",
						ParticipantDetails: comms.ParticipantDetails{Name: "Morgan Lee"}},
				},
				UpcomingCount: 2,
			},
			ActionableMetrics: comms.ActionableMetrics{
				NewLeadsLast30Days:   5,
				SuccessfulCallsRate:  75,
				LeadsNeedingFollowup: 4,
			},
		},
	}

	messages := a.Build(Input{
		Metadata:        map[string]string{"user_name": "Taylor", "bot_name": "Drew"},
		Snapshot:        snapshot,
		InteractionType: model.InteractionResponseRequired,
	})

	system := messages[0].Content
	assert.Contains(t, system, "You are Drew")
	assert.Contains(t, system, "You're speaking with Taylor.")
	assert.Contains(t, system, "Total Calls: 12")
	assert.Contains(t, system, "Most Active Lead: Morgan Lee (7 interactions)")
	assert.Contains(t, system, "Discussed the lakefront listing")
	assert.Contains(t, system, "June 08 at 10:00 AM: completed (Morgan Lee)")
	assert.Contains(t, system, "Leads needing follow-up: 4")
}

func TestBuildWithoutSnapshotOmitsContext(t *testing.T) {
	a := fixedAssembler()

	messages := a.Build(Input{
		Metadata:        map[string]string{"user_name": "Taylor"},
		InteractionType: model.InteractionResponseRequired,
	})

	assert.NotContains(t, messages[0].Content, "Recent Activity Overview")
}
