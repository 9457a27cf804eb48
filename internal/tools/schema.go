package tools

import (
	"github.com/drew-ai/voice-relay/internal/llm"
)

// Definitions returns the tool schemas offered to the model on the first
// generation pass.
func Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name: ToolPlacesSearch,
			Description: "Search for places near a location. " +
				"Use ONLY when the agent specifically asks about local amenities " +
				"or you need to provide specific business/place names. " +
				"DO NOT use when discussing general area features, when you already " +
				"have area information from a previous search, or for casual conversation.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "Location to search around",
					},
					"query_type": map[string]any{
						"type":        "string",
						"description": "Type of place to search for (e.g., restaurants, parks, schools)",
					},
				},
				"required": []string{"location", "query_type"},
			},
		},
		{
			Name: ToolBookingRequest,
			Description: "Agent requests to book a specific appointment. " +
				"Use ONLY when the agent specifically requests to schedule an appointment " +
				"and you have specific date/time information. " +
				"DO NOT use when just discussing availability in general or the agent " +
				"hasn't provided specific timing preferences.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lead_name": map[string]any{
						"type":        "string",
						"description": "The name of the lead to be scheduled for the appointment",
					},
					"start_time": map[string]any{
						"type":        "string",
						"description": "Start time in ISO format (YYYY-MM-DDTHH:MM:SS)",
					},
					"location": map[string]any{
						"type":        "string",
						"description": "A meeting location if meeting would be in-person",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "A clear and detailed appointment description",
					},
				},
				"required": []string{"lead_name", "start_time", "description"},
			},
		},
		{
			Name: ToolCallRequest,
			Description: "Initiate a call with a contact. " +
				"Use ONLY when the agent requests to call someone and you can capture " +
				"specific discussion points and the scheduled call time. " +
				"Note: the call time must be either now (today) or scheduled for the next day. " +
				"Ask clarifying questions if needed.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"contact_name": map[string]any{
						"type":        "string",
						"description": "Name of the contact to call",
					},
					"discussion_points": map[string]any{
						"type":        "string",
						"description": "Any specific discussion points to address during the call",
					},
					"call_time": map[string]any{
						"type":        "string",
						"description": "Scheduled call time in ISO format (YYYY-MM-DDTHH:MM:SS). It must be either now or the next day.",
					},
				},
				"required": []string{"contact_name", "call_time", "discussion_points"},
			},
		},
		{
			Name: ToolMessageRequest,
			Description: "Send a message to a lead. " +
				"Use ONLY when the agent instructs to send a message, specifies whether it " +
				"should go out as an SMS or Email, and provides the lead's name and the content.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lead_name": map[string]any{
						"type":        "string",
						"description": "The name of the lead to send the message to",
					},
					"message_type": map[string]any{
						"type":        "string",
						"description": "Type of message to send. Allowed values: 'SMS' or 'Email'",
					},
					"message_content": map[string]any{
						"type":        "string",
						"description": "The content of the message that should be sent",
					},
				},
				"required": []string{"lead_name", "message_type", "message_content"},
			},
		},
		{
			Name: ToolPropertySearch,
			Description: "Search for properties and provide property information " +
				"in a specific location with the given criteria.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "Location to search for properties",
					},
					"status_type": map[string]any{
						"type":        "string",
						"description": "Status type: ForSale or ForRent",
					},
				},
				"required": []string{"location"},
			},
		},
	}
}
