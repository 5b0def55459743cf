// Package agents stores the saved sales-agent configurations users build and
// synthesizes each agent's persona prompt and greeting.
package agents

import "time"

const (
	DefaultAgentName = "Alex"
	DefaultCallGoal  = "Book a consultation"
	DefaultTone      = "Friendly and professional"
)

// Agent is a saved persona owned by one user.
type Agent struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"user_id"`
	AgentName    string    `json:"agent_name"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry"`
	Services     string    `json:"services"`
	Tone         string    `json:"tone"`
	CallGoal     string    `json:"call_goal"`
	SystemPrompt string    `json:"system_prompt"`
	Greeting     string    `json:"greeting_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the editable part of an agent.
type Input struct {
	AgentName    string `json:"agent_name"`
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	Services     string `json:"services"`
	Tone         string `json:"tone"`
	CallGoal     string `json:"call_goal"`
}
