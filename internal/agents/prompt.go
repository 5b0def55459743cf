package agents

import (
	"fmt"

	"github.com/wolfman30/sales-call-agent/internal/templates"
)

const systemPromptTemplate = `You are {{.AgentName}}, a friendly AI representative for {{.BusinessName}}, a company in the {{.Industry}} industry.

Your Goal: {{.CallGoal}}

Services Offered:
{{.Services}}

Tone: {{.Tone}}
- Keep responses short (1-2 sentences).
- Ask one clear follow-up question at a time.
- Be helpful and professional.
- If asked about pricing, give a general range but steer towards booking a consultation for a quote.

CRITICAL INSTRUCTIONS:
1. Always stay in character as {{.AgentName}}.
2. Do not make up facts about the company that aren't listed above.
3. If unsure, offer to have a human team member call them back.
4. Focus on benefits, not just features.
`

const greetingTemplate = `Hello! This is {{.AgentName}} calling from {{.BusinessName}}. How are you doing today?`

var personaTemplates = templates.MustParse(map[string]string{
	"system_prompt": systemPromptTemplate,
	"greeting":      greetingTemplate,
})

// RenderPersona synthesizes the system prompt and greeting for a normalized
// input. The output depends only on the input.
func RenderPersona(in Input) (systemPrompt, greeting string, err error) {
	systemPrompt, err = personaTemplates.Render("system_prompt", in)
	if err != nil {
		return "", "", fmt.Errorf("agents: render system prompt: %w", err)
	}
	greeting, err = personaTemplates.Render("greeting", in)
	if err != nil {
		return "", "", fmt.Errorf("agents: render greeting: %w", err)
	}
	return systemPrompt, greeting, nil
}
