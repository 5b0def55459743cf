package agents

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
)

type fieldRule struct {
	name     string
	value    *string
	max      int
	required bool
}

// Normalize trims every field and applies defaults for optional ones.
func (in Input) Normalize() Input {
	out := Input{
		AgentName:    strings.TrimSpace(in.AgentName),
		BusinessName: strings.TrimSpace(in.BusinessName),
		Industry:     strings.TrimSpace(in.Industry),
		Services:     strings.TrimSpace(in.Services),
		Tone:         strings.TrimSpace(in.Tone),
		CallGoal:     strings.TrimSpace(in.CallGoal),
	}
	if out.AgentName == "" {
		out.AgentName = DefaultAgentName
	}
	if out.CallGoal == "" {
		out.CallGoal = DefaultCallGoal
	}
	if out.Tone == "" {
		out.Tone = DefaultTone
	}
	return out
}

// Validate checks required fields and length ceilings on a normalized input.
func (in Input) Validate() error {
	rules := []fieldRule{
		{"business_name", &in.BusinessName, 120, true},
		{"industry", &in.Industry, 80, true},
		{"services", &in.Services, 2000, true},
		{"tone", &in.Tone, 80, false},
		{"call_goal", &in.CallGoal, 200, false},
		{"agent_name", &in.AgentName, 60, false},
	}
	for _, r := range rules {
		if r.required && *r.value == "" {
			return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("%s is required", r.name))
		}
		if utf8.RuneCountInString(*r.value) > r.max {
			return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("%s must be at most %d characters", r.name, r.max))
		}
	}
	return nil
}
