package agents

import "github.com/wolfman30/sales-call-agent/internal/apperr"

var (
	ErrAgentNotFound = apperr.New(apperr.KindNotFound, "agent not found")
	ErrForbidden     = apperr.New(apperr.KindForbidden, "you do not have access to this agent")
)
