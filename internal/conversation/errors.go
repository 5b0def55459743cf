package conversation

import "github.com/wolfman30/sales-call-agent/internal/apperr"

var (
	ErrConversationNotFound = apperr.New(apperr.KindNotFound, "conversation not found")
	ErrNoMessages           = apperr.New(apperr.KindNotFound, "conversation has no messages")
	ErrEmptyMessage         = apperr.New(apperr.KindInvalidInput, "message is required")
	ErrMissingConversation  = apperr.New(apperr.KindInvalidInput, "conversation_id is required")
	ErrCallEnded            = apperr.New(apperr.KindInvalidInput, "call has already ended")
	ErrForbidden            = apperr.New(apperr.KindForbidden, "you do not have access to this conversation")
	ErrLoginRequired        = apperr.New(apperr.KindUnauthorized, "authentication required to use a saved agent")
	ErrMetadataMissing      = apperr.New(apperr.KindInternal, "conversation metadata missing")
)
