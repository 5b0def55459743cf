package llm

import (
	"context"

	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// FailoverClient sends each request to the primary provider and, when that
// fails, once to the secondary.
type FailoverClient struct {
	primary   Client
	secondary Client
	logger    *logging.Logger
}

// NewFailoverClient wraps primary. A nil secondary makes it a pass-through.
func NewFailoverClient(primary, secondary Client, logger *logging.Logger) *FailoverClient {
	if primary == nil {
		panic("llm: primary client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FailoverClient{primary: primary, secondary: secondary, logger: logger}
}

func (c *FailoverClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil || c.secondary == nil || ctx.Err() != nil {
		return resp, err
	}

	c.logger.Warn("primary llm failed, trying secondary", "error", err, "transient", IsTransient(err))

	// The secondary has its own model id.
	req.Model = ""
	resp, secondaryErr := c.secondary.Complete(ctx, req)
	if secondaryErr != nil {
		c.logger.Error("secondary llm also failed", "primary_error", err, "secondary_error", secondaryErr)
		return Response{}, secondaryErr
	}
	return resp, nil
}
