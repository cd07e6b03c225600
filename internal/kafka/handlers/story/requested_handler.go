package story

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

type service interface {
	Illustrate(ctx context.Context, req model.IllustrationRequest) error
}

// RequestedHandler decodes illustration request messages and hands
// them to the story service.
type RequestedHandler struct {
	service service
}

func NewRequestedHandler(s service) *RequestedHandler {
	return &RequestedHandler{service: s}
}

func (h *RequestedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.IllustrationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("unmarshal illustration request: %w", err)
	}

	if err := h.service.Illustrate(ctx, req); err != nil {
		return fmt.Errorf("illustrate story: %w", err)
	}

	return nil
}
