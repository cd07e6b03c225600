package producer

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/trmquang93/magical-stories-sub004/internal/config"
	"github.com/trmquang93/magical-stories-sub004/internal/model"
)

// Producer publishes illustration requests to Kafka.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy for sends
func New(cfg *config.Kafka, s retry.Strategy) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// Produce serializes the illustration request to JSON and sends it to
// Kafka. The story ID is used as the message key for partitioning and
// ordering.
func (p *Producer) Produce(ctx context.Context, req model.IllustrationRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal illustration request: %v", err)
	}

	key := []byte(req.StoryID.String())

	if err = p.Client.SendWithRetry(ctx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send illustration request: %v", err)
	}

	return nil
}
