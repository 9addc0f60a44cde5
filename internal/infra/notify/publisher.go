package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher публикует события изменения настроек в Redis
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

// NewPublisher создает публикатор
func NewPublisher(client redis.UniversalClient, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// PublishSettingsChanged публикует событие; возвращает количество получателей
func (p *Publisher) PublishSettingsChanged(ctx context.Context, event SettingsChangedEvent) (int64, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("%w: PublishSettingsChanged - encode: %v", ErrPublish, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: PublishSettingsChanged - tenant=%d: %v", ErrPublish, event.TenantID, err)
	}
	return receivers, nil
}
