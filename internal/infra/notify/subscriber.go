package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Handler обработчик события изменения настроек
type Handler func(ctx context.Context, event SettingsChangedEvent) error

// Subscriber слушает канал событий изменения настроек
type Subscriber struct {
	client  redis.UniversalClient
	channel string
	logger  Logger
}

// NewSubscriber создает подписчика
func NewSubscriber(client redis.UniversalClient, channel string, logger Logger) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{client: client, channel: channel, logger: logger}
}

// Run обрабатывает события до отмены контекста
// Ошибка обработчика логируется и не останавливает цикл
func (s *Subscriber) Run(ctx context.Context, handler Handler) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer func() { _ = sub.Close() }()

	// Дожидаемся подтверждения подписки, чтобы не потерять первые события
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("notify: subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("Subscriber: listening on %s", s.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Subscriber: stopped listening on %s", s.channel)
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			event, err := decode(msg.Payload)
			if err != nil {
				s.logger.Warn("Subscriber: skipping message on %s: %v", s.channel, err)
				continue
			}

			if err := handler(ctx, event); err != nil {
				s.logger.Error("Subscriber: handler failed for tenant=%d: %v", event.TenantID, err)
			}
		}
	}
}

func decode(payload string) (SettingsChangedEvent, error) {
	var event SettingsChangedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if event.TenantID <= 0 {
		return event, fmt.Errorf("%w: missing tenantId", ErrDecode)
	}
	return event, nil
}
