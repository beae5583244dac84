package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LogPublisher пишет события в лог. Используется, когда RabbitMQ не настроен.
// Ничего не хранит: сообщение уходит в лог и забывается.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.log.InfoContext(ctx, "event published", "key", key, "body", json.RawMessage(b))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
