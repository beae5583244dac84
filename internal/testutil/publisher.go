package testutil

import (
	"context"
	"encoding/json"
	"sync"
)

// Message: опубликованное событие.
type Message struct {
	Key  string
	Body json.RawMessage
}

// Publisher запоминает всё, что через него опубликовали. Только для тестов:
// буфер не ограничен.
type Publisher struct {
	mu   sync.Mutex
	sent []Message
}

func NewPublisher() *Publisher { return &Publisher{} }

func (p *Publisher) PublishJSON(_ context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, Message{Key: key, Body: b})
	return nil
}

func (p *Publisher) Close() error { return nil }

func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.sent))
	for _, m := range p.sent {
		keys = append(keys, m.Key)
	}
	return keys
}
