package testutil

import (
	"context"
	"sync"

	"github.com/lazy-lotto/backend/pkg/pubsub"
)

// MockPublisher records every published pack. Set PublishFunc to override.
type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mutex sync.Mutex
	packs []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.packs = append(m.packs, pack)
	return nil
}

func (m *MockPublisher) Stop(ctx context.Context) error {
	return nil
}

func (m *MockPublisher) Packs() []*pubsub.Pack {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*pubsub.Pack(nil), m.packs...)
}
