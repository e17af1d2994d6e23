package listener

import (
	"fmt"
	"sync"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

type binder interface {
	Topic() Topic
	attach(key any, sink Sink) (bool, error)
	detach(key any) bool
}

// Hub groups the channels of one owner and offers untyped, topic-addressed
// subscription on top of them.
type Hub struct {
	log     logger.Logger
	onPanic PanicHook

	mu       sync.RWMutex
	channels []binder
}

func NewHub(log logger.Logger, onPanic PanicHook) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{log: log, onPanic: onPanic}
}

func (h *Hub) register(b binder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.channels {
		if existing.Topic() == b.Topic() {
			panic(fmt.Sprintf("listener: topic %s registered twice", b.Topic()))
		}
	}
	h.channels = append(h.channels, b)
}

func (h *Hub) Topics() []Topic {
	h.mu.RLock()
	defer h.mu.RUnlock()
	topics := make([]Topic, 0, len(h.channels))
	for _, b := range h.channels {
		topics = append(topics, b.Topic())
	}
	return topics
}

func (h *Hub) lookup(topic Topic) (binder, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, b := range h.channels {
		if b.Topic() == topic {
			return b, true
		}
	}
	return nil, false
}

// Subscribe attaches sink to a single topic by name.
func (h *Hub) Subscribe(key any, topic Topic, sink Sink) (bool, error) {
	b, ok := h.lookup(topic)
	if !ok {
		return false, fmt.Errorf("listener: unknown topic %q", topic)
	}
	return b.attach(key, sink)
}

func (h *Hub) Unsubscribe(key any, topic Topic) bool {
	b, ok := h.lookup(topic)
	if !ok {
		return false
	}
	return b.detach(key)
}

// SubscribeAll is the wildcard subscription: sink receives every topic.
func (h *Hub) SubscribeAll(key any, sink Sink) error {
	h.mu.RLock()
	channels := make([]binder, len(h.channels))
	copy(channels, h.channels)
	h.mu.RUnlock()

	for _, b := range channels {
		if _, err := b.attach(key, sink); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) UnsubscribeAll(key any) {
	h.mu.RLock()
	channels := make([]binder, len(h.channels))
	copy(channels, h.channels)
	h.mu.RUnlock()

	for _, b := range channels {
		b.detach(key)
	}
}
