// Package listener fans change notifications out to the screens that care
// about them. Every topic is its own typed Channel; a Hub groups the channels
// of one session so a subscriber can attach to all of them at once.
package listener

import (
	"errors"
	"reflect"
	"sync"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

var ErrInvalidKey = errors.New("listener: subscriber key must be a non-nil comparable value")

type Change int

const (
	ChangeAdd Change = iota
	ChangeRemove
	ChangeUpdate
)

func (c Change) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	default:
		return "update"
	}
}

type Topic string

type Event[T any] struct {
	Topic   Topic
	Change  Change
	Payload T
}

type Handler[T any] func(Event[T])

// Sink receives events of any topic. Wildcard subscribers use it.
type Sink func(topic Topic, change Change, payload any)

// PanicHook is told about every subscriber that panicked during delivery.
type PanicHook func(topic Topic, recovered any)

type subscription[T any] struct {
	key any
	fn  Handler[T]
}

type Channel[T any] struct {
	topic    Topic
	log      logger.Logger
	onPanic  PanicHook
	snapshot func() T

	// delivery is held across a fan-out and across a new subscriber's
	// snapshot, so a snapshot never overtakes a newer notification.
	delivery sync.Mutex

	mu   sync.RWMutex
	subs []subscription[T]
}

// NewChannel creates a channel for topic and registers it with hub.
func NewChannel[T any](hub *Hub, topic Topic) *Channel[T] {
	ch := &Channel[T]{
		topic:   topic,
		log:     hub.log,
		onPanic: hub.onPanic,
	}
	hub.register(ch)
	return ch
}

// WithSnapshot sets the source of the state a new subscriber receives right away.
func (c *Channel[T]) WithSnapshot(fn func() T) *Channel[T] {
	c.mu.Lock()
	c.snapshot = fn
	c.mu.Unlock()
	return c
}

func (c *Channel[T]) Topic() Topic {
	return c.topic
}

// Subscribe adds fn under key. A key that is already subscribed is left as is
// and false is returned. When the channel has a snapshot source, the new
// subscriber gets the current state before Subscribe returns and before any
// later Notify reaches it. Handlers must not subscribe to the channel that is
// delivering to them.
func (c *Channel[T]) Subscribe(key any, fn Handler[T]) (bool, error) {
	if !validKey(key) || fn == nil {
		return false, ErrInvalidKey
	}

	c.delivery.Lock()
	defer c.delivery.Unlock()

	c.mu.Lock()
	for _, s := range c.subs {
		if s.key == key {
			c.mu.Unlock()
			return false, nil
		}
	}
	sub := subscription[T]{key: key, fn: fn}
	c.subs = append(c.subs, sub)
	snapshot := c.snapshot
	c.mu.Unlock()

	if snapshot != nil {
		c.deliver(sub, Event[T]{Topic: c.topic, Change: ChangeUpdate, Payload: snapshot()})
	}
	return true, nil
}

// Unsubscribe removes key. Removing an absent key is a no-op.
func (c *Channel[T]) Unsubscribe(key any) bool {
	if !validKey(key) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.key == key {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Channel[T]) Has(key any) bool {
	if !validKey(key) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.subs {
		if s.key == key {
			return true
		}
	}
	return false
}

func (c *Channel[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Notify delivers payload to every subscriber in the calling goroutine and
// returns how many subscribers received it without panicking.
func (c *Channel[T]) Notify(change Change, payload T) int {
	c.delivery.Lock()
	defer c.delivery.Unlock()

	c.mu.RLock()
	subs := make([]subscription[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()

	delivered := 0
	ev := Event[T]{Topic: c.topic, Change: change, Payload: payload}
	for _, s := range subs {
		if c.deliver(s, ev) {
			delivered++
		}
	}
	return delivered
}

func (c *Channel[T]) deliver(s subscription[T], ev Event[T]) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			c.log.Errorf("listener: subscriber on topic %s panicked: %v", c.topic, r)
			if c.onPanic != nil {
				c.onPanic(c.topic, r)
			}
		}
	}()
	s.fn(ev)
	return true
}

func (c *Channel[T]) attach(key any, sink Sink) (bool, error) {
	if sink == nil {
		return false, ErrInvalidKey
	}
	return c.Subscribe(key, func(ev Event[T]) {
		sink(ev.Topic, ev.Change, ev.Payload)
	})
}

func (c *Channel[T]) detach(key any) bool {
	return c.Unsubscribe(key)
}

func validKey(key any) bool {
	if key == nil {
		return false
	}
	return reflect.TypeOf(key).Comparable()
}
