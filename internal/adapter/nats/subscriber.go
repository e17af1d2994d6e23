package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

const handlerTimeout = 30 * time.Second

// MessageHandler processes one message payload.
type MessageHandler func(ctx context.Context, subject string, data []byte) error

type Subscriber struct {
	conn   *nats.Conn
	prefix string
	log    logger.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewSubscriber(conn *nats.Conn, prefix string, log logger.Logger) *Subscriber {
	return &Subscriber{conn: conn, prefix: prefix, log: log}
}

// Subscribe registers handler for subject (wildcards allowed). Handler errors
// are logged; the message is not redelivered.
func (s *Subscriber) Subscribe(subject string, handler MessageHandler) error {
	full := qualify(s.prefix, subject)
	sub, err := s.conn.Subscribe(full, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			s.log.Errorf("nats: handler for %s failed: %v", msg.Subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to NATS subject %s: %w", full, err)
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	s.log.Infof("nats: subscribed to %s", full)
	return nil
}

func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			s.log.Warnf("nats: failed to drain %s: %v", sub.Subject, err)
		}
	}
	s.subs = nil
}
