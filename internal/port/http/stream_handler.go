package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/listener"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// streamMessage is one listener notification as sent over the socket.
type streamMessage struct {
	Topic   listener.Topic `json:"topic"`
	Change  string         `json:"change"`
	Payload any            `json:"payload"`
}

type StreamHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewStreamHandler(allowedOrigins []string, logger *zap.Logger) *StreamHandler {
	h := &StreamHandler{logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker allows every origin when none are configured.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

type streamClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.done) })
}

// sink runs inside the notifying goroutine and must not block. A client that
// cannot keep up is disconnected.
func (c *streamClient) sink(topic listener.Topic, change listener.Change, payload any) {
	data, err := json.Marshal(streamMessage{Topic: topic, Change: change.String(), Payload: payload})
	if err != nil {
		c.logger.Warn("Failed to encode stream message", zap.String("topic", string(topic)), zap.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("Stream client too slow, disconnecting", zap.String("topic", string(topic)))
		c.close()
	}
}

func requestedTopics(r *http.Request, hub *listener.Hub) ([]listener.Topic, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("topics"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	known := make(map[listener.Topic]bool)
	for _, t := range hub.Topics() {
		known[t] = true
	}
	var topics []listener.Topic
	for _, name := range strings.Split(raw, ",") {
		t := listener.Topic(strings.TrimSpace(name))
		if !known[t] {
			return nil, fmt.Errorf("unknown topic %q", t)
		}
		topics = append(topics, t)
	}
	return topics, nil
}

// Stream upgrades to a websocket and forwards the session's notifications.
// ?topics=a,b selects topics; without it every topic is delivered.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	hub := s.Store.Hub()
	topics, err := requestedTopics(r, hub)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	c := &streamClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: h.logger.With(zap.String("uid", s.UID())),
	}
	defer hub.UnsubscribeAll(c)

	go c.writePump()

	if len(topics) == 0 {
		err = hub.SubscribeAll(c, c.sink)
	} else {
		for _, t := range topics {
			if _, err = hub.Subscribe(c, t, c.sink); err != nil {
				break
			}
		}
	}
	if err != nil {
		c.logger.Error("Failed to subscribe stream", zap.Error(err))
		c.close()
		return
	}
	c.readPump()
}

// readPump only services control frames; clients do not send data.
func (c *streamClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("Stream closed", zap.Error(err))
			}
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
