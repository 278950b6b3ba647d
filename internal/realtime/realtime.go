package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event names delivered over the station channels.
const (
	EventQueueUpdated   = "queue.updated"
	EventDisplayRefresh = "display.refresh"
	EventCallOut        = "call.out"
	EventChatMessage    = "chat.message"
)

func DepartmentChannel(tenant, departmentID string) string {
	return fmt.Sprintf("%s_department_%s", tenant, departmentID)
}

func DisplayChannel(tenant string) string {
	return tenant + "_patient_queue_display"
}

func CallOutChannel(tenant string) string {
	return tenant + "_call_out_queue"
}

func ChatChannel(tenant string) string {
	return tenant + "_chat"
}

// Client owns the broker connection for one process. It is constructed
// and closed by main, never at import time; everything that needs push
// events receives it explicitly.
//
// Reconnection is the transport's job. Consumers registered through
// OnReconnect re-fetch full state after a gap instead of trusting
// buffered events.
type Client struct {
	conn *nats.Conn
	log  *zap.Logger

	mu          sync.Mutex
	onReconnect []func()
}

func Connect(url string, log *zap.Logger) (*Client, error) {
	c := &Client{log: log}

	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("realtime disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("realtime reconnected")
			c.fireReconnect()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}

	c.conn = conn
	return c, nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// OnReconnect registers a hook invoked after every transport reconnect.
func (c *Client) OnReconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReconnect = append(c.onReconnect, fn)
}

func (c *Client) fireReconnect() {
	c.mu.Lock()
	hooks := make([]func(), len(c.onReconnect))
	copy(hooks, c.onReconnect)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Subscription is one named channel with per-event handlers. Events
// arrive as a {"event": name, "data": payload} envelope; anything else
// is dropped.
type Subscription struct {
	channel string
	log     *zap.Logger

	mu       sync.RWMutex
	handlers map[string]func(data json.RawMessage)
	sub      *nats.Subscription
}

func (c *Client) Subscribe(channel string) (*Subscription, error) {
	s := &Subscription{
		channel:  channel,
		log:      c.log,
		handlers: make(map[string]func(json.RawMessage)),
	}

	sub, err := c.conn.Subscribe(channel, func(msg *nats.Msg) {
		s.dispatch(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	s.sub = sub
	c.log.Info("subscribed", zap.String("channel", channel))
	return s, nil
}

// On registers the handler for one event name. The handler runs on the
// transport's delivery goroutine; keep it short and hand real work off.
func (s *Subscription) On(event string, handler func(data json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = handler
}

// Unsubscribe stops delivery. A view that goes away without calling
// this leaks events into dead code; mains defer it next to the render
// teardown.
func (s *Subscription) Unsubscribe() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.log.Warn("unsubscribe failed", zap.String("channel", s.channel), zap.Error(err))
		}
	}
}

type eventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *Subscription) dispatch(raw []byte) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		s.log.Debug("dropping malformed broker message", zap.String("channel", s.channel))
		return
	}

	s.mu.RLock()
	handler := s.handlers[env.Event]
	s.mu.RUnlock()

	if handler == nil {
		s.log.Debug("no handler for event",
			zap.String("channel", s.channel),
			zap.String("event", env.Event))
		return
	}
	handler(env.Data)
}
