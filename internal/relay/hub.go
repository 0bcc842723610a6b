// Package relay is the socket channel between the browser demo and the
// analytics collector: telemetry clients stream JSON frames in, subscriber
// clients receive every event the collector records, including derived ones.
package relay

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
)

const (
	// subscriberBuffer is the per-subscriber outbound queue; a subscriber
	// that falls this far behind is dropped.
	subscriberBuffer = 64
	writeTimeout     = 5 * time.Second
)

// Hub owns the collector for the duration of a server run and serializes
// all access to it. The collector itself is single-owner by design; the hub
// is that owner.
type Hub struct {
	mu        sync.Mutex
	collector *analytics.Collector
	log       logrus.FieldLogger

	// helloSeen guards the one-shot device capture: the first hello frame
	// carrying device facts wins.
	helloSeen bool
	// sent is the index into the event log up to which subscribers have
	// been notified.
	sent int

	subMu sync.Mutex
	subs  map[*subscriber]struct{}
}

type subscriber struct {
	out chan []byte
}

// NewHub wraps a collector for shared use by the socket and HTTP layers.
func NewHub(collector *analytics.Collector, log logrus.FieldLogger) *Hub {
	return &Hub{
		collector: collector,
		log:       log,
		subs:      map[*subscriber]struct{}{},
	}
}

// Ingest applies one decoded telemetry frame to the collector and broadcasts
// any events it produced. Unknown or out-of-place frames return an error;
// the connection handler logs and drops them without closing the stream.
func (h *Hub) Ingest(f Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch f.Kind {
	case KindHello:
		if f.Device != nil && !h.helloSeen {
			dev := *f.Device
			dev.Normalize()
			h.collector.Session().Device = dev
			h.helloSeen = true
		}
	case KindEvent:
		if f.Type == "" {
			return fmt.Errorf("event frame missing type")
		}
		h.collector.LogEvent(analytics.EventType(f.Type), f.Fields)
	case KindInteraction:
		if f.InteractionType == "" {
			return fmt.Errorf("interaction frame missing interaction_type")
		}
		h.collector.LogInteraction(f.InteractionType, f.Target, f.Position, f.Fields)
	case KindSpatial:
		// Re-checked here because Ingest also takes hand-built frames, not
		// just DecodeFrame output.
		if f.Position == nil || f.Rotation == nil {
			return fmt.Errorf("spatial frame missing position or rotation")
		}
		h.collector.LogSpatialData(*f.Position, *f.Rotation, f.Scale, f.ObjectType)
	case KindPerformance:
		if f.FPS == nil || f.RenderTimeMS == nil {
			return fmt.Errorf("performance frame missing fps or render_time_ms")
		}
		h.collector.LogPerformance(*f.FPS, *f.RenderTimeMS, f.MemoryUsedMB)
	case KindVRMode:
		if f.Enabled == nil {
			return fmt.Errorf("vr_mode frame missing enabled")
		}
		h.collector.SetVRMode(*f.Enabled)
	default:
		return fmt.Errorf("frame kind %q not ingestible", f.Kind)
	}

	h.flushLocked()
	return nil
}

// flushLocked broadcasts events logged since the last flush. Caller holds mu.
func (h *Hub) flushLocked() {
	events := h.collector.EventsSince(h.sent)
	h.sent = h.collector.EventCount()
	for _, ev := range events {
		h.broadcast(marshalEvent(ev))
	}
}

// LogEvent records a server-originated event (session_start, session_end)
// through the hub so subscribers see it too.
func (h *Hub) LogEvent(typ analytics.EventType, fields map[string]any) analytics.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev := h.collector.LogEvent(typ, fields)
	h.flushLocked()
	return ev
}

// Summary snapshots the collector under the hub lock.
func (h *Hub) Summary() analytics.Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collector.Summary()
}

// Export snapshots the full session under the hub lock.
func (h *Hub) Export() analytics.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collector.Export()
}

// EngagementScore computes the current score under the hub lock.
func (h *Hub) EngagementScore() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collector.EngagementScore()
}

// Recommendations evaluates the suggestion rules under the hub lock.
func (h *Hub) Recommendations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collector.Recommendations()
}

// Notify broadcasts an out-of-band notice (for example asset_reload) to
// subscribers without logging it as a session event.
func (h *Hub) Notify(kind string, fields map[string]any) {
	msg, err := marshalNotice(kind, fields)
	if err != nil {
		h.log.WithError(err).Warn("relay notice marshal failed")
		return
	}
	h.broadcast(msg)
}

// broadcast queues msg to every subscriber, dropping those whose queue is
// full.
func (h *Hub) broadcast(msg []byte) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for s := range h.subs {
		select {
		case s.out <- msg:
		default:
			h.log.Warn("dropping slow relay subscriber")
			close(s.out)
			delete(h.subs, s)
		}
	}
}

func (h *Hub) addSubscriber() *subscriber {
	s := &subscriber{out: make(chan []byte, subscriberBuffer)}
	h.subMu.Lock()
	h.subs[s] = struct{}{}
	h.subMu.Unlock()
	return s
}

func (h *Hub) removeSubscriber(s *subscriber) {
	h.subMu.Lock()
	if _, ok := h.subs[s]; ok {
		close(s.out)
		delete(h.subs, s)
	}
	h.subMu.Unlock()
}

// SubscriberCount reports the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The demo page is served from the same host; cross-origin telemetry is
	// accepted because the channel carries no credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to the relay socket. The first frame
// should be a hello; its role selects between the telemetry read loop and
// the subscriber write loop.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("remote", r.RemoteAddr)

	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	hello, err := DecodeFrame(data)
	if err != nil || hello.Kind != KindHello {
		log.Warn("relay client did not start with a hello frame")
		return
	}
	if err := h.Ingest(hello); err != nil {
		log.WithError(err).Warn("hello frame rejected")
		return
	}

	if hello.Role == RoleSubscribe {
		h.serveSubscriber(conn, log)
		return
	}
	h.serveTelemetry(conn, log)
}

// serveTelemetry reads frames until the connection closes. Malformed frames
// are logged and skipped.
func (h *Hub) serveTelemetry(conn *websocket.Conn, log logrus.FieldLogger) {
	log.Info("telemetry client connected")
	defer log.Info("telemetry client disconnected")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := DecodeFrame(data)
		if err != nil {
			log.WithError(err).Warn("dropping malformed frame")
			continue
		}
		if err := h.Ingest(f); err != nil {
			log.WithError(err).Warn("dropping rejected frame")
		}
	}
}

// serveSubscriber writes broadcast events until the connection closes or the
// hub drops the subscriber.
func (h *Hub) serveSubscriber(conn *websocket.Conn, log logrus.FieldLogger) {
	log.Info("subscriber connected")
	defer log.Info("subscriber disconnected")

	s := h.addSubscriber()
	defer h.removeSubscriber(s)

	// Drain (and discard) reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for msg := range s.out {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
