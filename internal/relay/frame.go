package relay

import (
	"encoding/json"
	"fmt"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
)

// Frame kinds accepted over the socket channel.
const (
	KindHello       = "hello"
	KindEvent       = "event"
	KindInteraction = "interaction"
	KindSpatial     = "spatial"
	KindPerformance = "performance"
	KindVRMode      = "vr_mode"
)

// Client roles declared in the hello frame.
const (
	RoleTelemetry = "telemetry"
	RoleSubscribe = "subscribe"
)

// Frame is one JSON message on the relay channel. Kind selects which of the
// remaining fields apply.
type Frame struct {
	Kind string `json:"kind"`

	// hello
	Role   string              `json:"role,omitempty"`
	Device *session.DeviceInfo `json:"device,omitempty"`

	// event
	Type   string         `json:"type,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`

	// interaction
	InteractionType string          `json:"interaction_type,omitempty"`
	Target          string          `json:"target,omitempty"`
	Position        *analytics.Vec3 `json:"position,omitempty"`

	// spatial
	Rotation   *analytics.Vec3 `json:"rotation,omitempty"`
	Scale      *analytics.Vec3 `json:"scale,omitempty"`
	ObjectType string          `json:"object_type,omitempty"`

	// performance
	FPS          *float64 `json:"fps,omitempty"`
	RenderTimeMS *float64 `json:"render_time_ms,omitempty"`
	MemoryUsedMB *float64 `json:"memory_used_mb,omitempty"`

	// vr_mode
	Enabled *bool `json:"enabled,omitempty"`
}

// marshalEvent encodes a collector event for subscribers.
func marshalEvent(ev analytics.Event) []byte {
	// Event marshalling cannot fail for the field types the collector
	// produces; a failure here would be a programming error.
	data, err := json.Marshal(struct {
		Kind  string          `json:"kind"`
		Event analytics.Event `json:"event"`
	}{Kind: "event", Event: ev})
	if err != nil {
		return []byte(`{"kind":"event","error":"marshal failed"}`)
	}
	return data
}

// marshalNotice encodes an out-of-band notice for subscribers.
func marshalNotice(kind string, fields map[string]any) ([]byte, error) {
	return json.Marshal(struct {
		Kind   string         `json:"kind"`
		Notice string         `json:"notice"`
		Fields map[string]any `json:"fields,omitempty"`
	}{Kind: "notice", Notice: kind, Fields: fields})
}

// DecodeFrame parses and validates one relay message.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("malformed frame: %w", err)
	}
	switch f.Kind {
	case KindHello, KindEvent:
	case KindVRMode:
		if f.Enabled == nil {
			return Frame{}, fmt.Errorf("vr_mode frame missing enabled")
		}
	case KindInteraction:
		if f.InteractionType == "" {
			return Frame{}, fmt.Errorf("interaction frame missing interaction_type")
		}
	case KindSpatial:
		if f.Position == nil || f.Rotation == nil {
			return Frame{}, fmt.Errorf("spatial frame missing position or rotation")
		}
	case KindPerformance:
		if f.FPS == nil || f.RenderTimeMS == nil {
			return Frame{}, fmt.Errorf("performance frame missing fps or render_time_ms")
		}
	case "":
		return Frame{}, fmt.Errorf("frame missing kind")
	default:
		return Frame{}, fmt.Errorf("unknown frame kind %q", f.Kind)
	}
	return f, nil
}
