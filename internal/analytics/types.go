// Package analytics implements the session event and metrics aggregator:
// typed event logging, bounded rolling sample buffers, derived statistics,
// and the session summary / engagement scoring read side.
package analytics

import (
	"time"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
)

// EventType tags an event record. The set is open, scene code may log
// arbitrary tags, but every type the collector itself emits or special-cases
// is enumerated here.
type EventType string

const (
	// Logged by callers.
	EventSessionStart   EventType = "session_start"
	EventSessionEnd     EventType = "session_end"
	EventError          EventType = "error"
	EventTaskCompletion EventType = "task_completion"

	// Emitted by the collector.
	//
	// EventUserInteraction fields: interaction_type, target, position?,
	// duration_ms?, force?.
	EventUserInteraction EventType = "user_interaction"
	// EventVRModeChange fields: previous, current, elapsed_ms.
	EventVRModeChange EventType = "vr_mode_change"
	// EventSpatialTracking fields: samples (last 30), movement.
	EventSpatialTracking EventType = "spatial_tracking"
	// EventPerformanceMetrics fields: fps, render_time_ms, avg_fps,
	// avg_render_time_ms, trend, memory_used_mb?.
	EventPerformanceMetrics EventType = "performance_metrics"
	// EventPerformanceWarning fields: metric, value, threshold, severity.
	EventPerformanceWarning EventType = "performance_warning"
	// EventRapidInteraction fields: count, avg_gap_ms.
	EventRapidInteraction EventType = "rapid_interaction_detected"
	// EventVRExperienceStart fields: time_to_vr_ms, platform.
	EventVRExperienceStart EventType = "vr_experience_start"
	// EventVRExperienceEnd fields: vr_duration_ms, total_elapsed_ms.
	EventVRExperienceEnd EventType = "vr_experience_end"
)

// importantEvents is the allow-list of types forwarded to the durable sink.
var importantEvents = map[EventType]bool{
	EventSessionStart:       true,
	EventSessionEnd:         true,
	EventVRModeChange:       true,
	EventPerformanceWarning: true,
	EventError:              true,
	EventTaskCompletion:     true,
}

// Important reports whether events of type t are forwarded to the sink.
func (t EventType) Important() bool { return importantEvents[t] }

// Vec3 is a point or rotation in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Event is an immutable, timestamped record in the session log. The
// collector hands back copies; callers must not expect later mutations to be
// visible.
type Event struct {
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	// SessionTime is the offset from session start at logging time.
	SessionTime time.Duration `json:"session_time_ns"`
	// VRMode is the mode flag at the moment of logging, never updated
	// retroactively.
	VRMode bool           `json:"vr_mode"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Interaction is a user interaction record, kept in a dedicated list for
// pattern detection in addition to the general event log.
type Interaction struct {
	Type      string        `json:"type"`
	Target    string        `json:"target"`
	Position  *Vec3         `json:"position,omitempty"`
	Duration  time.Duration `json:"duration_ns,omitempty"`
	Force     float64       `json:"force,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	VRMode    bool          `json:"vr_mode"`
}

// SpatialSample is one position/rotation sample of a tracked object. Axes
// are rounded to 3 decimals at insertion time.
type SpatialSample struct {
	Position  Vec3      `json:"position"`
	Rotation  Vec3      `json:"rotation"`
	Scale     *Vec3     `json:"scale,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// ObjectType tags what was sampled: "user", "camera", or a scene
	// object name.
	ObjectType string `json:"object_type"`
}

// PerformanceSample is one frame-performance sample. FPS is rounded to 1
// decimal and render time to 2 decimals at insertion time.
type PerformanceSample struct {
	FPS          float64   `json:"fps"`
	RenderTimeMS float64   `json:"render_time_ms"`
	MemoryUsedMB *float64  `json:"memory_used_mb,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	VRMode       bool      `json:"vr_mode"`
}

// MovementMetrics describes motion over the most recent spatial window.
type MovementMetrics struct {
	TotalDistance   float64 `json:"total_distance"`
	AverageVelocity float64 `json:"average_velocity"`
	MaxVelocity     float64 `json:"max_velocity"`
	// Intensity is one of "stationary", "slow", "moderate", "active",
	// "rapid".
	Intensity   string `json:"intensity"`
	SampleCount int    `json:"sample_count"`
}

// PerformanceSummary is the performance portion of a session summary.
type PerformanceSummary struct {
	AverageFPS        float64 `json:"average_fps"`
	AverageRenderTime float64 `json:"average_render_time_ms"`
	WarningCount      int     `json:"warning_count"`
}

// Summary is a point-in-time snapshot of session state and derived metrics.
type Summary struct {
	Duration         time.Duration      `json:"duration_ns"`
	EventCount       int                `json:"event_count"`
	InteractionCount int                `json:"interaction_count"`
	AverageFPS       float64            `json:"average_fps"`
	VRSessionStarted bool               `json:"vr_session_started"`
	InteractionTypes []string           `json:"interaction_types"`
	PerformanceTrend string             `json:"performance_trend"`
	Session          session.Session    `json:"session"`
	Movement         *MovementMetrics   `json:"movement,omitempty"`
	Performance      PerformanceSummary `json:"performance"`
}

// Snapshot is the full read-only export of a session.
type Snapshot struct {
	Summary      Summary             `json:"summary"`
	Events       []Event             `json:"events"`
	Interactions []Interaction       `json:"interactions"`
	Spatial      []SpatialSample     `json:"spatial"`
	Performance  []PerformanceSample `json:"performance"`
	Device       session.DeviceInfo  `json:"device"`
	ExportedAt   time.Time           `json:"exported_at"`
}

// EventSink receives important events for durable storage. Append is
// best-effort: the collector logs failures as warnings and never propagates
// them to the logging caller.
type EventSink interface {
	Append(ev Event) error
}
