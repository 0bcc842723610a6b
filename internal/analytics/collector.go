package analytics

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
)

const (
	// maxSamples caps the spatial and performance buffers: ~30s at 60Hz.
	maxSamples = 1800
	// spatialEmitEvery controls the spatial_tracking cadence.
	spatialEmitEvery = 30
	// perfEmitEvery controls the performance_metrics cadence.
	perfEmitEvery = 300
	// fpsWindow is the sample window for rolling fps/render-time averages.
	fpsWindow = 300
	// trendWindow compares the newest trendWindow samples against the
	// preceding trendWindow; below 2*trendWindow the trend is undefined.
	trendWindow = 60
	// rapidWindow and rapidMinCount bound the rapid-interaction check.
	rapidWindow   = 5
	rapidMinCount = 3
	// rapidGap is the mean consecutive gap below which interactions count
	// as rapid.
	rapidGap = 500 * time.Millisecond
	// minVelocityStep floors Δt in velocity computation so near-simultaneous
	// samples cannot blow up the result.
	minVelocityStep = time.Millisecond
	// exportTail is how many spatial/performance samples an export keeps.
	exportTail = 1000

	lowFPSThreshold       = 30.0
	criticalFPSThreshold  = 15.0
	slowFrameThresholdMS  = 16.67
	criticalFrameThreshMS = 33.33
)

// Collector aggregates session telemetry: an append-only event log, a
// dedicated interaction list, and bounded spatial/performance sample
// buffers. All state is owned by the single constructing goroutine; callers
// that share a Collector must serialize access themselves (the relay hub
// does).
type Collector struct {
	sess *session.Session
	sink EventSink
	log  logrus.FieldLogger
	now  func() time.Time

	events       []Event
	interactions []Interaction
	spatial      []SpatialSample
	perf         []PerformanceSample

	// Insertion counters for the periodic side-emissions. Tracked
	// separately from buffer length so the cadence stays "every Nth
	// insertion" after the buffers saturate and truncation pins their
	// length.
	spatialSeq int
	perfSeq    int

	lastInteractionAt time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source. Tests use this to drive cadences and
// gaps deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithLogger overrides the warning logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Collector) { c.log = log }
}

// New creates a collector for sess. sink may be nil, in which case important
// events are still logged but not persisted.
func New(sess *session.Session, sink EventSink, opts ...Option) *Collector {
	c := &Collector{
		sess: sess,
		sink: sink,
		log:  logrus.StandardLogger(),
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the tracked session.
func (c *Collector) Session() *session.Session { return c.sess }

// EventCount returns the current length of the event log.
func (c *Collector) EventCount() int { return len(c.events) }

// EventsSince returns copies of the events logged at index n onward. A
// single LogInteraction or LogPerformance call can append several events
// (the record itself plus derived ones); consumers track the index to see
// them all.
func (c *Collector) EventsSince(n int) []Event {
	if n < 0 {
		n = 0
	}
	if n >= len(c.events) {
		return nil
	}
	out := make([]Event, 0, len(c.events)-n)
	for _, ev := range c.events[n:] {
		out = append(out, ev.copy())
	}
	return out
}

// LogEvent appends a typed event to the session log, runs real-time
// processing, and forwards important events to the durable sink. Sink
// failures are downgraded to warnings. The returned event is a copy.
func (c *Collector) LogEvent(typ EventType, fields map[string]any) Event {
	now := c.now()
	ev := Event{
		SessionID:   c.sess.ID,
		Type:        typ,
		Timestamp:   now,
		SessionTime: c.sess.Elapsed(now),
		VRMode:      c.sess.VRMode,
		Fields:      cloneFields(fields),
	}
	c.events = append(c.events, ev)

	c.processRealtime(ev)

	if typ.Important() && c.sink != nil {
		if err := c.sink.Append(ev); err != nil {
			c.log.WithFields(logrus.Fields{
				"session_id": c.sess.ID,
				"event_type": string(typ),
			}).WithError(err).Warn("event sink append failed")
		}
	}
	return ev.copy()
}

// LogInteraction records a user interaction: it lands in the dedicated
// interaction list, the general event log (as user_interaction), and the
// running interaction metrics. The returned interaction is a copy.
func (c *Collector) LogInteraction(typ, target string, position *Vec3, extra map[string]any) Interaction {
	now := c.now()
	in := Interaction{
		Type:      typ,
		Target:    target,
		Position:  cloneVec(position),
		Timestamp: now,
		VRMode:    c.sess.VRMode,
	}
	if d, ok := extra["duration_ms"].(float64); ok {
		in.Duration = time.Duration(d * float64(time.Millisecond))
	}
	if f, ok := extra["force"].(float64); ok {
		in.Force = f
	}
	c.interactions = append(c.interactions, in)

	c.updateInteractionMetrics(typ, now)

	fields := map[string]any{
		"interaction_type": typ,
		"target":           target,
	}
	if position != nil {
		fields["position"] = *position
	}
	for k, v := range extra {
		fields[k] = v
	}
	c.LogEvent(EventUserInteraction, fields)

	in.Position = cloneVec(in.Position)
	return in
}

// updateInteractionMetrics maintains the session's running counts and the
// running mean gap between consecutive interactions. The very first
// interaction has no prior timestamp, so the mean update is skipped.
func (c *Collector) updateInteractionMetrics(typ string, now time.Time) {
	m := &c.sess.Interactions
	m.Total++
	if m.ByType == nil {
		m.ByType = map[string]int{}
	}
	m.ByType[typ]++

	if !c.lastInteractionAt.IsZero() {
		delta := now.Sub(c.lastInteractionAt)
		n := time.Duration(m.Total)
		m.AvgGap = (m.AvgGap*(n-1) + delta) / n
	}
	c.lastInteractionAt = now
}

// LogSpatialData appends a position/rotation sample, rounding each axis to 3
// decimals, and keeps only the newest 1800 samples. Every 30th insertion it
// emits a spatial_tracking event carrying the last 30 samples and derived
// movement metrics.
func (c *Collector) LogSpatialData(position, rotation Vec3, scale *Vec3, objectType string) {
	sample := SpatialSample{
		Position:   roundVec3(position),
		Rotation:   roundVec3(rotation),
		Timestamp:  c.now(),
		ObjectType: objectType,
	}
	if scale != nil {
		s := roundVec3(*scale)
		sample.Scale = &s
	}
	c.spatial = append(c.spatial, sample)
	if len(c.spatial) > maxSamples {
		c.spatial = c.spatial[len(c.spatial)-maxSamples:]
	}

	c.spatialSeq++
	if c.spatialSeq%spatialEmitEvery == 0 {
		c.LogEvent(EventSpatialTracking, map[string]any{
			"samples":  cloneSpatial(lastN(c.spatial, spatialEmitEvery)),
			"movement": c.MovementMetrics(),
		})
	}
}

// LogPerformance appends a frame-performance sample (fps rounded to 1
// decimal, render time to 2) under the same 1800-sample bound. Every 300th
// insertion it emits a performance_metrics event with the current sample,
// rolling averages, and the trend classification; the real-time processing
// of that event raises performance warnings.
func (c *Collector) LogPerformance(fps, renderTimeMS float64, memoryUsedMB *float64) {
	sample := PerformanceSample{
		FPS:          round1(fps),
		RenderTimeMS: round2(renderTimeMS),
		Timestamp:    c.now(),
		VRMode:       c.sess.VRMode,
	}
	if memoryUsedMB != nil {
		m := *memoryUsedMB
		sample.MemoryUsedMB = &m
	}
	c.perf = append(c.perf, sample)
	if len(c.perf) > maxSamples {
		c.perf = c.perf[len(c.perf)-maxSamples:]
	}

	c.perfSeq++
	if c.perfSeq%perfEmitEvery == 0 {
		fields := map[string]any{
			"fps":                sample.FPS,
			"render_time_ms":     sample.RenderTimeMS,
			"avg_fps":            c.AverageFPS(),
			"avg_render_time_ms": c.AverageRenderTime(),
			"trend":              c.PerformanceTrend(),
		}
		if sample.MemoryUsedMB != nil {
			fields["memory_used_mb"] = *sample.MemoryUsedMB
		}
		c.LogEvent(EventPerformanceMetrics, fields)
	}
}

// SetVRMode flips the session's VR-mode flag and emits a vr_mode_change
// event. The session's VR start time is stamped only on the first transition
// into VR; re-entering keeps the original timestamp.
func (c *Collector) SetVRMode(isVR bool) {
	now := c.now()
	previous := c.sess.VRMode
	c.sess.VRMode = isVR
	if isVR {
		c.sess.MarkVRStart(now)
	}
	c.LogEvent(EventVRModeChange, map[string]any{
		"previous":   previous,
		"current":    isVR,
		"elapsed_ms": durationMS(c.sess.Elapsed(now)),
	})
}

func (ev Event) copy() Event {
	ev.Fields = cloneFields(ev.Fields)
	return ev
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneFieldValue(v)
	}
	return out
}

// cloneFieldValue deep-clones the pointer and slice values the collector
// stores in event fields, so event copies never alias each other or the
// internal buffers.
func cloneFieldValue(v any) any {
	switch t := v.(type) {
	case []SpatialSample:
		return cloneSpatial(t)
	case *MovementMetrics:
		if t == nil {
			return t
		}
		c := *t
		return &c
	case *Vec3:
		return cloneVec(t)
	case map[string]any:
		return cloneFields(t)
	default:
		return v
	}
}

func cloneVec(v *Vec3) *Vec3 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// cloneSpatial copies samples including their Scale pointers.
func cloneSpatial(samples []SpatialSample) []SpatialSample {
	out := make([]SpatialSample, len(samples))
	for i, s := range samples {
		s.Scale = cloneVec(s.Scale)
		out[i] = s
	}
	return out
}

// clonePerformance copies samples including their MemoryUsedMB pointers.
func clonePerformance(samples []PerformanceSample) []PerformanceSample {
	out := make([]PerformanceSample, len(samples))
	for i, s := range samples {
		if s.MemoryUsedMB != nil {
			m := *s.MemoryUsedMB
			s.MemoryUsedMB = &m
		}
		out[i] = s
	}
	return out
}

func roundVec3(v Vec3) Vec3 {
	return Vec3{X: round3(v.X), Y: round3(v.Y), Z: round3(v.Z)}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
