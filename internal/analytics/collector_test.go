package analytics

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"pgregory.net/rapid"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// memSink records appended events and optionally fails.
type memSink struct {
	events []Event
	err    error
}

func (m *memSink) Append(ev Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestCollector(sink EventSink) (*Collector, *fakeClock) {
	clock := newFakeClock()
	sess := session.New(session.DeviceInfo{
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) OculusBrowser/23.0",
		Platform:  "Oculus Quest",
		VRCapable: true,
	})
	sess.StartTime = clock.Now()
	return New(sess, sink, WithClock(clock.Now), WithLogger(quietLogger())), clock
}

func countEvents(c *Collector, typ EventType) int {
	n := 0
	for _, ev := range c.EventsSince(0) {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestLogEventStampsSessionContext(t *testing.T) {
	c, clock := newTestCollector(nil)
	clock.Advance(2 * time.Second)

	ev := c.LogEvent(EventTaskCompletion, map[string]any{"task": "tour"})

	if ev.SessionID != c.Session().ID {
		t.Errorf("SessionID = %q, want %q", ev.SessionID, c.Session().ID)
	}
	if ev.SessionTime != 2*time.Second {
		t.Errorf("SessionTime = %v, want 2s", ev.SessionTime)
	}
	if ev.VRMode {
		t.Error("VRMode = true before entering VR")
	}
	if got := ev.Fields["task"]; got != "tour" {
		t.Errorf("Fields[task] = %v, want tour", got)
	}
}

func TestLogEventReturnsCopy(t *testing.T) {
	c, _ := newTestCollector(nil)

	ev := c.LogEvent(EventError, map[string]any{"message": "boom"})
	ev.Fields["message"] = "mutated"

	stored := c.EventsSince(0)[0]
	if stored.Fields["message"] != "boom" {
		t.Errorf("stored event mutated through returned copy: %v", stored.Fields["message"])
	}
}

func TestImportantEventsReachSink(t *testing.T) {
	sink := &memSink{}
	c, _ := newTestCollector(sink)

	c.LogEvent(EventSessionStart, nil)
	c.LogEvent("hover_start", map[string]any{"target": "bar_chart"})
	c.LogEvent(EventError, map[string]any{"message": "boom"})

	if len(sink.events) != 2 {
		t.Fatalf("sink holds %d events, want 2", len(sink.events))
	}
	if sink.events[0].Type != EventSessionStart || sink.events[1].Type != EventError {
		t.Errorf("sink holds %v, %v", sink.events[0].Type, sink.events[1].Type)
	}
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sink := &memSink{err: errors.New("disk full")}
	c, _ := newTestCollector(sink)

	// Must not panic or surface the error; the event still lands in the log.
	ev := c.LogEvent(EventError, nil)
	if ev.Type != EventError {
		t.Errorf("event type = %v", ev.Type)
	}
	if c.EventCount() != 1 {
		t.Errorf("event log has %d entries, want 1", c.EventCount())
	}
}

func TestInteractionMetricsRunningMean(t *testing.T) {
	c, clock := newTestCollector(nil)

	c.LogInteraction("click", "bar_chart", nil, nil)
	clock.Advance(100 * time.Millisecond)
	c.LogInteraction("click", "bar_chart", nil, nil)
	clock.Advance(300 * time.Millisecond)
	c.LogInteraction("hover", "property_model", nil, nil)

	m := c.Session().Interactions
	if m.Total != 3 {
		t.Errorf("Total = %d, want 3", m.Total)
	}
	if m.ByType["click"] != 2 || m.ByType["hover"] != 1 {
		t.Errorf("ByType = %v", m.ByType)
	}
	// Gaps of 100ms and 300ms over 3 interactions:
	// after 2nd: (0*1 + 100ms)/2 = 50ms; after 3rd: (50ms*2 + 300ms)/3 = 133.3ms
	want := (50*time.Millisecond*2 + 300*time.Millisecond) / 3
	if m.AvgGap != want {
		t.Errorf("AvgGap = %v, want %v", m.AvgGap, want)
	}
}

func TestRapidInteractionDetection(t *testing.T) {
	c, clock := newTestCollector(nil)

	for i := 0; i < 3; i++ {
		c.LogInteraction("click", "bar_chart", nil, nil)
		clock.Advance(100 * time.Millisecond)
	}

	if got := countEvents(c, EventRapidInteraction); got != 1 {
		t.Errorf("rapid_interaction_detected count = %d, want 1", got)
	}
}

func TestSlowInteractionsNotFlagged(t *testing.T) {
	c, clock := newTestCollector(nil)

	for i := 0; i < 5; i++ {
		c.LogInteraction("click", "bar_chart", nil, nil)
		clock.Advance(2 * time.Second)
	}

	if got := countEvents(c, EventRapidInteraction); got != 0 {
		t.Errorf("rapid_interaction_detected count = %d, want 0", got)
	}
}

func TestSpatialRoundingAtInsertion(t *testing.T) {
	c, _ := newTestCollector(nil)

	c.LogSpatialData(Vec3{X: 1.23456}, Vec3{Y: 0.00049}, &Vec3{X: 1.0005}, "user")

	snap := c.Export()
	s := snap.Spatial[0]
	if s.Position.X != 1.235 {
		t.Errorf("Position.X = %v, want 1.235", s.Position.X)
	}
	if s.Rotation.Y != 0 {
		t.Errorf("Rotation.Y = %v, want 0", s.Rotation.Y)
	}
	if s.Scale == nil || s.Scale.X != 1.001 {
		t.Errorf("Scale = %v, want X=1.001", s.Scale)
	}
}

func TestPerformanceRoundingAtInsertion(t *testing.T) {
	c, _ := newTestCollector(nil)

	c.LogPerformance(59.9634, 16.6789, nil)

	snap := c.Export()
	p := snap.Performance[0]
	if p.FPS != 60.0 {
		t.Errorf("FPS = %v, want 60.0", p.FPS)
	}
	if p.RenderTimeMS != 16.68 {
		t.Errorf("RenderTimeMS = %v, want 16.68", p.RenderTimeMS)
	}
}

func TestSpatialBufferBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, clock := newTestCollector(nil)
		n := rapid.IntRange(0, 2*maxSamples+30).Draw(rt, "inserts")

		for i := 0; i < n; i++ {
			c.LogSpatialData(Vec3{X: float64(i)}, Vec3{}, nil, "user")
			clock.Advance(tickInterval)
		}

		snap := c.Export()
		wantLen := n
		if wantLen > maxSamples {
			wantLen = maxSamples
		}
		// Export keeps at most exportTail samples of the buffer's tail, so
		// verify the bound via the exported slice plus the known cap.
		if wantLen > exportTail {
			wantLen = exportTail
		}
		if len(snap.Spatial) != wantLen {
			rt.Fatalf("spatial export length = %d, want %d", len(snap.Spatial), wantLen)
		}
		// The newest samples survive, in insertion order.
		for j, s := range snap.Spatial {
			want := float64(n - len(snap.Spatial) + j)
			if s.Position.X != want {
				rt.Fatalf("sample %d has X=%v, want %v", j, s.Position.X, want)
			}
		}
	})
}

func TestPerformanceBufferBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, clock := newTestCollector(nil)
		n := rapid.IntRange(0, 2*maxSamples+17).Draw(rt, "inserts")

		for i := 0; i < n; i++ {
			c.LogPerformance(float64(i%200), 10, nil)
			clock.Advance(time.Second)
		}

		snap := c.Export()
		wantLen := n
		if wantLen > maxSamples {
			wantLen = maxSamples
		}
		if wantLen > exportTail {
			wantLen = exportTail
		}
		if len(snap.Performance) != wantLen {
			rt.Fatalf("performance export length = %d, want %d", len(snap.Performance), wantLen)
		}
		for j, p := range snap.Performance {
			want := float64((n - len(snap.Performance) + j) % 200)
			if p.FPS != want {
				rt.Fatalf("sample %d has fps=%v, want %v", j, p.FPS, want)
			}
		}
	})
}

func TestSpatialTrackingCadence(t *testing.T) {
	c, clock := newTestCollector(nil)

	for i := 0; i < 90; i++ {
		c.LogSpatialData(Vec3{X: float64(i)}, Vec3{}, nil, "user")
		clock.Advance(tickInterval)
	}

	if got := countEvents(c, EventSpatialTracking); got != 3 {
		t.Errorf("spatial_tracking count after 90 inserts = %d, want 3", got)
	}
}

func TestPerformanceMetricsCadenceAndWarnings(t *testing.T) {
	c, clock := newTestCollector(nil)

	// 300 samples at a healthy rate: one metrics event, no warnings.
	for i := 0; i < perfEmitEvery; i++ {
		c.LogPerformance(60, 10, nil)
		clock.Advance(time.Second)
	}
	if got := countEvents(c, EventPerformanceMetrics); got != 1 {
		t.Fatalf("performance_metrics count = %d, want 1", got)
	}
	if got := countEvents(c, EventPerformanceWarning); got != 0 {
		t.Fatalf("performance_warning count = %d, want 0", got)
	}

	// Another 300 ending on a critical sample: both fps and render-time
	// warnings fire off the cadence event.
	for i := 0; i < perfEmitEvery; i++ {
		c.LogPerformance(12, 40, nil)
		clock.Advance(time.Second)
	}
	if got := countEvents(c, EventPerformanceMetrics); got != 2 {
		t.Fatalf("performance_metrics count = %d, want 2", got)
	}
	if got := countEvents(c, EventPerformanceWarning); got != 2 {
		t.Fatalf("performance_warning count = %d, want 2", got)
	}

	var severities []string
	for _, ev := range c.EventsSince(0) {
		if ev.Type == EventPerformanceWarning {
			severities = append(severities, ev.Fields["severity"].(string))
		}
	}
	for _, s := range severities {
		if s != "critical" {
			t.Errorf("severity = %q, want critical", s)
		}
	}
}

func TestSetVRModeLifecycle(t *testing.T) {
	c, clock := newTestCollector(nil)

	clock.Advance(10 * time.Second)
	c.SetVRMode(true)

	sess := c.Session()
	if sess.VRStartTime == nil {
		t.Fatal("VRStartTime not stamped on first VR entry")
	}
	first := *sess.VRStartTime

	if got := countEvents(c, EventVRExperienceStart); got != 1 {
		t.Errorf("vr_experience_start count = %d, want 1", got)
	}

	// Re-entering keeps the original timestamp.
	clock.Advance(5 * time.Second)
	c.SetVRMode(true)
	if !sess.VRStartTime.Equal(first) {
		t.Errorf("VRStartTime reset on repeated entry: %v != %v", sess.VRStartTime, first)
	}

	clock.Advance(30 * time.Second)
	c.SetVRMode(false)
	if got := countEvents(c, EventVRExperienceEnd); got != 1 {
		t.Errorf("vr_experience_end count = %d, want 1", got)
	}

	var endEvent Event
	for _, ev := range c.EventsSince(0) {
		if ev.Type == EventVRExperienceEnd {
			endEvent = ev
		}
	}
	// VR entered at t=10s, exited at t=45s.
	wantVRDur := durationMS(35 * time.Second)
	if got := endEvent.Fields["vr_duration_ms"]; got != wantVRDur {
		t.Errorf("vr_duration_ms = %v, want %v", got, wantVRDur)
	}
}

func TestVRFlagNotRetroactive(t *testing.T) {
	c, _ := newTestCollector(nil)

	c.LogEvent("scene_loaded", nil)
	c.SetVRMode(true)
	c.LogEvent("scene_loaded", nil)

	events := c.EventsSince(0)
	if events[0].VRMode {
		t.Error("pre-VR event retroactively marked as VR")
	}
	last := events[len(events)-1]
	if !last.VRMode {
		t.Error("post-VR event not marked as VR")
	}
}

// tickInterval approximates a 60Hz sampling cadence for tests.
const tickInterval = time.Second / 60
