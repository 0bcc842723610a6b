package report

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"pgregory.net/rapid"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	sess := session.New(session.DeviceInfo{
		UserAgent: "OculusBrowser/23.0",
		Platform:  "Oculus Quest",
		VRCapable: true,
	})
	sess.StartTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	clock := sess.StartTime
	c := analytics.New(sess, nil,
		analytics.WithClock(func() time.Time { return clock }),
		analytics.WithLogger(log),
	)

	c.LogEvent(analytics.EventSessionStart, nil)
	c.SetVRMode(true)
	clock = clock.Add(2 * time.Second)
	c.LogInteraction("click", "bar_chart", &analytics.Vec3{X: 1}, nil)
	clock = clock.Add(2 * time.Second)
	c.LogInteraction("hover", "property_model", nil, nil)
	c.LogPerformance(58.3, 17.2, nil)
	c.LogSpatialData(analytics.Vec3{}, analytics.Vec3{}, nil, "user")
	clock = clock.Add(time.Second)
	c.LogSpatialData(analytics.Vec3{X: 0.5}, analytics.Vec3{}, nil, "user")

	return Build(c, sess.StartTime.Add(5*time.Minute))
}

func TestBuild(t *testing.T) {
	r := newTestReport(t)

	if r.Session.Duration != "5m0s" {
		t.Errorf("Duration = %q, want 5m0s", r.Session.Duration)
	}
	if r.Session.Platform != "Oculus Quest" {
		t.Errorf("Platform = %q", r.Session.Platform)
	}
	if !r.Session.VRUsed {
		t.Error("VRUsed = false")
	}
	if r.Summary.InteractionCount != 2 {
		t.Errorf("InteractionCount = %d, want 2", r.Summary.InteractionCount)
	}
	if r.EngagementScore <= 0 {
		t.Errorf("EngagementScore = %d, want > 0", r.EngagementScore)
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	r := newTestReport(t)

	data, err := MarkdownRenderer{}.Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	parsed, err := MarkdownParser{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Session.ID != r.Session.ID {
		t.Errorf("Session.ID = %q, want %q", parsed.Session.ID, r.Session.ID)
	}
	if parsed.EngagementScore != r.EngagementScore {
		t.Errorf("EngagementScore = %d, want %d", parsed.EngagementScore, r.EngagementScore)
	}
	if parsed.Summary.InteractionCount != r.Summary.InteractionCount {
		t.Errorf("InteractionCount = %d, want %d", parsed.Summary.InteractionCount, r.Summary.InteractionCount)
	}
	if len(parsed.Snapshot.Events) != len(r.Snapshot.Events) {
		t.Errorf("event count = %d, want %d", len(parsed.Snapshot.Events), len(r.Snapshot.Events))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := newTestReport(t)

	data, err := JSONRenderer{}.Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	parsed, err := JSONParser{}.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Session.ID != r.Session.ID {
		t.Errorf("Session.ID = %q, want %q", parsed.Session.ID, r.Session.ID)
	}
}

func TestMarkdownSections(t *testing.T) {
	r := newTestReport(t)

	data, err := MarkdownRenderer{}.Render(r)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"## Summary",
		"## Performance",
		"## Movement",
		"## Interactions",
		"## Recommendations",
		"| click | 1 |",
		"| hover | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownParserRejectsForeignFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"plain markdown", "# Some notes\n\njust text\n"},
		{"sentinel without payload", "<!-- vra-report-version: 1 -->\n# Report\n"},
		{"corrupted payload", "<!-- vra-report-version: 1 -->\n<!-- vra-data: !!! -->\n"},
		{"payload not json", "<!-- vra-report-version: 1 -->\n<!-- vra-data: aGVsbG8= -->\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (MarkdownParser{}).Parse([]byte(tt.data)); err == nil {
				t.Error("Parse accepted invalid report")
			}
		})
	}
}

func TestMarkdownRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := &Report{
			Session: SessionMeta{
				ID:       rapid.StringMatching(`[a-f0-9-]{8,36}`).Draw(rt, "id"),
				Duration: "1m30s",
				Platform: rapid.SampledFrom([]string{"Oculus Quest", "Windows", "macOS"}).Draw(rt, "platform"),
				VRUsed:   rapid.Bool().Draw(rt, "vr"),
			},
			EngagementScore: rapid.IntRange(0, 100).Draw(rt, "score"),
			Recommendations: rapid.SliceOfN(rapid.StringMatching(`[A-Za-z .,]{1,40}`), 0, 4).Draw(rt, "recs"),
		}

		data, err := MarkdownRenderer{}.Render(r)
		if err != nil {
			rt.Fatalf("Render: %v", err)
		}
		parsed, err := MarkdownParser{}.Parse(data)
		if err != nil {
			rt.Fatalf("Parse: %v", err)
		}
		if parsed.Session.ID != r.Session.ID ||
			parsed.EngagementScore != r.EngagementScore ||
			len(parsed.Recommendations) != len(r.Recommendations) {
			rt.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", parsed, r)
		}
	})
}
