package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSummaryURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8090", "http://localhost:8090/api/summary"},
		{"localhost:9000", "http://localhost:9000/api/summary"},
		{"demo.example.com:80", "http://demo.example.com:80/api/summary"},
		{"http://demo.example.com", "http://demo.example.com/api/summary"},
		{"http://demo.example.com/", "http://demo.example.com/api/summary"},
		{"https://demo.example.com", "https://demo.example.com/api/summary"},
	}
	for _, tt := range tests {
		if got := summaryURL(tt.addr); got != tt.want {
			t.Errorf("summaryURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestStatusAgainstRunningServer(t *testing.T) {
	setupTestEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/summary" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"summary": {
				"duration_ns": 125000000000,
				"event_count": 42,
				"interaction_count": 7,
				"average_fps": 58.5,
				"vr_session_started": true,
				"performance_trend": "stable",
				"session": {"id": "sess-123", "start_time": "2026-03-01T12:00:00Z", "device": {}, "vr_mode": true, "interactions": {"total": 7, "by_type": {}, "avg_gap_ns": 0}}
			},
			"engagement_score": 61,
			"subscribers": 2
		}`))
	}))
	defer srv.Close()

	out, err := executeCommand(rootCmd, "status", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	for _, want := range []string{
		"Session: sess-123",
		"Events: 42",
		"Interactions: 7",
		"Average FPS: 58.5 (stable)",
		"VR session: true",
		"Engagement: 61/100",
		"Subscribers: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusNoServer(t *testing.T) {
	setupTestEnv(t)

	// A port that nothing listens on.
	out, err := executeCommand(rootCmd, "status", "--addr", "localhost:1")
	if err == nil {
		t.Fatal("expected an error when no server is reachable, got nil")
	}
	combined := out + err.Error()
	if !strings.Contains(combined, "no server reachable") {
		t.Errorf("expected error to mention unreachable server, got: %q", combined)
	}
}
