package session

import (
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	s := New(DeviceInfo{Platform: "Linux"})

	if s.ID == "" {
		t.Error("New session has empty ID")
	}
	if s.StartTime.IsZero() {
		t.Error("New session has zero StartTime")
	}
	if s.VRMode {
		t.Error("New session starts in VR mode")
	}
	if s.Interactions.ByType == nil {
		t.Error("Interactions.ByType not initialized")
	}

	other := New(DeviceInfo{})
	if other.ID == s.ID {
		t.Error("two sessions share an ID")
	}
}

func TestElapsed(t *testing.T) {
	s := New(DeviceInfo{})
	s.StartTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	now := s.StartTime.Add(90 * time.Second)
	if got := s.Elapsed(now); got != 90*time.Second {
		t.Errorf("Elapsed = %v, want 90s", got)
	}
}

func TestMarkVRStartIdempotent(t *testing.T) {
	s := New(DeviceInfo{})
	first := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)

	s.MarkVRStart(first)
	if s.VRStartTime == nil || !s.VRStartTime.Equal(first) {
		t.Fatalf("VRStartTime = %v, want %v", s.VRStartTime, first)
	}

	s.MarkVRStart(first.Add(time.Minute))
	if !s.VRStartTime.Equal(first) {
		t.Errorf("VRStartTime moved to %v after second mark, want %v", s.VRStartTime, first)
	}
}

func TestClassifyPlatform(t *testing.T) {
	tests := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64; Quest 2) OculusBrowser/23.0", "Oculus Quest"},
		{"Mozilla/5.0 (Linux; Android 10; Quest 2)", "Oculus Quest"},
		{"Mozilla/5.0 (Linux; Android 10; Pico Neo 3)", "Pico"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macOS"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iOS"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", "iOS"},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8)", "Android"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"curl/8.5.0", "Unknown"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		if got := ClassifyPlatform(tt.userAgent); got != tt.want {
			t.Errorf("ClassifyPlatform(%q) = %q, want %q", tt.userAgent, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	d := DeviceInfo{UserAgent: "Mozilla/5.0 (X11) OculusBrowser/23.0"}
	d.Normalize()
	if d.Platform != "Oculus Quest" {
		t.Errorf("Platform = %q, want Oculus Quest", d.Platform)
	}
	if !d.VRCapable {
		t.Error("VRCapable = false for Oculus Quest")
	}

	// Client-reported fields win over the derived ones.
	reported := DeviceInfo{UserAgent: "OculusBrowser/23.0", Platform: "Custom"}
	reported.Normalize()
	if reported.Platform != "Custom" {
		t.Errorf("Platform = %q, want Custom", reported.Platform)
	}
}

func TestLocalProbe(t *testing.T) {
	d := LocalProbe()
	if d.CPUCores < 1 {
		t.Errorf("CPUCores = %d, want >= 1", d.CPUCores)
	}
	if d.Platform == "" {
		t.Error("Platform is empty")
	}
	if d.VRCapable {
		t.Error("local probe should not claim VR capability")
	}
}
