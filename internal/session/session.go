package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one continuous run of the visualization demo.
type Session struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	Device    DeviceInfo `json:"device"`
	// VRMode is the mode flag at the current moment; records logged earlier
	// keep the flag they were stamped with.
	VRMode bool `json:"vr_mode"`
	// VRStartTime is set the first time VR mode turns on and never reset.
	VRStartTime  *time.Time         `json:"vr_start_time,omitempty"`
	Interactions InteractionSummary `json:"interactions"`
}

// InteractionSummary holds running interaction metrics updated on every
// logged interaction.
type InteractionSummary struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
	// AvgGap is the running mean of the time between consecutive
	// interactions. Zero until at least two interactions exist.
	AvgGap time.Duration `json:"avg_gap_ns"`
}

// New creates a session with a fresh identifier, started now.
func New(dev DeviceInfo) *Session {
	return &Session{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
		Device:    dev,
		Interactions: InteractionSummary{
			ByType: map[string]int{},
		},
	}
}

// Elapsed returns the time since session start.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}

// MarkVRStart stamps the VR start time if it has not been stamped yet.
// Repeated entries into VR keep the original timestamp.
func (s *Session) MarkVRStart(now time.Time) {
	if s.VRStartTime == nil {
		t := now
		s.VRStartTime = &t
	}
}
