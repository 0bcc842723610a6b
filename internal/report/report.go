// Package report builds the renderable session report written by `vra demo`
// and read back by `vra view`.
package report

import (
	"time"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
)

// Report is the complete, renderable representation of a finished session.
type Report struct {
	Session         SessionMeta        `json:"session"`
	EngagementScore int                `json:"engagement_score"`
	Recommendations []string           `json:"recommendations"`
	Summary         analytics.Summary  `json:"summary"`
	Snapshot        analytics.Snapshot `json:"snapshot"`
}

// SessionMeta holds summary metadata about the session for the report
// header.
type SessionMeta struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"` // human-readable, e.g. "4m30s"
	Platform  string    `json:"platform"`
	VRUsed    bool      `json:"vr_used"`
}

// Build assembles a report from a collector at session end.
func Build(c *analytics.Collector, endTime time.Time) *Report {
	snap := c.Export()
	sess := c.Session()
	return &Report{
		Session: SessionMeta{
			ID:        sess.ID,
			StartTime: sess.StartTime,
			EndTime:   endTime,
			Duration:  endTime.Sub(sess.StartTime).Round(time.Second).String(),
			Platform:  sess.Device.Platform,
			VRUsed:    snap.Summary.VRSessionStarted,
		},
		EngagementScore: c.EngagementScore(),
		Recommendations: c.Recommendations(),
		Summary:         snap.Summary,
		Snapshot:        snap,
	}
}
