package analytics

import "time"

// processRealtime reacts to an event synchronously inside LogEvent. Derived
// events are logged through LogEvent again, so they land in the event log
// and, where important, in the sink.
func (c *Collector) processRealtime(ev Event) {
	switch ev.Type {
	case EventUserInteraction:
		c.checkRapidInteraction()
	case EventPerformanceMetrics:
		c.checkPerformanceWarnings(ev)
	case EventVRModeChange:
		c.handleVRModeChange(ev)
	}
}

// checkRapidInteraction inspects the last 5 interactions; with at least 3
// present and a mean consecutive gap under 500ms it flags a burst.
func (c *Collector) checkRapidInteraction() {
	window := lastN(c.interactions, rapidWindow)
	if len(window) < rapidMinCount {
		return
	}
	var total time.Duration
	for i := 1; i < len(window); i++ {
		total += window[i].Timestamp.Sub(window[i-1].Timestamp)
	}
	avgGap := total / time.Duration(len(window)-1)
	if avgGap < rapidGap {
		c.LogEvent(EventRapidInteraction, map[string]any{
			"count":      len(window),
			"avg_gap_ms": durationMS(avgGap),
		})
	}
}

// checkPerformanceWarnings raises up to two independent warnings off a
// performance_metrics event: one for low fps, one for slow frames.
func (c *Collector) checkPerformanceWarnings(ev Event) {
	if fps, ok := ev.Fields["fps"].(float64); ok && fps < lowFPSThreshold {
		severity := "warning"
		if fps < criticalFPSThreshold {
			severity = "critical"
		}
		c.LogEvent(EventPerformanceWarning, map[string]any{
			"metric":    "fps",
			"value":     fps,
			"threshold": lowFPSThreshold,
			"severity":  severity,
		})
	}
	if rt, ok := ev.Fields["render_time_ms"].(float64); ok && rt > slowFrameThresholdMS {
		severity := "warning"
		if rt > criticalFrameThreshMS {
			severity = "critical"
		}
		c.LogEvent(EventPerformanceWarning, map[string]any{
			"metric":    "render_time",
			"value":     rt,
			"threshold": slowFrameThresholdMS,
			"severity":  severity,
		})
	}
}

// handleVRModeChange emits the VR experience lifecycle events.
func (c *Collector) handleVRModeChange(ev Event) {
	entering, _ := ev.Fields["current"].(bool)
	now := ev.Timestamp
	if entering {
		c.LogEvent(EventVRExperienceStart, map[string]any{
			"time_to_vr_ms": durationMS(c.sess.Elapsed(now)),
			"platform":      c.sess.Device.Platform,
		})
		return
	}
	fields := map[string]any{
		"total_elapsed_ms": durationMS(c.sess.Elapsed(now)),
	}
	if c.sess.VRStartTime != nil {
		fields["vr_duration_ms"] = durationMS(now.Sub(*c.sess.VRStartTime))
	}
	c.LogEvent(EventVRExperienceEnd, fields)
}
