package analytics

import (
	"math"
	"sort"
)

// Trend classifications returned by PerformanceTrend.
const (
	TrendInsufficientData = "insufficient_data"
	TrendImproving        = "improving"
	TrendDegrading        = "degrading"
	TrendStable           = "stable"
)

// AverageFPS returns the mean fps over the last 300 performance samples
// (fewer if not yet available), rounded to 1 decimal. Zero when no samples
// exist.
func (c *Collector) AverageFPS() float64 {
	window := lastN(c.perf, fpsWindow)
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, s := range window {
		sum += s.FPS
	}
	return round1(sum / float64(len(window)))
}

// AverageRenderTime returns the mean render time in ms over the same window
// as AverageFPS, rounded to 2 decimals.
func (c *Collector) AverageRenderTime() float64 {
	window := lastN(c.perf, fpsWindow)
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, s := range window {
		sum += s.RenderTimeMS
	}
	return round2(sum / float64(len(window)))
}

// PerformanceTrend compares mean fps of the newest 60 samples to the
// preceding 60. Below 120 total samples the trend is undefined.
func (c *Collector) PerformanceTrend() string {
	if len(c.perf) < 2*trendWindow {
		return TrendInsufficientData
	}
	recent := meanFPS(c.perf[len(c.perf)-trendWindow:])
	previous := meanFPS(c.perf[len(c.perf)-2*trendWindow : len(c.perf)-trendWindow])
	if previous == 0 {
		return TrendStable
	}
	change := (recent - previous) / previous
	switch {
	case change > 0.05:
		return TrendImproving
	case change < -0.05:
		return TrendDegrading
	default:
		return TrendStable
	}
}

// MovementMetrics derives motion statistics over the last 30 spatial
// samples: total Euclidean distance between consecutive samples, per-step
// velocity with a 1ms time-delta floor, the maximum velocity, and a
// qualitative intensity bucket. Returns nil when fewer than 2 samples exist.
func (c *Collector) MovementMetrics() *MovementMetrics {
	window := lastN(c.spatial, spatialEmitEvery)
	if len(window) < 2 {
		return nil
	}

	var totalDistance, totalVelocity, maxVelocity float64
	steps := 0
	for i := 1; i < len(window); i++ {
		dist := distance(window[i-1].Position, window[i].Position)
		dt := window[i].Timestamp.Sub(window[i-1].Timestamp)
		if dt < minVelocityStep {
			dt = minVelocityStep
		}
		velocity := dist / dt.Seconds()
		totalDistance += dist
		totalVelocity += velocity
		if velocity > maxVelocity {
			maxVelocity = velocity
		}
		steps++
	}
	avgVelocity := totalVelocity / float64(steps)

	return &MovementMetrics{
		TotalDistance:   round3(totalDistance),
		AverageVelocity: round3(avgVelocity),
		MaxVelocity:     round3(maxVelocity),
		Intensity:       classifyIntensity(avgVelocity),
		SampleCount:     len(window),
	}
}

// classifyIntensity buckets an average velocity (units/s). Upper bounds for
// moderate and active are inclusive so a steady 1.0 units/s walk still
// classifies as moderate.
func classifyIntensity(avgVelocity float64) string {
	switch {
	case avgVelocity < 0.1:
		return "stationary"
	case avgVelocity < 0.5:
		return "slow"
	case avgVelocity <= 1.0:
		return "moderate"
	case avgVelocity <= 2.0:
		return "active"
	default:
		return "rapid"
	}
}

// Summary snapshots session state and derived metrics.
func (c *Collector) Summary() Summary {
	now := c.now()

	types := make([]string, 0, len(c.sess.Interactions.ByType))
	for t := range c.sess.Interactions.ByType {
		types = append(types, t)
	}
	sort.Strings(types)

	warnings := 0
	vrStarted := false
	for _, ev := range c.events {
		switch ev.Type {
		case EventPerformanceWarning:
			warnings++
		case EventVRExperienceStart:
			vrStarted = true
		}
	}

	sessCopy := *c.sess
	sessCopy.Interactions.ByType = make(map[string]int, len(c.sess.Interactions.ByType))
	for k, v := range c.sess.Interactions.ByType {
		sessCopy.Interactions.ByType[k] = v
	}

	return Summary{
		Duration:         c.sess.Elapsed(now),
		EventCount:       len(c.events),
		InteractionCount: c.sess.Interactions.Total,
		AverageFPS:       c.AverageFPS(),
		VRSessionStarted: vrStarted,
		InteractionTypes: types,
		PerformanceTrend: c.PerformanceTrend(),
		Session:          sessCopy,
		Movement:         c.MovementMetrics(),
		Performance: PerformanceSummary{
			AverageFPS:        c.AverageFPS(),
			AverageRenderTime: c.AverageRenderTime(),
			WarningCount:      warnings,
		},
	}
}

// EngagementScore composes a 0-100 score from session duration, interaction
// volume, VR usage, and frame performance. A fresh session floors at 5
// (performance component minimum).
func (c *Collector) EngagementScore() int {
	s := c.Summary()

	durationScore := math.Min(s.Duration.Seconds()/300, 1) * 30
	interactionScore := math.Min(float64(s.InteractionCount)/50, 1) * 30

	vrScore := 0.0
	if s.VRSessionStarted {
		vrScore = 25
	}

	perfScore := 5.0
	switch {
	case s.AverageFPS > 45:
		perfScore = 15
	case s.AverageFPS > 30:
		perfScore = 10
	}

	return int(math.Round(durationScore + interactionScore + vrScore + perfScore))
}

// Recommendations evaluates the suggestion rules in fixed order; each
// matching rule contributes exactly one message.
func (c *Collector) Recommendations() []string {
	s := c.Summary()
	var recs []string

	if s.AverageFPS < lowFPSThreshold {
		recs = append(recs, "Frame rate is low; consider reducing scene quality or model detail.")
	}
	if s.InteractionCount < 10 {
		recs = append(recs, "Few interactions recorded; try clicking or grabbing the visualized objects.")
	}
	if c.sess.Device.VRCapable && !s.VRSessionStarted {
		recs = append(recs, "This device supports VR; enter VR mode for the immersive view.")
	}
	if s.Movement != nil && s.Movement.Intensity == "stationary" {
		recs = append(recs, "Very little movement detected; teleport or smooth locomotion may reduce motion sickness.")
	}
	return recs
}

// Export returns a deep-copied snapshot: the summary, the full event and
// interaction logs, the last 1000 spatial and performance samples, device
// facts, and the export timestamp. It does not mutate collector state.
func (c *Collector) Export() Snapshot {
	events := make([]Event, len(c.events))
	for i, ev := range c.events {
		events[i] = ev.copy()
	}
	interactions := make([]Interaction, len(c.interactions))
	for i, in := range c.interactions {
		in.Position = cloneVec(in.Position)
		interactions[i] = in
	}

	return Snapshot{
		Summary:      c.Summary(),
		Events:       events,
		Interactions: interactions,
		Spatial:      cloneSpatial(lastN(c.spatial, exportTail)),
		Performance:  clonePerformance(lastN(c.perf, exportTail)),
		Device:       c.sess.Device,
		ExportedAt:   c.now(),
	}
}

// lastN returns a view of the last n elements of s without copying.
func lastN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func meanFPS(samples []PerformanceSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.FPS
	}
	return sum / float64(len(samples))
}

func distance(a, b Vec3) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
