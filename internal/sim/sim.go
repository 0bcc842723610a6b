// Package sim replays a synthetic demo session into a collector so the
// pipeline can run headless: an orbiting walk through the scene, frame-rate
// wobble with a mid-session dip, scripted interactions against the demo
// objects, and one VR enter/exit cycle.
package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
)

// Scene objects the simulated user interacts with.
var targets = []string{
	"property_model",
	"bar_chart",
	"dashboard_panel",
	"data_point_3",
	"data_point_7",
}

var interactionTypes = []string{"click", "hover", "grab"}

const tick = time.Second / 60 // render-loop cadence

// Driver replays a deterministic synthetic session. It owns a simulated
// clock; build the collector with WithClock(driver.Clock) so the replay
// runs instantly but produces realistic timestamps.
type Driver struct {
	rng      *rand.Rand
	duration time.Duration
	now      time.Time
}

// NewDriver creates a driver for a session of the given length. The same
// seed always produces the same session.
func NewDriver(seed int64, duration time.Duration) *Driver {
	return &Driver{
		rng:      rand.New(rand.NewSource(seed)),
		duration: duration,
		now:      time.Now(),
	}
}

// Clock is the simulated time source.
func (d *Driver) Clock() time.Time { return d.now }

// Run replays the session into c, advancing the simulated clock one render
// tick at a time.
func (d *Driver) Run(c *analytics.Collector) {
	ticks := int(d.duration / tick)
	vrEnter := ticks / 5
	vrExit := ticks * 4 / 5
	dipStart := ticks * 2 / 5
	dipEnd := ticks / 2

	nextInteraction := d.interactionGap()
	var burstLeft int

	for i := 0; i < ticks; i++ {
		d.now = d.now.Add(tick)
		t := float64(i) * tick.Seconds()

		// Orbit the scene center at ~0.5 units/s with a little jitter.
		angle := t * 0.25
		pos := analytics.Vec3{
			X: 2 * math.Cos(angle),
			Y: 1.6 + 0.05*math.Sin(t*2),
			Z: 2 * math.Sin(angle),
		}
		rot := analytics.Vec3{Y: angle + d.rng.Float64()*0.01}
		c.LogSpatialData(pos, rot, nil, "user")

		// The animation callback samples performance once per second.
		if i%60 == 59 {
			fps := 60 + d.rng.Float64()*4 - 2
			if i >= dipStart && i < dipEnd {
				fps = 24 + d.rng.Float64()*4
			}
			renderTime := 1000 / fps * (0.85 + d.rng.Float64()*0.1)
			mem := 180 + d.rng.Float64()*40
			c.LogPerformance(fps, renderTime, &mem)
		}

		switch i {
		case vrEnter:
			c.SetVRMode(true)
		case vrExit:
			c.SetVRMode(false)
		}

		nextInteraction -= tick
		if burstLeft > 0 && i%6 == 0 {
			d.interact(c)
			burstLeft--
		} else if nextInteraction <= 0 {
			d.interact(c)
			nextInteraction = d.interactionGap()
			// Occasionally the user clicks through a chart in a burst.
			if d.rng.Intn(8) == 0 {
				burstLeft = 4
			}
		}
	}

	c.LogEvent(analytics.EventTaskCompletion, map[string]any{
		"task": "guided_tour",
	})
}

func (d *Driver) interact(c *analytics.Collector) {
	target := targets[d.rng.Intn(len(targets))]
	typ := interactionTypes[d.rng.Intn(len(interactionTypes))]
	pos := analytics.Vec3{
		X: d.rng.Float64()*4 - 2,
		Y: d.rng.Float64() * 2,
		Z: d.rng.Float64()*4 - 2,
	}
	c.LogInteraction(typ, target, &pos, map[string]any{
		"duration_ms": 40 + d.rng.Float64()*200,
	})
}

// interactionGap spaces ad hoc interactions 2-8 seconds apart.
func (d *Driver) interactionGap() time.Duration {
	return time.Duration(2+d.rng.Intn(6)) * time.Second
}
