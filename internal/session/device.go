package session

import (
	"runtime"
	"strings"
)

// DeviceInfo holds static environment facts captured once at session start.
// Remote clients report theirs in the relay hello frame; headless runs use
// LocalProbe.
type DeviceInfo struct {
	UserAgent      string  `json:"user_agent"`
	Platform       string  `json:"platform"`
	ScreenWidth    int     `json:"screen_width"`
	ScreenHeight   int     `json:"screen_height"`
	PixelRatio     float64 `json:"pixel_ratio"`
	DeviceMemoryGB float64 `json:"device_memory_gb,omitempty"`
	CPUCores       int     `json:"cpu_cores"`
	Connection     string  `json:"connection,omitempty"` // e.g. "4g", "wifi"
	VRCapable      bool    `json:"vr_capable"`
}

// platformMarkers maps user-agent substrings to platform names. Order
// matters: VR browsers also carry the OS marker, so they are checked first.
var platformMarkers = []struct {
	substr   string
	platform string
}{
	{"OculusBrowser", "Oculus Quest"},
	{"Quest", "Oculus Quest"},
	{"Pico", "Pico"},
	{"Windows", "Windows"},
	// iPhone/iPad user agents also carry "like Mac OS X", so check them
	// before the Mac marker.
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Mac", "macOS"},
	{"Android", "Android"},
	{"Linux", "Linux"},
}

// vrPlatforms is the set of platform names that imply VR capability.
var vrPlatforms = map[string]bool{
	"Oculus Quest": true,
	"Pico":         true,
}

// ClassifyPlatform derives a platform name from a user-agent string by
// substring match against known VR and OS markers.
func ClassifyPlatform(userAgent string) string {
	for _, m := range platformMarkers {
		if strings.Contains(userAgent, m.substr) {
			return m.platform
		}
	}
	return "Unknown"
}

// Normalize fills the Platform and VRCapable fields from the user agent when
// the reporting client left them unset.
func (d *DeviceInfo) Normalize() {
	if d.Platform == "" {
		d.Platform = ClassifyPlatform(d.UserAgent)
	}
	if !d.VRCapable && vrPlatforms[d.Platform] {
		d.VRCapable = true
	}
}

// LocalProbe builds a DeviceInfo for headless runs on this machine.
func LocalProbe() DeviceInfo {
	d := DeviceInfo{
		UserAgent:    "vra/" + runtime.GOOS,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		PixelRatio:   1.0,
		CPUCores:     runtime.NumCPU(),
		Connection:   "local",
	}
	switch runtime.GOOS {
	case "windows":
		d.Platform = "Windows"
	case "darwin":
		d.Platform = "macOS"
	case "linux":
		d.Platform = "Linux"
	default:
		d.Platform = "Unknown"
	}
	return d
}
