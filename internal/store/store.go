// Package store persists important session events to disk. The sink is
// best-effort: the collector logs failures and keeps going, so Append must
// never panic and the file must never be left half-written.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
)

// ErrNoEvents is returned by Load when no event file exists for the session.
var ErrNoEvents = errors.New("no stored events for session")

// maxStoredEvents caps the on-disk log; the oldest events are dropped first.
const maxStoredEvents = 1000

// DiskSink is an analytics.EventSink writing one JSON file per session under
// the XDG data directory.
type DiskSink struct {
	path string
	// events mirrors the file contents so Append can rewrite without
	// re-reading.
	events []analytics.Event
}

// NewDiskSink returns a sink for the given session id.
// Path: $XDG_DATA_HOME/vra/events-<session>.json or
// ~/.local/share/vra/events-<session>.json
func NewDiskSink(sessionID string) (*DiskSink, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &DiskSink{path: filepath.Join(dir, "events-"+sessionID+".json")}, nil
}

// dataDir returns the vra-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "vra"), nil
}

// Append adds ev to the stored log, dropping the oldest events past the
// 1000-event cap, and rewrites the file atomically.
func (d *DiskSink) Append(ev analytics.Event) error {
	d.events = append(d.events, ev)
	if len(d.events) > maxStoredEvents {
		d.events = d.events[len(d.events)-maxStoredEvents:]
	}
	return d.write()
}

// write marshals the event log and writes it atomically via a temp file +
// os.Rename.
func (d *DiskSink) write() (err error) {
	data, err := json.Marshal(d.events)
	if err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "events-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist events: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}
	return nil
}

// Load reads the stored events for a session.
// Returns ErrNoEvents if no file exists.
func Load(sessionID string) ([]analytics.Event, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "events-"+sessionID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoEvents
		}
		return nil, fmt.Errorf("failed to read stored events: %w", err)
	}
	var events []analytics.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse stored events: %w", err)
	}
	return events, nil
}

// Delete removes the stored events for a session.
func Delete(sessionID string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "events-"+sessionID+".json")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete stored events: %w", err)
	}
	return nil
}
