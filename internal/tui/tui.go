// Package tui provides a Bubble Tea TUI for viewing session reports.
package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/report"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Active tab: bright, underlined
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	// Inactive tab: muted
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	// Separator between tabs
	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	// Section heading inside a tab
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	// Key=value label
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)

	kindInteractionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	kindVRStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	kindWarnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabPerformance
	tabMovement
	tabInteractions
	tabEvents
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{
	"Summary", "Performance", "Movement", "Interactions", "Events", "Timeline",
}

// ── Timeline event ───────────────────

type eventKind string

const (
	kindInteraction eventKind = "INTERACT"
	kindVR          eventKind = "VR"
	kindWarn        eventKind = "WARN"
	kindOther       eventKind = "EVENT"
)

type timelineEvent struct {
	ts   time.Time
	kind eventKind
	text string
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the report viewer.
type Model struct {
	report    *report.Report
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	timeline  []timelineEvent
}

// New creates a new TUI model for the given report and source filename.
func New(r *report.Report, filename string) Model {
	m := Model{
		report:   r,
		filename: filepath.Base(filename),
		sortAsc:  false,
	}
	m.timeline = buildTimeline(r)
	return m
}

// Run opens the report viewer and blocks until the user quits.
func Run(r *report.Report, filename string) error {
	p := tea.NewProgram(New(r, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5", "6":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabTimeline {
				m.sortAsc = !m.sortAsc
				m.rebuildTimelineViewport()
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	// ── Row 1: title bar ──────────────────────────────────────────────────────
	title := titleStyle.Width(m.width).Render("  vra  " + m.filename)

	// ── Row 2: tab bar ────────────────────────────────────────────────────────
	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	// ── Row 3…N-1: scrollable content ────────────────────────────────────────
	content := m.viewports[m.activeTab].View()

	// ── Row N: status / hint bar ──────────────────────────────────────────────
	hint := "  ←/→ tab  ↑/↓ scroll  1-6 jump  q quit"
	if m.activeTab == tabTimeline {
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  s sort (" + dir + ")"
	}
	// show scroll % on the right
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuildTimelineViewport() {
	m.viewports[tabTimeline].SetContent(m.renderTab(tabTimeline))
	m.viewports[tabTimeline].GotoTop()
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabPerformance:
		return m.renderPerformance()
	case tabMovement:
		return m.renderMovement()
	case tabInteractions:
		return m.renderInteractions()
	case tabEvents:
		return m.renderEvents()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func (m *Model) renderSummary() string {
	s := m.report.Session
	var sb strings.Builder
	sb.WriteString(heading("Session Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Session:", s.ID)
	row("Platform:", s.Platform)
	row("Started:", s.StartTime.Format("2006-01-02 15:04:05 MST"))
	row("Ended:", s.EndTime.Format("2006-01-02 15:04:05 MST"))
	row("Duration:", s.Duration)
	row("VR used:", fmt.Sprintf("%v", s.VRUsed))

	score := fmt.Sprintf("%d/100", m.report.EngagementScore)
	if m.report.EngagementScore >= 60 {
		score = goodStyle.Render(score)
	}
	row("Engagement:", score)

	sb.WriteString("\n")
	sb.WriteString(heading("Counts"))
	row("Events:", fmt.Sprintf("%d", m.report.Summary.EventCount))
	row("Interactions:", fmt.Sprintf("%d", m.report.Summary.InteractionCount))
	row("Spatial tail:", fmt.Sprintf("%d", len(m.report.Snapshot.Spatial)))
	row("Perf tail:", fmt.Sprintf("%d", len(m.report.Snapshot.Performance)))

	if len(m.report.Recommendations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(heading("Recommendations"))
		for _, rec := range m.report.Recommendations {
			sb.WriteString(bullet(rec))
		}
	}
	return sb.String()
}

func (m *Model) renderPerformance() string {
	p := m.report.Summary.Performance
	var sb strings.Builder
	sb.WriteString(heading("Performance"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-18s", label)) + "  " + value + "\n")
	}
	fps := fmt.Sprintf("%.1f", p.AverageFPS)
	if p.AverageFPS > 0 && p.AverageFPS < 30 {
		fps = warnStyle.Render(fps)
	}
	row("Average FPS:", fps)
	row("Avg render time:", fmt.Sprintf("%.2fms", p.AverageRenderTime))
	row("Trend:", m.report.Summary.PerformanceTrend)

	warnings := fmt.Sprintf("%d", p.WarningCount)
	if p.WarningCount > 0 {
		warnings = warnStyle.Render(warnings)
	}
	row("Warnings:", warnings)

	samples := m.report.Snapshot.Performance
	if len(samples) > 0 {
		sb.WriteString("\n")
		sb.WriteString(heading(fmt.Sprintf("Recent Samples (%d)", len(samples))))
		start := len(samples) - 20
		if start < 0 {
			start = 0
		}
		for _, s := range samples[start:] {
			ts := timeStyle.Render(s.Timestamp.Format("15:04:05"))
			line := fmt.Sprintf("%s  %5.1f fps  %6.2fms", ts, s.FPS, s.RenderTimeMS)
			if s.VRMode {
				line += "  " + kindVRStyle.Render("[VR]")
			}
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

func (m *Model) renderMovement() string {
	var sb strings.Builder
	sb.WriteString(heading("Movement"))
	mm := m.report.Summary.Movement
	if mm == nil {
		sb.WriteString(dimStyle.Render("  (not enough spatial samples)") + "\n")
		return sb.String()
	}
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-18s", label)) + "  " + value + "\n")
	}
	row("Total distance:", fmt.Sprintf("%.3f", mm.TotalDistance))
	row("Avg velocity:", fmt.Sprintf("%.3f u/s", mm.AverageVelocity))
	row("Max velocity:", fmt.Sprintf("%.3f u/s", mm.MaxVelocity))
	row("Intensity:", mm.Intensity)
	row("Window:", fmt.Sprintf("%d samples", mm.SampleCount))
	return sb.String()
}

func (m *Model) renderInteractions() string {
	var sb strings.Builder
	ins := m.report.Snapshot.Interactions
	sb.WriteString(heading(fmt.Sprintf("Interactions (%d)", len(ins))))
	if len(ins) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}

	byType := m.report.Summary.Session.Interactions.ByType
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		sb.WriteString(bullet(fmt.Sprintf("%s × %d", t, byType[t])))
	}
	sb.WriteString("\n")

	for _, in := range ins {
		ts := timeStyle.Render(in.Timestamp.Format("15:04:05"))
		badge := kindInteractionStyle.Render("[" + strings.ToUpper(in.Type) + "]")
		line := fmt.Sprintf("  %s  %s  %s", ts, badge, in.Target)
		if in.VRMode {
			line += "  " + kindVRStyle.Render("[VR]")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (m *Model) renderEvents() string {
	var sb strings.Builder
	events := m.report.Snapshot.Events
	sb.WriteString(heading(fmt.Sprintf("Events (%d)", len(events))))
	if len(events) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, ev := range events {
		ts := timeStyle.Render(ev.Timestamp.Format("15:04:05"))
		name := string(ev.Type)
		switch ev.Type {
		case analytics.EventPerformanceWarning:
			name = kindWarnStyle.Render(name)
		case analytics.EventVRExperienceStart, analytics.EventVRExperienceEnd, analytics.EventVRModeChange:
			name = kindVRStyle.Render(name)
		case analytics.EventUserInteraction:
			name = kindInteractionStyle.Render(name)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s\n", ts, name))
	}
	return sb.String()
}

func (m *Model) renderTimeline() string {
	var sb strings.Builder

	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Timeline (%s)", dir)))

	events := make([]timelineEvent, len(m.timeline))
	copy(events, m.timeline)
	sort.SliceStable(events, func(i, j int) bool {
		if m.sortAsc {
			return events[i].ts.Before(events[j].ts)
		}
		return events[i].ts.After(events[j].ts)
	})

	if len(events) == 0 {
		sb.WriteString(dimStyle.Render("  (no events)") + "\n")
		return sb.String()
	}
	for _, e := range events {
		ts := timeStyle.Render(e.ts.Format("15:04:05"))
		var badge string
		switch e.kind {
		case kindInteraction:
			badge = kindInteractionStyle.Render("[" + string(e.kind) + "]")
		case kindVR:
			badge = kindVRStyle.Render("[" + string(e.kind) + "]")
		case kindWarn:
			badge = kindWarnStyle.Render("[" + string(e.kind) + "]")
		default:
			badge = dimStyle.Render("[" + string(e.kind) + "]")
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", ts, badge, e.text))
	}
	return sb.String()
}

// buildTimeline flattens the event log into dated timeline entries, skipping
// the high-volume periodic emissions.
func buildTimeline(r *report.Report) []timelineEvent {
	var tl []timelineEvent
	for _, ev := range r.Snapshot.Events {
		switch ev.Type {
		case analytics.EventSpatialTracking, analytics.EventPerformanceMetrics:
			continue
		case analytics.EventUserInteraction:
			target, _ := ev.Fields["target"].(string)
			typ, _ := ev.Fields["interaction_type"].(string)
			tl = append(tl, timelineEvent{ts: ev.Timestamp, kind: kindInteraction, text: typ + " " + target})
		case analytics.EventVRModeChange, analytics.EventVRExperienceStart, analytics.EventVRExperienceEnd:
			tl = append(tl, timelineEvent{ts: ev.Timestamp, kind: kindVR, text: string(ev.Type)})
		case analytics.EventPerformanceWarning:
			metric, _ := ev.Fields["metric"].(string)
			severity, _ := ev.Fields["severity"].(string)
			tl = append(tl, timelineEvent{ts: ev.Timestamp, kind: kindWarn, text: metric + " " + severity})
		default:
			tl = append(tl, timelineEvent{ts: ev.Timestamp, kind: kindOther, text: string(ev.Type)})
		}
	}
	return tl
}
