package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(r *Report) ([]byte, error) {
	// Marshal the report to JSON and base64-encode it for the embedded
	// payload.
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	// Sentinel and embedded payload.
	sb.WriteString("<!-- vra-report-version: 1 -->\n")
	fmt.Fprintf(&sb, "<!-- vra-data: %s -->\n\n", encoded)

	// Title.
	fmt.Fprintf(&sb, "# Session Report — %s — %s\n\n",
		r.Session.Platform,
		r.Session.EndTime.Format("2006-01-02 15:04:05 MST"),
	)

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Session: %s\n", r.Session.ID)
	fmt.Fprintf(&sb, "- Duration: %s\n", r.Session.Duration)
	fmt.Fprintf(&sb, "- Engagement score: %d/100\n", r.EngagementScore)
	fmt.Fprintf(&sb, "- Events: %d\n", r.Summary.EventCount)
	fmt.Fprintf(&sb, "- Interactions: %d\n", r.Summary.InteractionCount)
	fmt.Fprintf(&sb, "- VR used: %v\n", r.Session.VRUsed)
	sb.WriteString("\n")

	// ## Performance
	sb.WriteString("## Performance\n\n")
	fmt.Fprintf(&sb, "- Average FPS: %.1f\n", r.Summary.Performance.AverageFPS)
	fmt.Fprintf(&sb, "- Average render time: %.2fms\n", r.Summary.Performance.AverageRenderTime)
	fmt.Fprintf(&sb, "- Warnings: %d\n", r.Summary.Performance.WarningCount)
	fmt.Fprintf(&sb, "- Trend: %s\n", r.Summary.PerformanceTrend)
	sb.WriteString("\n")

	// ## Movement
	sb.WriteString("## Movement\n\n")
	if r.Summary.Movement == nil {
		sb.WriteString("_Not enough spatial samples._\n")
	} else {
		m := r.Summary.Movement
		fmt.Fprintf(&sb, "- Total distance: %.3f\n", m.TotalDistance)
		fmt.Fprintf(&sb, "- Average velocity: %.3f\n", m.AverageVelocity)
		fmt.Fprintf(&sb, "- Max velocity: %.3f\n", m.MaxVelocity)
		fmt.Fprintf(&sb, "- Intensity: %s\n", m.Intensity)
	}
	sb.WriteString("\n")

	// ## Interactions
	sb.WriteString("## Interactions\n\n")
	if len(r.Summary.InteractionTypes) == 0 {
		sb.WriteString("_No interactions recorded._\n")
	} else {
		sb.WriteString("| Type | Count |\n")
		sb.WriteString("|------|-------|\n")
		for _, t := range r.Summary.InteractionTypes {
			fmt.Fprintf(&sb, "| %s | %d |\n", t, r.Summary.Session.Interactions.ByType[t])
		}
	}
	sb.WriteString("\n")

	// ## Recommendations
	sb.WriteString("## Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		sb.WriteString("_None._\n")
	} else {
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}
