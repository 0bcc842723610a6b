package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/report"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View a session report file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		var parser report.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			parser = report.JSONParser{}
		default:
			parser = report.MarkdownParser{}
		}

		r, err := parser.Parse(data)
		if err != nil {
			return err
		}

		if plainOutput {
			printReport(r)
			return nil
		}
		return tui.Run(r, path)
	},
}

// printReport writes a plain-text summary to stdout.
func printReport(r *report.Report) {
	fmt.Println("## Summary")
	fmt.Printf("  Session:    %s\n", r.Session.ID)
	fmt.Printf("  Platform:   %s\n", r.Session.Platform)
	fmt.Printf("  Started:    %s\n", r.Session.StartTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  Ended:      %s\n", r.Session.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  Duration:   %s\n", r.Session.Duration)
	fmt.Printf("  VR used:    %v\n", r.Session.VRUsed)
	fmt.Printf("  Engagement: %d/100\n", r.EngagementScore)
	fmt.Println()

	fmt.Println("## Performance")
	fmt.Printf("  Average FPS:      %.1f\n", r.Summary.Performance.AverageFPS)
	fmt.Printf("  Avg render time:  %.2fms\n", r.Summary.Performance.AverageRenderTime)
	fmt.Printf("  Warnings:         %d\n", r.Summary.Performance.WarningCount)
	fmt.Printf("  Trend:            %s\n", r.Summary.PerformanceTrend)
	fmt.Println()

	fmt.Println("## Movement")
	if r.Summary.Movement == nil {
		fmt.Println("  (not enough spatial samples)")
	} else {
		m := r.Summary.Movement
		fmt.Printf("  Total distance: %.3f\n", m.TotalDistance)
		fmt.Printf("  Avg velocity:   %.3f\n", m.AverageVelocity)
		fmt.Printf("  Max velocity:   %.3f\n", m.MaxVelocity)
		fmt.Printf("  Intensity:      %s\n", m.Intensity)
	}
	fmt.Println()

	fmt.Println("## Interactions")
	if len(r.Summary.InteractionTypes) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, t := range r.Summary.InteractionTypes {
			fmt.Printf("  %s × %d\n", t, r.Summary.Session.Interactions.ByType[t])
		}
	}
	fmt.Println()

	fmt.Println("## Recommendations")
	if len(r.Recommendations) == 0 {
		fmt.Println("  (none)")
	} else {
		for _, rec := range r.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
	fmt.Println()
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
