package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/report"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/sim"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/store"
)

var (
	demoDuration time.Duration
	demoSeed     int64
	demoFormat   string
	demoNoSink   bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a synthetic headless session and write its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev := session.LocalProbe()
		sess := session.New(dev)

		var sink analytics.EventSink
		if !demoNoSink && !cfg.SinkDisabled {
			diskSink, err := store.NewDiskSink(sess.ID)
			if err != nil {
				return fmt.Errorf("opening event sink: %w", err)
			}
			sink = diskSink
		}

		driver := sim.NewDriver(demoSeed, demoDuration)
		// The collector follows the simulated clock so the replay runs
		// instantly.
		sess.StartTime = driver.Clock()
		log := logrus.New()
		log.SetLevel(logrus.WarnLevel)
		collector := analytics.New(sess, sink,
			analytics.WithClock(driver.Clock),
			analytics.WithLogger(log),
		)

		collector.LogEvent(analytics.EventSessionStart, map[string]any{
			"source": "demo",
			"seed":   demoSeed,
		})
		driver.Run(collector)
		endTime := driver.Clock()
		collector.LogEvent(analytics.EventSessionEnd, map[string]any{
			"reason": "demo_complete",
		})

		r := report.Build(collector, endTime)

		// Select renderer based on --format flag or config DefaultFormat.
		format := demoFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		var renderer report.Renderer
		ext := ".md"
		if format == "json" {
			renderer = report.JSONRenderer{}
			ext = ".json"
		} else {
			renderer = report.MarkdownRenderer{}
		}

		data, err := renderer.Render(r)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}

		filename := "vra-report-" + endTime.Format("2006-01-02T15-04-05") + ext
		outputDir := cfg.OutputDir
		if outputDir == "" {
			outputDir = "."
		}
		outputPath := filepath.Join(outputDir, filename)
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		fmt.Printf("Session %s complete.\n", sess.ID)
		fmt.Printf("  Duration:     %s\n", r.Session.Duration)
		fmt.Printf("  Events:       %d\n", r.Summary.EventCount)
		fmt.Printf("  Interactions: %d\n", r.Summary.InteractionCount)
		fmt.Printf("  Engagement:   %d/100\n", r.EngagementScore)
		fmt.Printf("Report: %s\n", outputPath)
		return nil
	},
}

func init() {
	demoCmd.Flags().DurationVar(&demoDuration, "duration", 5*time.Minute, "simulated session length")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", 1, "simulation seed")
	demoCmd.Flags().StringVar(&demoFormat, "format", "", "report format: markdown or json (overrides config)")
	demoCmd.Flags().BoolVar(&demoNoSink, "no-sink", false, "do not persist important events to disk")
	rootCmd.AddCommand(demoCmd)
}
