package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live session status of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := statusAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(summaryURL(addr))
		if err != nil {
			return fmt.Errorf("no server reachable at %s: %w", addr, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %s", resp.Status)
		}

		var body struct {
			Summary         analytics.Summary `json:"summary"`
			EngagementScore int               `json:"engagement_score"`
			Subscribers     int               `json:"subscribers"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("malformed summary response: %w", err)
		}

		s := body.Summary
		cmd.Printf("Session: %s\n", s.Session.ID)
		cmd.Printf("Duration: %s\n", s.Duration.Round(time.Second).String())
		cmd.Printf("Events: %d\n", s.EventCount)
		cmd.Printf("Interactions: %d\n", s.InteractionCount)
		cmd.Printf("Average FPS: %.1f (%s)\n", s.AverageFPS, s.PerformanceTrend)
		cmd.Printf("VR session: %v\n", s.VRSessionStarted)
		cmd.Printf("Engagement: %d/100\n", body.EngagementScore)
		cmd.Printf("Subscribers: %d\n", body.Subscribers)
		return nil
	},
}

// summaryURL turns a listen address like ":8090" into a reachable URL.
func summaryURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/") + "/api/summary"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/api/summary"
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "server address (overrides config)")
	rootCmd.AddCommand(statusCmd)
}
