package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/analytics"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/relay"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/server"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/session"
	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/store"
)

var (
	serveAddr    string
	serveAssets  string
	serveNoSink  bool
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo assets and collect session telemetry over the socket relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.New()
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if serveVerbose {
			log.SetLevel(logrus.DebugLevel)
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		assets := serveAssets
		if assets == "" {
			assets = cfg.AssetsDir
		}
		if _, err := os.Stat(assets); err != nil {
			return fmt.Errorf("assets directory %q not usable: %w", assets, err)
		}

		sess := session.New(session.DeviceInfo{Platform: "Unknown"})

		var sink analytics.EventSink
		if !serveNoSink && !cfg.SinkDisabled {
			diskSink, err := store.NewDiskSink(sess.ID)
			if err != nil {
				return fmt.Errorf("opening event sink: %w", err)
			}
			sink = diskSink
		}

		collector := analytics.New(sess, sink, analytics.WithLogger(log))
		hub := relay.NewHub(collector, log)
		hub.LogEvent(analytics.EventSessionStart, map[string]any{
			"source": "serve",
		})

		srv := server.New(addr, assets, hub, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithField("session_id", sess.ID).Info("session started")
		err := srv.Run(ctx)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		hub.LogEvent(analytics.EventSessionEnd, map[string]any{
			"reason": "shutdown",
		})
		summary := hub.Summary()
		log.WithFields(logrus.Fields{
			"session_id":   sess.ID,
			"duration":     summary.Duration.String(),
			"events":       summary.EventCount,
			"interactions": summary.InteractionCount,
			"engagement":   hub.EngagementScore(),
		}).Info("session ended")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveAssets, "assets", "", "static assets directory (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoSink, "no-sink", false, "do not persist important events to disk")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd)
}
