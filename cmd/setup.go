package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure vra (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup works before any config
	// exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(false)
	},
}

// runSetup runs the interactive setup wizard and writes the global config.
// If firstRun is true, a welcome message is shown.
func runSetup(firstRun bool) error {
	if firstRun {
		fmt.Println()
		fmt.Println("  Welcome to vra! Let's get you set up.")
	}

	// Load the existing global config as defaults if present.
	existing := config.Defaults()
	if globalConfigExists() {
		if c, err := config.LoadGlobal(); err == nil && c != nil {
			existing = *c
		}
	}

	r := bufio.NewReader(os.Stdin)
	ask := func(prompt, defaultVal string) (string, error) {
		fmt.Printf("  %s [%s]: ", prompt, defaultVal)
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	var err error
	newCfg := existing
	if newCfg.AssetsDir, err = ask("Static assets directory", existing.AssetsDir); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if newCfg.HTTPAddr, err = ask("Server listen address", existing.HTTPAddr); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if newCfg.OutputDir, err = ask("Report output directory", existing.OutputDir); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	format, err := ask("Default report format (markdown/json)", existing.DefaultFormat)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if format != "markdown" && format != "json" {
		fmt.Printf("  Unknown format %q, keeping %q.\n", format, existing.DefaultFormat)
		format = existing.DefaultFormat
	}
	newCfg.DefaultFormat = format

	if err := config.SaveGlobal(newCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println("  ✓ Config saved.")
	fmt.Println("  Setup complete. Run 'vra serve' to start collecting, or 'vra demo' for a synthetic session.")
	fmt.Println()
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
