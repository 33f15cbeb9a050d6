package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/buswriter/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved configuration",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	fmt.Println("buswriter status")
	fmt.Println()

	cfgMark := "✗ (using defaults)"
	if _, err := os.Stat(cfgPath); err == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:     %s %s\n", cfgPath, cfgMark)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Threshold:  %d bytes\n", cfg.Writer.BufferThreshold)

	pc := cfg.Publisher
	kind := pc.Kind
	if kind == config.KindFanOut {
		kind += " → " + strings.Join(pc.Targets, ", ")
	}
	if pc.Compress {
		kind += " (snappy)"
	}
	fmt.Printf("Publisher:  %s\n", kind)

	schedule := cfg.Flush.Schedule
	if schedule == "" {
		schedule = "disabled"
	}
	fmt.Printf("Flush:      %s\n", schedule)
	fmt.Printf("Log:        %s/%s\n", cfg.Log.Level, cfg.Log.Format)
	return nil
}
