package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/buswriter/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config with defaults")
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	cfg := config.DefaultConfig()
	if _, err := os.Stat(cfgPath); err == nil {
		if !initForce {
			// Refresh: keep existing values, add any new defaults.
			existing, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = *existing
		}
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Pick a publisher kind in %s (bus, websocket, redis, slack, fanout)\n", cfgPath)
	fmt.Println("  2. Start a local sink:  buswriter sink")
	fmt.Println("  3. Pipe messages:       tail -f app.log | buswriter pipe")
	return nil
}
