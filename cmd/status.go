package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillweaver/skillweaver/internal/config"
	"github.com/skillweaver/skillweaver/internal/registry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show skillweaver status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s skillweaver Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:  %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	store := cfg.StorePath()
	_, storeErr := os.Stat(store)
	storeMark := "✗"
	if storeErr == nil {
		storeMark = "✓"
	}
	fmt.Printf("Store:   %s %s\n", store, storeMark)
	fmt.Printf("Model:   %s\n", cfg.Agents.Defaults.Model)
	fmt.Printf("Gateway: %s\n\n", cfg.Gateway.Listen)

	reg := registry.New(store, cfg.BuiltinStorePath())
	caps := reg.List()
	fmt.Printf("Capabilities: %d\n", len(caps))
	for _, c := range caps {
		fmt.Printf("  %-28s %s\n", c.Name, c.Description)
	}

	match := cfg.MatchProvider(cfg.Agents.Defaults.Model)
	if match.Provider != nil && match.Provider.APIKey != "" {
		fmt.Printf("\nProvider: %s ✓\n", match.Name)
	} else {
		fmt.Printf("\nProvider: %s ✗ (no API key — run 'skillweaver onboard' or set the environment variable)\n", match.Name)
	}
	return nil
}
