package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillweaver/skillweaver/internal/config"
	"github.com/skillweaver/skillweaver/internal/container"
	"github.com/skillweaver/skillweaver/internal/hotreload"
	"github.com/skillweaver/skillweaver/internal/registry"
)

var capabilitiesCmd = &cobra.Command{
	Use:     "capabilities",
	Aliases: []string{"caps"},
	Short:   "Manage installed capabilities",
}

var capsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed capabilities",
	RunE:  runCapsList,
}

var capsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the full instructions of a capability",
	Args:  cobra.ExactArgs(1),
	RunE:  runCapsShow,
}

var capsCreateCmd = &cobra.Command{
	Use:   "create <description>",
	Short: "Generate, install, and register a new capability",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCapsCreate,
}

func init() {
	capabilitiesCmd.AddCommand(capsListCmd)
	capabilitiesCmd.AddCommand(capsShowCmd)
	capabilitiesCmd.AddCommand(capsCreateCmd)
}

// loadRegistry builds just the registry; list/show never need a provider.
func loadRegistry() (*registry.Registry, error) {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return registry.New(cfg.StorePath(), cfg.BuiltinStorePath()), nil
}

func runCapsList(_ *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	caps := reg.List()
	if len(caps) == 0 {
		fmt.Println("No capabilities installed. Create one with: skillweaver capabilities create \"...\"")
		return nil
	}
	for _, c := range caps {
		marker := " "
		if c.Executable() {
			marker = "*"
		}
		fmt.Printf("%s %-28s %s\n", marker, c.Name, c.Description)
	}
	fmt.Println("\n* = has its own handler")
	return nil
}

func runCapsShow(_ *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	desc, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("name:        %s\n", desc.Name)
	fmt.Printf("description: %s\n", desc.Description)
	fmt.Printf("directory:   %s\n\n", desc.Dir)
	fmt.Println(desc.Instructions)
	return nil
}

func runCapsCreate(_ *cobra.Command, args []string) error {
	description := ""
	for i, a := range args {
		if i > 0 {
			description += " "
		}
		description += a
	}

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	services, err := container.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("%s Building capability from: %q\n", logo, description)
	result, err := services.Factory().Create(ctx, description)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created %s at %s\n", result.Name, result.Dir)
	if result.Registered == hotreload.Conflict {
		fmt.Println("! A tool with this identifier already existed; the files are installed but not registered.")
	} else {
		fmt.Println("✓ Tool registered and live")
	}
	if result.SelfTest.Passed {
		fmt.Printf("✓ Routing self-test passed: %s\n", result.SelfTest.Detail)
	} else {
		fmt.Printf("! Routing self-test: %s\n", result.SelfTest.Detail)
		fmt.Println("  (advisory only — consider sharpening the description in CAPABILITY.md)")
	}
	fmt.Printf("  tokens: %d in / %d out\n", result.Usage.Input, result.Usage.Output)
	return nil
}
