package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillweaver/skillweaver/internal/config"
	"github.com/skillweaver/skillweaver/internal/container"
	"github.com/skillweaver/skillweaver/internal/dispatch"
	"github.com/skillweaver/skillweaver/internal/schema"
)

var (
	chatMessage string
	chatTrace   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the dispatcher",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().BoolVar(&chatTrace, "trace", false, "Print the tool trace and token usage after each reply")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	services, err := container.New(cfg)
	if err != nil {
		return err
	}

	if chatMessage != "" {
		return runSingleMessage(services.Engine(), chatMessage)
	}
	return runInteractive(services.Engine())
}

// runSingleMessage dispatches one query and prints the response.
func runSingleMessage(engine *dispatch.Engine, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	result, err := engine.Dispatch(ctx, message, progressPrinter)
	if err != nil && !errors.Is(err, dispatch.ErrTurnBudgetExceeded) {
		return err
	}
	printResult(result, err)
	return nil
}

// runInteractive starts the REPL: reads lines from stdin and dispatches each
// one, waiting for the reply before prompting again.
func runInteractive(engine *dispatch.Engine) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		fmt.Println("\nbye")
		os.Exit(0)
	}()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if exitCommands[line] {
			return nil
		}

		result, err := engine.Dispatch(ctx, line, progressPrinter)
		if err != nil && !errors.Is(err, dispatch.ErrTurnBudgetExceeded) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printResult(result, err)
	}
}

func progressPrinter(progress string) {
	fmt.Fprintf(os.Stderr, "  ↳ %s\n", progress)
}

func printResult(result schema.DispatchResult, dispatchErr error) {
	if dispatchErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", dispatchErr)
	}
	if result.Response != "" {
		fmt.Println(result.Response)
	}
	if chatTrace {
		if result.SelectedCapability != "" {
			fmt.Fprintf(os.Stderr, "  capability: %s\n", result.SelectedCapability)
		}
		for _, entry := range result.Trace {
			fmt.Fprintf(os.Stderr, "  tool: %s\n", entry.Tool)
		}
		fmt.Fprintf(os.Stderr, "  turns: %d, tokens: %d in / %d out\n",
			result.Turns, result.Usage.Input, result.Usage.Output)
	}
}
