package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillweaver/skillweaver/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and the capability store",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	def := config.DefaultConfig()
	store := def.StorePath()
	if err := os.MkdirAll(store, 0o755); err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	fmt.Printf("✓ Capability store at %s\n", store)

	seedSampleCapabilities(store)

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Put an API key in %s (or export ANTHROPIC_API_KEY)\n", cfgPath)
	fmt.Println("  2. skillweaver chat -m \"what can you do?\"")
	fmt.Println("  3. skillweaver capabilities create \"summarise CSV files\"")
	return nil
}

// seedSampleCapabilities installs the bundled samples into an empty store so
// a fresh install has something to dispatch to. Existing directories are
// left alone.
func seedSampleCapabilities(store string) {
	samples := map[string]map[string]string{
		"web-page-scraper": {
			"CAPABILITY.md": webPageScraperDoc,
		},
		"word-count": {
			"CAPABILITY.md":         wordCountDoc,
			"tool.yaml":             wordCountStub,
			"scripts/word_count.sh": wordCountScript,
		},
	}

	for name, files := range samples {
		dir := filepath.Join(store, name)
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		ok := true
		for rel, content := range files {
			path := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				ok = false
				break
			}
			mode := os.FileMode(0o644)
			if filepath.Ext(rel) == ".sh" {
				mode = 0o755
			}
			if err := os.WriteFile(path, []byte(content), mode); err != nil {
				ok = false
				break
			}
		}
		if ok {
			fmt.Printf("✓ Installed sample capability %q\n", name)
		}
	}
}

const webPageScraperDoc = `---
name: web-page-scraper
description: Fetches a web page and extracts its readable content. Use whenever the user provides a URL and wants its contents, a summary of it, or data extracted from it.
---

# Web Page Scraper

## Workflow
Step 1: Call web_fetch with the URL the user provided.
Step 2: If the fetch result is truncated, tell the user and work with what you have.
Step 3: Answer the user's question from the extracted content. Quote short passages rather than reproducing the whole page.

## Error Handling
| Error | Cause | User Message |
| invalid_url | malformed or non-http URL | Ask for a corrected URL |
| request_error | network failure or timeout | Report the site seems unreachable |
`

const wordCountDoc = `---
name: word-count
description: Counts words, lines, and characters in a piece of text. Use whenever the user asks how long a text is or wants word, line, or character counts.
---

# Word Count

## Workflow
Step 1: Call word_count_tool with the text in the "input" field.
Step 2: Report the counts from the result. Do not recount the text yourself.
`

const wordCountStub = `name: word_count_tool
description: Counts words, lines, and characters in the given text.
handler: scripts/word_count.sh
timeout: 10
parameters:
  type: object
  properties:
    input:
      type: string
      description: the text to count
  required:
    - input
`

const wordCountScript = `#!/bin/sh
# Reads {"input": "..."} from argv[1] and prints a result envelope.
input=$(printf '%s' "$1" | python3 -c 'import json,sys; print(json.load(sys.stdin)["input"])')
words=$(printf '%s' "$input" | wc -w | tr -d ' ')
lines=$(printf '%s\n' "$input" | wc -l | tr -d ' ')
chars=$(printf '%s' "$input" | wc -c | tr -d ' ')
printf '{"success": true, "result": "words: %s, lines: %s, characters: %s"}\n' "$words" "$lines" "$chars"
`
