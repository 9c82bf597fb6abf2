// Command validate provides a small CLI that lints message catalog JSON
// files, by default in ../configs. It checks:
//   - JSON structure, with unknown sections and message keys reported
//   - Required messages and template syntax (via the server's own loader)
//   - Placeholders the server relies on, e.g. the coordinates in "shot"
//   - Shot results and ship names that players could confuse
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
)

// requiredFields lists, per message, the template fields a catalog must use
// so players get the information the message exists for
var requiredFields = map[config.Key][]string{
	config.KeyWelcome:    {".Player"},
	config.KeyShipPlaced: {".Ship", ".X", ".Y"},
	config.KeyShot:       {".X", ".Y", ".Result"},
	config.KeyVictory:    {".Name"},
	config.KeyDefeat:     {".Name"},
	config.KeyPlayerLeft: {".Player"},
}

var sections = []string{"messages", "errors", "results", "ships"}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateCatalog loads and lints a single catalog file
func validateCatalog(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	sources := checkStructure(raw, &result)

	catalog, err := config.Parse(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("Catalog %q loads", catalog.Name)

	checkPlaceholders(sources, &result)
	checkDistinct("shot results", []string{catalog.Results.Miss, catalog.Results.Hit, catalog.Results.Sunk}, &result)
	checkDistinct("ship names", []string{catalog.Ships.Submarine, catalog.Ships.Frigate, catalog.Ships.Destroyer}, &result)

	return result
}

// checkStructure reports unknown sections and keys, and returns the raw
// template text of every known message
func checkStructure(raw map[string]json.RawMessage, result *ValidationResult) map[config.Key]string {
	known := make(map[string]bool)
	for _, k := range config.Keys() {
		known[string(k)] = true
	}

	var unknownSections []string
	for name := range raw {
		if name == "name" || name == "description" || contains(sections, name) {
			continue
		}
		unknownSections = append(unknownSections, name)
	}
	if len(unknownSections) > 0 {
		sort.Strings(unknownSections)
		result.fail("Unknown sections: %s", strings.Join(unknownSections, ", "))
	}

	sources := make(map[config.Key]string)
	for _, section := range []string{"messages", "errors"} {
		body, ok := raw[section]
		if !ok {
			continue
		}
		var entries map[string]string
		if err := json.Unmarshal(body, &entries); err != nil {
			result.fail("Section %q must map message keys to strings: %v", section, err)
			continue
		}
		var unknown []string
		for key, text := range entries {
			if !known[key] {
				unknown = append(unknown, key)
				continue
			}
			sources[config.Key(key)] = text
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			result.fail("Unknown %s keys: %s", section, strings.Join(unknown, ", "))
		}
	}
	return sources
}

// checkPlaceholders makes sure messages carry the fields they exist for
func checkPlaceholders(sources map[config.Key]string, result *ValidationResult) {
	ok := true
	for key, fields := range requiredFields {
		for _, field := range fields {
			if !strings.Contains(sources[key], field) {
				result.fail("Message %q should use {{%s}}", key, field)
				ok = false
			}
		}
	}
	if ok {
		result.info("Required placeholders present")
	}
}

// checkDistinct fails when two display words are equal ignoring case
func checkDistinct(what string, words []string, result *ValidationResult) {
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		norm := strings.ToLower(strings.TrimSpace(w))
		if seen[norm] {
			result.fail("Duplicate %s: %q", what, w)
			return
		}
		seen[norm] = true
	}
	result.info("Distinct %s", what)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// newApp builds the validate command. The catalog directory defaults to
// ../configs and can be given as the only argument.
func newApp() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "lint message catalog JSON files",
		ArgsUsage: "[catalog-dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "directory holding *.json catalogs",
				Sources: cli.EnvVars("NAVAL_CATALOG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			return validateDir(cmd.Root().Writer, dir)
		},
	}
}

// validateDir validates every *.json file in dir, printing a concise report.
// It fails if there are no catalogs or any of them is invalid.
func validateDir(w io.Writer, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("finding catalog files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no catalog files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateCatalog(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(w, "❌ Some catalogs have errors")
		return errors.New("some catalogs have errors")
	}
	fmt.Fprintln(w, "✅ All catalogs are valid!")
	return nil
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
