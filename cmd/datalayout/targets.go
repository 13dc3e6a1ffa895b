package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datalayout/internal/layout"
)

// targetsConfig is the schema of a targets.toml registry file:
//
//	[targets]
//	"my-dsp" = "e-p:16:16:16-i64:32:32"
type targetsConfig struct {
	Targets map[string]string `toml:"targets"`
}

// findTargetsToml walks up from startDir looking for a targets.toml.
func findTargetsToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "targets.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadTargetRegistry loads the TOML registry at path, or the nearest
// targets.toml when path is empty. A missing registry is not an error:
// the built-in presets still apply.
func loadTargetRegistry(path string) (map[string]string, error) {
	if path == "" {
		found, ok, err := findTargetsToml("")
		if err != nil || !ok {
			return nil, err
		}
		path = found
	}
	var cfg targetsConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("targets") {
		return nil, fmt.Errorf("%s: missing [targets]", path)
	}
	return cfg.Targets, nil
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List known target triples",
	Long:  `Targets lists the built-in target presets and any triples registered in a targets.toml file`,
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func init() {
	targetsCmd.Flags().String("targets-file", "", "path to a targets.toml registry (default: walk up from cwd)")
	targetsCmd.Flags().Bool("specs", false, "also print each target's layout string")
}

func runTargets(cmd *cobra.Command, args []string) error {
	applyColorFlag(cmd)

	registryPath, err := cmd.Flags().GetString("targets-file")
	if err != nil {
		return fmt.Errorf("failed to get targets-file flag: %w", err)
	}
	showSpecs, err := cmd.Flags().GetBool("specs")
	if err != nil {
		return fmt.Errorf("failed to get specs flag: %w", err)
	}

	registry, err := loadTargetRegistry(registryPath)
	if err != nil {
		return err
	}

	builtinTag := color.New(color.FgBlue).Sprint("builtin")
	fileTag := color.New(color.FgGreen).Sprint("registry")

	out := cmd.OutOrStdout()
	for _, name := range layout.PresetNames() {
		if _, overridden := registry[name]; overridden {
			continue
		}
		spec, _ := layout.Preset(name)
		printTarget(out, name, spec, builtinTag, showSpecs)
	}
	registered := make([]string, 0, len(registry))
	for name := range registry {
		registered = append(registered, name)
	}
	sort.Strings(registered)
	for _, name := range registered {
		printTarget(out, name, registry[name], fileTag, showSpecs)
	}
	return nil
}

func printTarget(out io.Writer, name, spec, tag string, showSpecs bool) {
	if showSpecs {
		fmt.Fprintf(out, "%-24s %s  %s\n", name, tag, spec)
		return
	}
	fmt.Fprintf(out, "%-24s %s\n", name, tag)
}
