package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datalayout/internal/layout"
	"datalayout/internal/trace"
	"datalayout/internal/types"
)

// addTargetFlags registers the flags every layout-consuming command
// shares: the target selection pair and the strict-parse switch.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "target triple to look up in the registry")
	cmd.Flags().StringP("layout", "l", "", "explicit data layout string (overrides --target)")
	cmd.Flags().Bool("strict", false, "reject layout strings with unknown or malformed tokens")
	cmd.Flags().String("targets-file", "", "path to a targets.toml registry (default: walk up from cwd)")
}

// resolveLayoutString picks the layout string for a command invocation:
// --layout wins, then --target via the registry, then the seeded default.
func resolveLayoutString(cmd *cobra.Command) (string, error) {
	layoutStr, err := cmd.Flags().GetString("layout")
	if err != nil {
		return "", fmt.Errorf("failed to get layout flag: %w", err)
	}
	if layoutStr != "" {
		return layoutStr, nil
	}

	target, err := cmd.Flags().GetString("target")
	if err != nil {
		return "", fmt.Errorf("failed to get target flag: %w", err)
	}
	if target == "" {
		return "", nil // seeded defaults
	}

	registryPath, err := cmd.Flags().GetString("targets-file")
	if err != nil {
		return "", fmt.Errorf("failed to get targets-file flag: %w", err)
	}
	registry, err := loadTargetRegistry(registryPath)
	if err != nil {
		return "", err
	}
	if spec, ok := registry[target]; ok {
		return spec, nil
	}
	if spec, ok := layout.Preset(target); ok {
		return spec, nil
	}
	return "", fmt.Errorf("unknown target %q (see \"datalayout targets\")", target)
}

// resolveEngine builds the layout engine and its interner from the
// command's flags. The returned cleanup flushes the tracer.
func resolveEngine(cmd *cobra.Command) (*layout.Engine, *types.Interner, func(), error) {
	applyColorFlag(cmd)

	spec, err := resolveLayoutString(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to get strict flag: %w", err)
	}

	in := types.NewInterner()
	if strict {
		e, err := layout.ParseStrict(spec, in, layout.WithTracer(tracer))
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		return e, in, cleanup, nil
	}
	return layout.Parse(spec, in, layout.WithTracer(tracer)), in, cleanup, nil
}

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (trace.Tracer, func(), error) {
	root := cmd.Root()

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	output, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}
	if level == trace.LevelOff {
		return trace.Nop, func() {}, nil
	}

	tracer, err := trace.New(trace.Config{Level: level, OutputPath: output})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}

// applyColorFlag forces color on or off per the persistent --color flag.
func applyColorFlag(cmd *cobra.Command) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
}
