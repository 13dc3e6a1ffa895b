package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalayout/internal/layout"
	"datalayout/internal/types"
)

var canonCmd = &cobra.Command{
	Use:   "canon [flags] <layout-string>",
	Short: "Canonicalize a data layout string",
	Long:  `Canon parses a data layout string over the seeded defaults and prints the canonical form`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCanon,
}

func init() {
	canonCmd.Flags().Bool("strict", false, "reject layout strings with unknown or malformed tokens")
}

func runCanon(cmd *cobra.Command, args []string) error {
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}

	in := types.NewInterner()
	var e *layout.Engine
	if strict {
		e, err = layout.ParseStrict(args[0], in)
		if err != nil {
			return err
		}
	} else {
		e = layout.Parse(args[0], in)
	}

	fmt.Fprintln(cmd.OutOrStdout(), e.String())
	return nil
}
