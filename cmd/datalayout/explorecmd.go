package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datalayout/internal/typeexpr"
	"datalayout/internal/types"
	"datalayout/internal/ui"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [flags] <struct-type-expr>",
	Short: "Browse a struct layout interactively",
	Long:  `Explore opens an interactive table of a struct's fields, offsets and padding`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExplore,
}

func init() {
	addTargetFlags(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	e, in, cleanup, err := resolveEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := typeexpr.Parse(args[0], in)
	if err != nil {
		return err
	}
	if in.Kind(id) != types.KindStruct {
		return fmt.Errorf("%q is not a struct type", args[0])
	}

	rows, sl, err := ui.BuildFieldRows(e, id)
	if err != nil {
		return err
	}

	// Fall back to the static report when not attached to a terminal.
	if !isTerminal(os.Stdout) {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderStruct(typeexpr.Format(in, id), rows, sl))
		return nil
	}
	return ui.Explore(typeexpr.Format(in, id), rows, sl)
}
