package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"datalayout/internal/typeexpr"
	"datalayout/internal/types"
)

var offsetCmd = &cobra.Command{
	Use:   "offset [flags] <ptr-type-expr> <index>...",
	Short: "Compute an indexed byte offset",
	Long: `Offset walks a list of indices through the pointee of a pointer type and
prints the accumulated byte offset, the way a compute-address instruction would`,
	Args: cobra.MinimumNArgs(2),
	RunE: runOffset,
}

func init() {
	addTargetFlags(offsetCmd)
}

func runOffset(cmd *cobra.Command, args []string) error {
	e, in, cleanup, err := resolveEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := typeexpr.Parse(args[0], in)
	if err != nil {
		return err
	}
	if in.Kind(id) != types.KindPointer {
		return fmt.Errorf("%q is not a pointer type", args[0])
	}

	indices := make([]int64, len(args)-1)
	for i, arg := range args[1:] {
		idx, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("bad index %q: %w", arg, err)
		}
		indices[i] = idx
	}

	offset, err := e.IndexedOffset(id, indices)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", offset)
	return nil
}
