package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalayout/internal/driver"
	"datalayout/internal/typeexpr"
	"datalayout/internal/types"
	"datalayout/internal/ui"
)

var structCmd = &cobra.Command{
	Use:   "struct [flags] <struct-type-expr>",
	Short: "Show the field layout of a struct type",
	Long:  `Struct computes field offsets, total size and alignment of a struct type, e.g. "{i8, i64, i8}"`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStruct,
}

func init() {
	addTargetFlags(structCmd)
	structCmd.Flags().String("format", "text", "output format (text|json)")
}

func runStruct(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

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

	switch format {
	case "json":
		res := driver.Evaluate(e, args[0], id)
		return driver.WriteJSON(cmd.OutOrStdout(), driver.NewExportPayload(e.String(), []driver.QueryResult{res}))
	case "text":
		rows, sl, err := ui.BuildFieldRows(e, id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderStruct(typeexpr.Format(in, id), rows, sl))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
