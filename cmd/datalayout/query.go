package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalayout/internal/driver"
	"datalayout/internal/ui"
)

var queryCmd = &cobra.Command{
	Use:   "query [flags] <type-expr>...",
	Short: "Show size and alignment of types",
	Long:  `Query answers the size, bit size, ABI alignment and preferred alignment of each type expression`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	addTargetFlags(queryCmd)
	queryCmd.Flags().String("format", "text", "output format (text|json)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	e, _, cleanup, err := resolveEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	results := make([]driver.QueryResult, len(args))
	for i, expr := range args {
		results[i] = driver.EvaluateExpr(e, expr)
	}

	switch format {
	case "json":
		return driver.WriteJSON(cmd.OutOrStdout(), driver.NewExportPayload(e.String(), results))
	case "text":
		out := cmd.OutOrStdout()
		failed := false
		for _, res := range results {
			if res.Err != "" {
				failed = true
				fmt.Fprintf(out, "%s: error: %s\n", res.Expr, res.Err)
				continue
			}
			fmt.Fprintf(out, "%s: size=%s (%d bits) abi=%d pref=%d\n",
				res.Type, ui.FormatBytes(res.SizeBytes), res.SizeBits, res.ABIAlign, res.PrefAlign)
		}
		if failed {
			return fmt.Errorf("some queries failed")
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
