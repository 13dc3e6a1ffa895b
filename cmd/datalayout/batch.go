package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"datalayout/internal/driver"
	"datalayout/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <file>",
	Short: "Evaluate a file of type expressions",
	Long: `Batch reads one type expression per line (blank lines and #-comments are
skipped), evaluates them concurrently and reports the results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	addTargetFlags(batchCmd)
	batchCmd.Flags().Int("jobs", 0, "max concurrent evaluations (0 = GOMAXPROCS)")
	batchCmd.Flags().String("format", "text", "output format (text|json)")
	batchCmd.Flags().String("out", "", "write results to a msgpack file instead of stdout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	exprs, err := readExprFile(args[0])
	if err != nil {
		return err
	}

	e, _, cleanup, err := resolveEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := driver.Batch(cmd.Context(), e, exprs, driver.BatchOptions{Jobs: jobs})
	if err != nil {
		return err
	}
	payload := driver.NewExportPayload(e.String(), results)

	if outPath != "" {
		if err := driver.WriteMsgpack(outPath, payload); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d results to %s\n", len(results), outPath)
		}
		return nil
	}

	switch format {
	case "json":
		return driver.WriteJSON(cmd.OutOrStdout(), payload)
	case "text":
		out := cmd.OutOrStdout()
		failures := 0
		for _, res := range results {
			if res.Err != "" {
				failures++
				fmt.Fprintf(out, "%s: error: %s\n", res.Expr, res.Err)
				continue
			}
			fmt.Fprintf(out, "%s: size=%s abi=%d pref=%d\n",
				res.Type, ui.FormatBytes(res.SizeBytes), res.ABIAlign, res.PrefAlign)
		}
		if failures > 0 {
			return fmt.Errorf("%d of %d expressions failed", failures, len(results))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// readExprFile returns the non-blank, non-comment lines of the file.
func readExprFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close %s: %v\n", path, closeErr)
		}
	}()

	var exprs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		exprs = append(exprs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return exprs, nil
}
