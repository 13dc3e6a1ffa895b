package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"datalayout/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "datalayout",
	Short: "Target data layout oracle",
	Long:  `datalayout answers size, alignment and offset questions about IR types for a chosen target machine`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(canonCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(structCmd)
	rootCmd.AddCommand(offsetCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace verbosity (off|query|detail|debug)")
	rootCmd.PersistentFlags().String("trace", "", "trace output path (\"-\" for stderr)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
