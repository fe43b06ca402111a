package main

import (
	"os"

	"github.com/TinsPHP/tins-symbols-sub001/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tins [subcommand]",
	Short:        "tins\n constraint-based type inference for PHP functions",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.SolveCmd)
}
