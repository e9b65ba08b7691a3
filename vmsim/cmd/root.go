// Package cmd provides the command-line interface for vmsim.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates segmentation and demand paging.",
	Long: `vmsim replays memory access traces through segmentation, a TLB, ` +
		`and demand paging, records every event, and compares page ` +
		`replacement policies. Options are read from .env files and VMSIM_* ` +
		`variables; flags take precedence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env", nil,
		"dotenv files to read the options from (default .env if present)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
