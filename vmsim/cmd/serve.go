package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve [events.log]",
	Short: "Browse a recorded event log.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "events.log"
		if len(args) > 0 {
			path = args[0]
		}

		clock, err := loadClock(path)
		if err != nil {
			return err
		}

		port, _ := cmd.Flags().GetInt("port")
		monitor := monitoring.NewMonitor().WithPortNumber(port)
		monitor.RegisterClock(clock)

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open the browser: %v\n", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		<-ctx.Done()

		return monitor.Shutdown(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "port of the monitor, random if 0")
	serveCmd.Flags().Bool("open", false, "open the monitor in a browser")
}

// loadClock replays a recorded log into a clock, keeping the recorded IDs
// and, as long as they increase, the recorded ticks.
func loadClock(path string) (*sim.EventClock, error) {
	events, err := tracing.ReadJSONLinesFile(path)
	if err != nil {
		return nil, err
	}

	clock := sim.NewEventClock()
	for _, e := range events {
		clock.Emit(e)
	}

	return clock, nil
}
