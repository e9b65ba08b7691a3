package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run <trace.csv>",
	Short: "Replay a trace and record its events.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := loadSpec(cmd)
		if err != nil {
			return err
		}

		records, err := trace.ReadFile(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		builder := simulation.MakeBuilder().WithSpec(spec)

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			builder = builder.WithLogger(log.New(os.Stderr, "", 0))
		}

		monitor, err := startMonitor(cmd)
		if err != nil {
			return err
		}

		if monitor != nil {
			builder = builder.WithMonitor(monitor)
		}

		s, err := builder.Build()
		if err != nil {
			return err
		}

		summary, err := s.Run(ctx, records)
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			return err
		}

		printSummary(cmd, summary)

		if monitor != nil {
			fmt.Fprintln(os.Stderr, "Replay done. Press Ctrl+C to stop the monitor.")
			<-ctx.Done()

			return monitor.Shutdown(context.Background())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	addRunFlags(runCmd.Flags())
	runCmd.Flags().BoolP("verbose", "v", false, "print every event")
	runCmd.Flags().Bool("monitor", false, "serve the run on a web page")
	runCmd.Flags().Int("port", 0, "port of the monitor, random if 0")
}

func startMonitor(cmd *cobra.Command) (*monitoring.Monitor, error) {
	on, _ := cmd.Flags().GetBool("monitor")
	if !on {
		return nil, nil
	}

	port, _ := cmd.Flags().GetInt("port")
	monitor := monitoring.NewMonitor().WithPortNumber(port)

	if _, err := monitor.StartServer(); err != nil {
		return nil, err
	}

	return monitor, nil
}

func printSummary(cmd *cobra.Command, s simulation.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "accesses:    %d\n", s.Accesses)
	fmt.Fprintf(out, "page faults: %d\n", s.Faults)
	fmt.Fprintf(out, "seg faults:  %d\n", s.SegFaults)
	fmt.Fprintf(out, "tlb hits:    %d\n", s.TLBHits)
	fmt.Fprintf(out, "tlb misses:  %d\n", s.TLBMisses)
	fmt.Fprintf(out, "evictions:   %d\n", s.Evictions)
	fmt.Fprintf(out, "writebacks:  %d\n", s.Writebacks)
	fmt.Fprintf(out, "frames:      %d\n", s.Frames)
}
