package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/analysis"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <trace.csv>",
	Short: "Compare FIFO, LRU, CLOCK, and optimal faults over frame counts.",
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

		pages, err := analysis.BuildGlobalTrace(records, segmentation.Spec{
			AddressSpaceSize: spec.AddressSpaceSize,
			PageSize:         spec.PageSize,
			Strategy:         spec.AllocatorAlgo,
		}, spec.DefaultSegmentSize)
		if err != nil {
			return err
		}

		minFrames, _ := cmd.Flags().GetInt("min")
		maxFrames, _ := cmd.Flags().GetInt("max")

		rows, err := analysis.Sweep(cmd.Context(), pages, minFrames, maxFrames)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if err := analysis.WriteCSVFile(out, rows); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Wrote %s\n", out)

		if spec.RecordDB != "" {
			recorder := datarecording.New(spec.RecordDB)
			analysis.RecordSweep(recorder, rows)

			return recorder.Close()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	addLayoutFlags(sweepCmd.Flags())
	sweepCmd.Flags().String(flagRecordDB, "",
		"SQLite file that also receives the rows")
	sweepCmd.Flags().Int("min", 2, "smallest number of frames")
	sweepCmd.Flags().Int("max", 8, "largest number of frames")
	sweepCmd.Flags().StringP("out", "o", "analytics.csv", "output CSV file")
}
