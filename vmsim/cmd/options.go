package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

const (
	flagFrames       = "frames"
	flagPageSize     = "page-size"
	flagPolicy       = "policy"
	flagAllocator    = "allocator"
	flagAddressSpace = "address-space"
	flagSegmentSize  = "segment-size"
	flagDiskLatency  = "disk-latency"
	flagTLBEntries   = "tlb-entries"
	flagEventLog     = "event-log"
	flagRecordDB     = "record-db"
)

// addLayoutFlags registers the options shared by every command that
// translates addresses.
func addLayoutFlags(flags *pflag.FlagSet) {
	d := config.Defaults()

	flags.Uint64(flagPageSize, d.PageSize, "page size in bytes")
	flags.String(flagAllocator, string(d.AllocatorAlgo),
		"segment allocator: first_fit, best_fit, or worst_fit")
	flags.Uint64(flagAddressSpace, d.AddressSpaceSize,
		"size of the address space in bytes")
	flags.Uint64(flagSegmentSize, d.DefaultSegmentSize,
		"size of the segment created for every process")
}

// addRunFlags registers the options of a replay.
func addRunFlags(flags *pflag.FlagSet) {
	d := config.Defaults()

	addLayoutFlags(flags)
	flags.Int(flagFrames, d.FramesCount, "number of physical frames")
	flags.String(flagPolicy, string(d.Policy),
		"replacement policy: FIFO, LRU, or CLOCK")
	flags.Duration(flagDiskLatency, d.DiskLatency,
		"simulated time to load a page")
	flags.Int(flagTLBEntries, d.TLBEntries,
		"number of TLB entries, 0 disables the TLB")
	flags.String(flagEventLog, d.EventLog,
		"JSON-lines event log, empty disables it")
	flags.String(flagRecordDB, d.RecordDB,
		"SQLite file that records the events, empty disables it")
}

// loadSpec reads the environment and applies the flags the user set.
func loadSpec(cmd *cobra.Command) (config.Spec, error) {
	envFiles, err := cmd.Flags().GetStringSlice("env")
	if err != nil {
		return config.Spec{}, err
	}

	spec, err := config.LoadEnv(envFiles...)
	if err != nil {
		return config.Spec{}, err
	}

	spec, err = applyFlags(spec, cmd.Flags())
	if err != nil {
		return config.Spec{}, err
	}

	return spec, nil
}

func applyFlags(spec config.Spec, flags *pflag.FlagSet) (config.Spec, error) {
	var err error

	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}

		switch f.Name {
		case flagFrames:
			spec.FramesCount, err = flags.GetInt(f.Name)
		case flagPageSize:
			spec.PageSize, err = flags.GetUint64(f.Name)
		case flagPolicy:
			spec.Policy, err = replacement.ParsePolicy(f.Value.String())
		case flagAllocator:
			spec.AllocatorAlgo, err = allocator.ParseStrategy(f.Value.String())
		case flagAddressSpace:
			spec.AddressSpaceSize, err = flags.GetUint64(f.Name)
		case flagSegmentSize:
			spec.DefaultSegmentSize, err = flags.GetUint64(f.Name)
		case flagDiskLatency:
			spec.DiskLatency, err = flags.GetDuration(f.Name)
		case flagTLBEntries:
			spec.TLBEntries, err = flags.GetInt(f.Name)
		case flagEventLog:
			spec.EventLog = f.Value.String()
		case flagRecordDB:
			spec.RecordDB = f.Value.String()
		}
	})

	return spec, err
}
