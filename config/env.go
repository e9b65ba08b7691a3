package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Environment variables recognized by LoadEnv.
const (
	EnvFramesCount        = "VMSIM_FRAMES_COUNT"
	EnvPageSize           = "VMSIM_PAGE_SIZE"
	EnvPolicy             = "VMSIM_POLICY"
	EnvAllocatorAlgo      = "VMSIM_ALLOCATOR_ALGO"
	EnvAddressSpaceSize   = "VMSIM_ADDRESS_SPACE_SIZE"
	EnvDefaultSegmentSize = "VMSIM_DEFAULT_SEGMENT_SIZE"
	EnvDiskLatency        = "VMSIM_DISK_LATENCY"
	EnvTLBEntries         = "VMSIM_TLB_ENTRIES"
	EnvEventLog           = "VMSIM_EVENT_LOG"
	EnvRecordDB           = "VMSIM_RECORD_DB"
)

// LoadEnv returns the defaults overridden by the VMSIM_* variables. The
// variables are read from the given dotenv files, or from .env if it exists
// and no file is given, and then from the process environment, which takes
// precedence.
func LoadEnv(paths ...string) (Spec, error) {
	fileVars, err := readDotEnv(paths)
	if err != nil {
		return Spec{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileVars[key]

		return v, ok
	}

	return Apply(Defaults(), lookup)
}

func readDotEnv(paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}

		paths = []string{".env"}
	}

	vars, err := godotenv.Read(paths...)
	if err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	return vars, nil
}

// Apply overrides the fields of s with the variables that lookup finds.
func Apply(s Spec, lookup func(string) (string, bool)) (Spec, error) {
	var err error

	setters := []struct {
		key string
		set func(v string) error
	}{
		{EnvFramesCount, func(v string) error {
			s.FramesCount, err = strconv.Atoi(v)
			return err
		}},
		{EnvPageSize, func(v string) error {
			s.PageSize, err = strconv.ParseUint(v, 0, 64)
			return err
		}},
		{EnvPolicy, func(v string) error {
			s.Policy, err = replacement.ParsePolicy(v)
			return err
		}},
		{EnvAllocatorAlgo, func(v string) error {
			s.AllocatorAlgo, err = allocator.ParseStrategy(v)
			return err
		}},
		{EnvAddressSpaceSize, func(v string) error {
			s.AddressSpaceSize, err = strconv.ParseUint(v, 0, 64)
			return err
		}},
		{EnvDefaultSegmentSize, func(v string) error {
			s.DefaultSegmentSize, err = strconv.ParseUint(v, 0, 64)
			return err
		}},
		{EnvDiskLatency, func(v string) error {
			s.DiskLatency, err = time.ParseDuration(v)
			return err
		}},
		{EnvTLBEntries, func(v string) error {
			s.TLBEntries, err = strconv.Atoi(v)
			return err
		}},
		{EnvEventLog, func(v string) error {
			s.EventLog = v
			return nil
		}},
		{EnvRecordDB, func(v string) error {
			s.RecordDB = v
			return nil
		}},
	}

	for _, setter := range setters {
		v, ok := lookup(setter.key)
		if !ok {
			continue
		}

		if e := setter.set(v); e != nil {
			return Spec{}, fmt.Errorf("%s=%q: %w", setter.key, v, e)
		}
	}

	return s, nil
}
