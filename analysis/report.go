package analysis

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/vmsim/datarecording"
)

// SweepTable is the table that RecordSweep writes to.
const SweepTable = "sweep"

var csvHeader = []string{"frames", "fifo", "lru", "clock", "optimal"}

// WriteCSV writes the rows with a header line.
func WriteCSV(w io.Writer, rows []SweepRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Frames),
			strconv.Itoa(r.FIFO),
			strconv.Itoa(r.LRU),
			strconv.Itoa(r.Clock),
			strconv.Itoa(r.Optimal),
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes the rows to the file at path.
func WriteCSVFile(path string, rows []SweepRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// RecordSweep stores the rows in the sweep table of the recorder.
func RecordSweep(recorder datarecording.DataRecorder, rows []SweepRow) {
	recorder.CreateTable(SweepTable, SweepRow{})

	for _, r := range rows {
		recorder.InsertData(SweepTable, r)
	}

	recorder.Flush()
}
