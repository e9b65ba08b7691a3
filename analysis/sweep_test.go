package analysis

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/allocator"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/segmentation"
)

func pages(ids ...int) []vm.GlobalPageID {
	trace := make([]vm.GlobalPageID, len(ids))
	for i, id := range ids {
		trace[i] = vm.GlobalPageID(id)
	}
	return trace
}

var _ = Describe("Sweep", func() {
	beladyTrace := pages(1, 2, 3, 4, 1, 2, 5, 1, 2, 3, 4, 5)

	It("should reproduce Belady's anomaly for FIFO", func() {
		rows, err := Sweep(context.Background(), beladyTrace, 3, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Frames).To(Equal(3))
		Expect(rows[0].FIFO).To(Equal(9))
		Expect(rows[1].FIFO).To(Equal(10))
		Expect(rows[0].Optimal).To(Equal(7))
		Expect(rows[1].Optimal).To(Equal(6))
		Expect(rows[1].LRU).To(BeNumerically("<=", rows[0].LRU))
	})

	It("should keep the optimal count below every policy", func() {
		r := rand.New(rand.NewSource(3))
		trace := make([]vm.GlobalPageID, 300)
		for i := range trace {
			trace[i] = vm.GlobalPageID(r.Intn(12) + 1)
		}

		rows, err := Sweep(context.Background(), trace, 1, 10)

		Expect(err).NotTo(HaveOccurred())
		for i, row := range rows {
			Expect(row.Frames).To(Equal(i + 1))
			Expect(row.Optimal).To(BeNumerically("<=", row.FIFO))
			Expect(row.Optimal).To(BeNumerically("<=", row.LRU))
			Expect(row.Optimal).To(BeNumerically("<=", row.Clock))
		}
	})

	It("should reject an empty range", func() {
		_, err := Sweep(context.Background(), beladyTrace, 4, 3)
		Expect(err).To(HaveOccurred())

		_, err = Sweep(context.Background(), beladyTrace, 0, 3)
		Expect(err).To(HaveOccurred())
	})

	It("should stop when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Sweep(ctx, beladyTrace, 1, 4)

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})

var _ = Describe("Global trace", func() {
	spec := segmentation.Spec{
		AddressSpaceSize: 1 << 20,
		PageSize:         4096,
		Strategy:         allocator.FirstFit,
	}

	It("should create segments in pid order", func() {
		records := []trace.Record{
			{PID: 2, Offset: 4096, Mode: vm.ModeFlat, Access: vm.AccessRead},
			{PID: 1, Offset: 0, Mode: vm.ModePaged, Access: vm.AccessRead},
			{PID: 1, Offset: 8191, Mode: vm.ModePaged, Access: vm.AccessWrite},
		}

		got, err := BuildGlobalTrace(records, spec, 32*1024)

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(pages(10, 1, 2)))
	})

	It("should fail on an offset outside the default segment", func() {
		records := []trace.Record{{PID: 1, Offset: 40000}}

		_, err := BuildGlobalTrace(records, spec, 32*1024)

		Expect(errors.Is(err, vm.ErrOffsetOutOfBounds)).To(BeTrue())
	})
})

var _ = Describe("Report", func() {
	rows := []SweepRow{
		{Frames: 2, FIFO: 8, LRU: 7, Clock: 8, Optimal: 6},
		{Frames: 3, FIFO: 6, LRU: 5, Clock: 6, Optimal: 4},
	}

	It("should write CSV", func() {
		var buf bytes.Buffer

		Expect(WriteCSV(&buf, rows)).To(Succeed())
		Expect(buf.String()).To(Equal(
			"frames,fifo,lru,clock,optimal\n2,8,7,8,6\n3,6,5,6,4\n"))
	})

	It("should record into SQLite", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sweep")
		recorder := datarecording.New(path)

		RecordSweep(recorder, rows)
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path)
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()
		reader.MapTable(SweepTable, SweepRow{})

		results, total, err := reader.Query(context.Background(), SweepTable,
			datarecording.QueryParams{OrderBy: "Frames"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(*results[1].(*SweepRow)).To(Equal(rows[1]))
	})
})
