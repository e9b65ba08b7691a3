package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("DBRecorder", func() {
	var (
		mockCtrl     *gomock.Controller
		dataRecorder *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dataRecorder = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should insert events and flush on close", func() {
		dataRecorder.EXPECT().CreateTable(EventTable, EventEntry{})
		dataRecorder.EXPECT().InsertData(EventTable, EventEntry{
			ID:         "1",
			Time:       1,
			Type:       "page_out",
			PID:        4,
			GlobalPage: 9,
			Frame:      2,
			Detail:     `{"frame":2,"global_page":9,"pid":4}`,
		})
		dataRecorder.EXPECT().Flush()

		clock := sim.NewEventClock()
		clock.AcceptHook(NewDBRecorder(dataRecorder))

		clock.Emit(vm.PageOutEvent(4, 9, 2))
		clock.Close()
	})

	It("should mark missing columns", func() {
		entry := entryOf(sim.Event{
			Type:   vm.EventAnalyticsSummary,
			Detail: map[string]any{"frames": uint64(4)},
		})

		Expect(entry.PID).To(Equal(int64(-1)))
		Expect(entry.GlobalPage).To(Equal(int64(-1)))
		Expect(entry.Frame).To(Equal(int64(-1)))
	})

	It("should persist into SQLite", func() {
		path := filepath.Join(GinkgoT().TempDir(), "events")
		recorder := datarecording.New(path)

		clock := sim.NewEventClock()
		clock.AcceptHook(NewDBRecorder(recorder))
		clock.Emit(vm.PageFaultEvent(1, 5))
		clock.Emit(vm.TLBMissEvent(1, 5))
		clock.Close()
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path)
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()
		reader.MapTable(EventTable, EventEntry{})

		results, total, err := reader.Query(context.Background(), EventTable,
			datarecording.QueryParams{OrderBy: "Time"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(results[0].(*EventEntry).GlobalPage).To(Equal(int64(5)))
		Expect(results[1].(*EventEntry).Type).To(Equal("tlb_miss"))
	})
})
