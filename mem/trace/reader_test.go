package trace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm"
)

var _ = Describe("Reader", func() {
	It("should read records", func() {
		input := "time,pid,mode,segment,segment_offset,access_type\n" +
			"1,1,segmented-paging,0,0,R\n" +
			"2, 2, flat, 0, 4100, w\n"

		records, err := ReadAll(strings.NewReader(input))

		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(Equal([]Record{
			{Time: 1, PID: 1, Mode: vm.ModePaged, Segment: 0, Offset: 0,
				Access: vm.AccessRead},
			{Time: 2, PID: 2, Mode: vm.ModeFlat, Segment: 0, Offset: 4100,
				Access: vm.AccessWrite},
		}))
	})

	It("should accept columns in any order", func() {
		input := "access_type,segment_offset,segment,mode,pid,time,comment\n" +
			"W,12,3,paged,9,5,hello\n"

		records, err := ReadAll(strings.NewReader(input))

		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].PID).To(Equal(vm.PID(9)))
		Expect(records[0].Segment).To(Equal(vm.SegmentID(3)))
		Expect(records[0].Offset).To(Equal(uint64(12)))
	})

	It("should return no records for a header only", func() {
		records, err := ReadAll(strings.NewReader(
			"time,pid,mode,segment,segment_offset,access_type\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("should reject a header without a required column", func() {
		_, err := ReadAll(strings.NewReader("time,pid,mode\n1,1,flat\n"))

		Expect(errors.Is(err, ErrMissingColumn)).To(BeTrue())
	})

	It("should report the line of a bad record", func() {
		input := "time,pid,mode,segment,segment_offset,access_type\n" +
			"1,1,paged,0,0,R\n" +
			"2,1,paged,0,-4,R\n"

		_, err := ReadAll(strings.NewReader(input))

		Expect(err).To(MatchError(ContainSubstring("trace line 3")))
	})

	It("should reject unknown modes", func() {
		input := "time,pid,mode,segment,segment_offset,access_type\n" +
			"1,1,inverted,0,0,R\n"

		_, err := ReadAll(strings.NewReader(input))

		Expect(errors.Is(err, vm.ErrUnknownTranslationMode)).To(BeTrue())
	})

	It("should read files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.csv")
		Expect(os.WriteFile(path, []byte(
			"time,pid,mode,segment,segment_offset,access_type\n"+
				"1,3,paged,0,0,R\n1,2,paged,0,0,R\n1,3,paged,0,0,W\n"),
			0o644)).To(Succeed())

		records, err := ReadFile(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(PIDs(records)).To(Equal([]vm.PID{2, 3}))
	})
})
