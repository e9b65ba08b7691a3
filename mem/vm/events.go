package vm

import "github.com/sarchlab/vmsim/sim"

// Event types emitted by the memory models.
const (
	EventPageFault        sim.EventType = "page_fault"
	EventPageIn           sim.EventType = "page_in"
	EventPageOut          sim.EventType = "page_out"
	EventPageLoadRequest  sim.EventType = "page_load_request"
	EventTLBHit           sim.EventType = "tlb_hit"
	EventTLBMiss          sim.EventType = "tlb_miss"
	EventSegmentAlloc     sim.EventType = "segment_alloc"
	EventSegTranslate     sim.EventType = "seg_translate"
	EventSegFault         sim.EventType = "seg_fault"
	EventDemandPageLoaded sim.EventType = "demand_page_loaded"
	EventAccessRequest    sim.EventType = "access_request"
	EventAnalyticsSummary sim.EventType = "analytics_summary"
)

// PageFaultEvent reports a reference to a page that is not present.
func PageFaultEvent(pid PID, page GlobalPageID) sim.Event {
	return sim.NewEvent(EventPageFault,
		"pid", uint64(pid),
		"page", uint64(page))
}

// PageInEvent reports a page being loaded into a frame.
func PageInEvent(pid PID, page GlobalPageID, frame FrameID) sim.Event {
	return sim.NewEvent(EventPageIn,
		"pid", uint64(pid),
		"global_page", uint64(page),
		"frame", uint64(frame))
}

// PageOutEvent reports the writeback of a dirty page leaving its frame.
func PageOutEvent(pid PID, page GlobalPageID, frame FrameID) sim.Event {
	return sim.NewEvent(EventPageOut,
		"pid", uint64(pid),
		"global_page", uint64(page),
		"frame", uint64(frame))
}

// PageLoadRequestEvent reports a request for a page to be made present.
func PageLoadRequestEvent(
	pid PID,
	page GlobalPageID,
	reason string,
) sim.Event {
	return sim.NewEvent(EventPageLoadRequest,
		"pid", uint64(pid),
		"global_page", uint64(page),
		"reason", reason)
}

// TLBHitEvent reports a TLB lookup that found the page.
func TLBHitEvent(pid PID, page GlobalPageID) sim.Event {
	return sim.NewEvent(EventTLBHit,
		"pid", uint64(pid),
		"global_page", uint64(page))
}

// TLBMissEvent reports a TLB lookup that did not find the page.
func TLBMissEvent(pid PID, page GlobalPageID) sim.Event {
	return sim.NewEvent(EventTLBMiss,
		"pid", uint64(pid),
		"global_page", uint64(page))
}

// SegmentAllocEvent reports the creation of a segment.
func SegmentAllocEvent(
	pid PID,
	seg SegmentID,
	base, limit uint64,
	allocator string,
) sim.Event {
	return sim.NewEvent(EventSegmentAlloc,
		"pid", uint64(pid),
		"segment", uint64(seg),
		"base", base,
		"limit", limit,
		"allocator", allocator)
}

// SegTranslateFlatEvent reports a successful flat translation.
func SegTranslateFlatEvent(
	pid PID,
	seg SegmentID,
	offset, physAddr uint64,
) sim.Event {
	return sim.NewEvent(EventSegTranslate,
		"pid", uint64(pid),
		"segment", uint64(seg),
		"segment_offset", offset,
		"status", "ok",
		"phys_addr", physAddr)
}

// SegTranslatePagedEvent reports a successful paged translation.
func SegTranslatePagedEvent(
	pid PID,
	seg SegmentID,
	offset uint64,
	page GlobalPageID,
	pageOffset uint64,
) sim.Event {
	return sim.NewEvent(EventSegTranslate,
		"pid", uint64(pid),
		"segment", uint64(seg),
		"segment_offset", offset,
		"status", "ok",
		"virtual_page", uint64(page),
		"page_offset", pageOffset)
}

// SegFaultEvent reports a translation that failed.
func SegFaultEvent(pid PID, seg SegmentID, offset uint64) sim.Event {
	return sim.NewEvent(EventSegFault,
		"pid", uint64(pid),
		"segment", uint64(seg),
		"segment_offset", offset)
}

// DemandPageLoadedEvent reports the completion of a demand load.
func DemandPageLoadedEvent(
	pid PID,
	page GlobalPageID,
	frame FrameID,
) sim.Event {
	return sim.NewEvent(EventDemandPageLoaded,
		"pid", uint64(pid),
		"global_page", uint64(page),
		"frame", uint64(frame))
}

// AccessRequestEvent reports an access entering the pipeline.
func AccessRequestEvent(
	pid PID,
	mode TranslationMode,
	seg SegmentID,
	offset uint64,
	access AccessType,
) sim.Event {
	return sim.NewEvent(EventAccessRequest,
		"pid", uint64(pid),
		"mode", string(mode),
		"segment", uint64(seg),
		"segment_offset", offset,
		"access_type", string(access))
}

// AnalyticsSummaryEvent reports the totals of a run.
func AnalyticsSummaryEvent(accesses, faults uint64, frames int) sim.Event {
	return sim.NewEvent(EventAnalyticsSummary,
		"total_accesses", accesses,
		"total_page_faults", faults,
		"frames", uint64(frames))
}
