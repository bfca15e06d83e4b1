package lockingqueue

// Stats is a point-in-time snapshot of a Queue's counters.
type Stats struct {
	Pushed    uint64 // elements appended since creation
	Popped    uint64 // elements removed by any pop operation
	Discarded uint64 // elements dropped by Clear or RemoveFunc
	TimedOut  uint64 // bounded or cancellable waits that returned empty-handed
	Waiting   int    // consumers currently blocked in a wait
	Len       int    // elements currently queued; Pushed-Popped-Discarded
}
