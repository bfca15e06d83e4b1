// Package lockingqueue provides a generic blocking FIFO queue for handing
// work between goroutines.
//
// The queue is concurrency-safe: all exported methods use internal locking and
// may be called from multiple goroutines. Construct a queue with New.
//
// Consumers pick one of four access modes:
//
//   - TryPop never blocks and reports absence through its bool result.
//   - WaitAndPop blocks until an element is available.
//   - TryWaitAndPop blocks for at most a timeout. The whole timeout is
//     honored; a wakeup that finds the queue empty resumes waiting.
//   - WaitAndPopContext blocks until an element arrives or the context ends.
//
// Waiting uses the standard "wait in a loop" pattern around sync.Cond, so
// spurious wakeups and surplus waiters are tolerated. Absence of data is
// never reported as a panic.
//
// A goroutine blocked in WaitAndPop can only be released by a Push. Owners
// should join every consumer (see package worker) before dropping the queue.
package lockingqueue
