// Package scheduler maintains a due-ordered priority queue of Executable
// Entries and releases them one at a time (C4).
package scheduler

import (
	"container/heap"
	"math/rand"
	"time"

	"github.com/preemptive/monchero-agent/internal/model"
)

// Scheduler is a priority queue of *model.ExecutableEntry ordered by
// NextDue ascending. It is not safe for concurrent use: per §5, the
// scheduler queue is owned exclusively by the agent's single control
// thread.
type Scheduler struct {
	queue entryHeap
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Len reports how many entries are queued.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Insert places entry at its due-ordered position.
func (s *Scheduler) Insert(entry *model.ExecutableEntry) {
	heap.Push(&s.queue, entry)
}

// PeekHead returns the earliest-due entry without removing it, or nil if
// the queue is empty.
func (s *Scheduler) PeekHead() *model.ExecutableEntry {
	if len(s.queue) == 0 {
		return nil
	}
	return s.queue[0]
}

// PopAndReschedule removes the head, advances its NextDue by
// interval+jitter relative to now, reinserts it, and returns the entry
// that was due (the one to execute this round). Returns nil if the queue
// is empty.
//
// Jitter is uniform random in [0, 1) seconds, added at every reschedule to
// spread load across entries sharing an interval.
func (s *Scheduler) PopAndReschedule(now time.Time) *model.ExecutableEntry {
	if len(s.queue) == 0 {
		return nil
	}
	entry := heap.Pop(&s.queue).(*model.ExecutableEntry)
	entry.NextDue = now.Add(entry.Interval).Add(jitter())
	heap.Push(&s.queue, entry)
	return entry
}

// jitter returns a uniform random duration in [0, 1) seconds.
func jitter() time.Duration {
	return time.Duration(rand.Float64() * float64(time.Second))
}

// entryHeap implements container/heap.Interface over a slice of
// *model.ExecutableEntry, ordered by NextDue ascending.
type entryHeap []*model.ExecutableEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	return h[i].NextDue.Before(h[j].NextDue)
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].HeapIndex = i
	h[j].HeapIndex = j
}

func (h *entryHeap) Push(x any) {
	entry := x.(*model.ExecutableEntry)
	entry.HeapIndex = len(*h)
	*h = append(*h, entry)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.HeapIndex = -1
	*h = old[:n-1]
	return entry
}
