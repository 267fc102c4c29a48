package scheduler

import (
	"testing"
	"time"

	"github.com/preemptive/monchero-agent/internal/model"
)

func entryAt(name string, due time.Time, interval time.Duration) *model.ExecutableEntry {
	return &model.ExecutableEntry{
		CheckName: name,
		Filename:  "/bin/true",
		Interval:  interval,
		NextDue:   due,
	}
}

func TestPeekHeadIsEarliestDue(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	s.Insert(entryAt("c", base.Add(30*time.Second), time.Minute))
	s.Insert(entryAt("a", base.Add(5*time.Second), time.Minute))
	s.Insert(entryAt("b", base.Add(10*time.Second), time.Minute))

	head := s.PeekHead()
	if head == nil || head.CheckName != "a" {
		t.Fatalf("PeekHead() = %+v, want entry 'a'", head)
	}
}

func TestPeekHeadEmptyQueue(t *testing.T) {
	s := New()
	if got := s.PeekHead(); got != nil {
		t.Fatalf("PeekHead() on empty queue = %+v, want nil", got)
	}
	if got := s.PopAndReschedule(time.Now()); got != nil {
		t.Fatalf("PopAndReschedule() on empty queue = %+v, want nil", got)
	}
}

func TestOrderingInvariantAfterInsertsAndReschedules(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		s.Insert(entryAt(name, base.Add(time.Duration(i)*time.Second), time.Duration(i+1)*time.Second))
	}

	now := base
	for i := 0; i < 50; i++ {
		s.PopAndReschedule(now)
		now = now.Add(time.Second)
		assertHeadIsMinimum(t, s)
	}
}

func assertHeadIsMinimum(t *testing.T, s *Scheduler) {
	t.Helper()
	head := s.PeekHead()
	if head == nil {
		return
	}
	for _, e := range s.queue {
		if e.NextDue.Before(head.NextDue) {
			t.Fatalf("head.NextDue %v is not minimal: entry %s due %v", head.NextDue, e.CheckName, e.NextDue)
		}
	}
}

func TestPopAndRescheduleAdvancesNextDue(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	s.Insert(entryAt("only", base, 10*time.Second))

	popped := s.PopAndReschedule(base)
	if popped == nil || popped.CheckName != "only" {
		t.Fatalf("PopAndReschedule() = %+v, want entry 'only'", popped)
	}

	// Reinserted with NextDue advanced by interval + jitter in [0,1)s.
	head := s.PeekHead()
	if head == nil {
		t.Fatal("expected entry to be reinserted")
	}
	minDue := base.Add(10 * time.Second)
	maxDue := base.Add(11 * time.Second)
	if head.NextDue.Before(minDue) || head.NextDue.After(maxDue) {
		t.Fatalf("NextDue = %v, want in [%v, %v]", head.NextDue, minDue, maxDue)
	}
}

func TestLenTracksQueueSize(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	s.Insert(entryAt("a", time.Now(), time.Minute))
	s.Insert(entryAt("b", time.Now(), time.Minute))
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	s.PopAndReschedule(time.Now())
	if s.Len() != 2 {
		t.Fatalf("Len() after pop-and-reschedule = %d, want 2 (reinserted)", s.Len())
	}
}
