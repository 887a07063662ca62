package notify

import (
	"testing"

	"github.com/nhle/mail-assistant/internal/model"
)

func email(id string) model.Email {
	return model.Email{ID: id, From: "sender@example.com", Subject: "Subject " + id}
}

func TestAddShowsImmediatelyWhenNothingCurrent(t *testing.T) {
	q := New()

	q.Add(email("e1"), nil)

	current := q.Current()
	if current == nil {
		t.Fatal("expected a current notification")
	}
	if current.Email.ID != "e1" {
		t.Errorf("current = %s; want e1", current.Email.ID)
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d; want 0", q.Pending())
	}
}

func TestAddQueuesBehindCurrent(t *testing.T) {
	q := New()

	q.Add(email("e1"), nil)
	q.Add(email("e2"), nil)
	q.Add(email("e3"), nil)

	if got := q.Current().Email.ID; got != "e1" {
		t.Errorf("current = %s; want e1", got)
	}
	if q.Pending() != 2 {
		t.Errorf("pending = %d; want 2", q.Pending())
	}
}

func TestDismissPromotesInArrivalOrder(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)
	q.Add(email("e2"), &model.EmailSummary{Priority: model.PriorityHigh})
	q.Add(email("e3"), nil)

	// Priority never reorders the queue.
	q.DismissCurrent()
	if got := q.Current().Email.ID; got != "e2" {
		t.Errorf("after first dismiss current = %s; want e2", got)
	}

	q.DismissCurrent()
	if got := q.Current().Email.ID; got != "e3" {
		t.Errorf("after second dismiss current = %s; want e3", got)
	}

	q.DismissCurrent()
	if q.Current() != nil {
		t.Error("expected no current notification after dismissing all")
	}
}

func TestDismissWithNothingShownIsNoOp(t *testing.T) {
	q := New()

	q.DismissCurrent()

	if q.Current() != nil {
		t.Error("expected nil current")
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d; want 0", q.Pending())
	}
}

func TestRemoveCurrentPromotesHead(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)
	q.Add(email("e2"), nil)

	q.Remove("e1")

	if got := q.Current().Email.ID; got != "e2" {
		t.Errorf("current = %s; want e2", got)
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d; want 0", q.Pending())
	}
}

func TestRemoveQueuedEntryLeavesCurrentAlone(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)
	q.Add(email("e2"), nil)
	q.Add(email("e3"), nil)

	q.Remove("e2")

	if got := q.Current().Email.ID; got != "e1" {
		t.Errorf("current = %s; want e1", got)
	}
	if q.Pending() != 1 {
		t.Errorf("pending = %d; want 1", q.Pending())
	}

	q.DismissCurrent()
	if got := q.Current().Email.ID; got != "e3" {
		t.Errorf("current after dismiss = %s; want e3", got)
	}
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)

	q.Remove("missing")

	if got := q.Current().Email.ID; got != "e1" {
		t.Errorf("current = %s; want e1", got)
	}
}

func TestClearAll(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)
	q.Add(email("e2"), nil)

	q.ClearAll()

	if q.Current() != nil {
		t.Error("expected nil current after ClearAll")
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d; want 0", q.Pending())
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	q := New()
	q.Add(email("e1"), nil)

	first := q.Current()
	first.Email.Subject = "mutated"

	if got := q.Current().Email.Subject; got == "mutated" {
		t.Error("Current must return a copy, not the internal pointer")
	}
}
