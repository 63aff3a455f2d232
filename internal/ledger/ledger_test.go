package ledger

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func seedSnapshot(t *testing.T) Snapshot {
	t.Helper()
	snap := NewSnapshot()
	if err := snap.AddSubject("s1", "Data Structures", 4, t0); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	if err := snap.AddSubject("s2", "Discrete Math", 3, t0); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	return snap
}

func mustRecord(t *testing.T, s *Snapshot, subjectID, status string, hours int, at time.Time) Event {
	t.Helper()
	evt, err := s.RecordEvent(subjectID, status, hours, at)
	if err != nil {
		t.Fatalf("RecordEvent(%s, %s, %d): %v", subjectID, status, hours, err)
	}
	return evt
}

func TestAddSubject(t *testing.T) {
	snap := NewSnapshot()
	if err := snap.AddSubject("s1", "Networks", 3, t0); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 0 {
		t.Errorf("new subject HoursAbsent = %d, want 0", got)
	}

	if err := snap.AddSubject("s1", "Networks again", 4, t0); !errors.Is(err, ErrDuplicateSubject) {
		t.Errorf("duplicate id err = %v, want ErrDuplicateSubject", err)
	}
	if err := snap.AddSubject("s2", "", 3, t0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name err = %v, want ErrInvalidInput", err)
	}
	if err := snap.AddSubject("s3", "Zero Credits", 0, t0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero credits err = %v, want ErrInvalidInput", err)
	}
}

func TestRecordEventAccumulatesAbsentHours(t *testing.T) {
	snap := seedSnapshot(t)

	hours := []int{1, 2, 3}
	var sum int
	for i, h := range hours {
		mustRecord(t, &snap, "s1", StatusAbsent, h, t0.Add(time.Duration(i)*time.Hour))
		sum += h
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != sum {
		t.Errorf("HoursAbsent = %d, want %d", got, sum)
	}
	if len(snap.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(snap.History))
	}
}

func TestRecordEventPresentDoesNotCount(t *testing.T) {
	snap := seedSnapshot(t)
	mustRecord(t, &snap, "s1", StatusPresent, 2, t0)
	if got := snap.Subjects["s1"].HoursAbsent; got != 0 {
		t.Errorf("HoursAbsent after present event = %d, want 0", got)
	}
	if len(snap.History) != 1 {
		t.Errorf("present event missing from history")
	}
}

func TestRecordEventErrors(t *testing.T) {
	snap := seedSnapshot(t)
	if _, err := snap.RecordEvent("nope", StatusAbsent, 1, t0); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("unknown subject err = %v, want ErrSubjectNotFound", err)
	}
	if _, err := snap.RecordEvent("s1", "late", 1, t0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad status err = %v, want ErrInvalidInput", err)
	}
	if _, err := snap.RecordEvent("s1", StatusAbsent, 0, t0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero hours err = %v, want ErrInvalidInput", err)
	}
}

func TestEventIDsMonotonic(t *testing.T) {
	snap := seedSnapshot(t)
	// Same timestamp on purpose: ids must still differ and increase.
	a := mustRecord(t, &snap, "s1", StatusAbsent, 1, t0)
	b := mustRecord(t, &snap, "s1", StatusAbsent, 1, t0)
	c := mustRecord(t, &snap, "s2", StatusPresent, 1, t0)
	if !(eventSeq(a.ID) < eventSeq(b.ID) && eventSeq(b.ID) < eventSeq(c.ID)) {
		t.Errorf("ids not monotonic: %s, %s, %s", a.ID, b.ID, c.ID)
	}
}

func TestEventCapturesSubjectName(t *testing.T) {
	snap := seedSnapshot(t)
	evt := mustRecord(t, &snap, "s1", StatusAbsent, 1, t0)
	if evt.SubjectName != "Data Structures" {
		t.Errorf("SubjectName = %q, want %q", evt.SubjectName, "Data Structures")
	}
}

func TestEditEventRoundTrip(t *testing.T) {
	snap := seedSnapshot(t)
	evt := mustRecord(t, &snap, "s1", StatusAbsent, 3, t0)

	if err := snap.EditEvent(evt.ID, 5); err != nil {
		t.Fatalf("EditEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 5 {
		t.Errorf("after edit up HoursAbsent = %d, want 5", got)
	}

	if err := snap.EditEvent(evt.ID, 3); err != nil {
		t.Fatalf("EditEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 3 {
		t.Errorf("round-trip HoursAbsent = %d, want 3", got)
	}
}

// With self-consistent data an edit can never take the total negative, so
// the clamp is exercised through a snapshot whose stored total drifted
// below the event's hours (as legacy data can).
func TestEditEventClampToZero(t *testing.T) {
	snap := Snapshot{
		Subjects: map[string]Subject{
			"s1": {ID: "s1", Name: "Physics", Credits: 3, HoursAbsent: 1, CreatedAt: t0},
		},
		History: []Event{
			{ID: "10", SubjectID: "s1", SubjectName: "Physics", Status: StatusAbsent, Hours: 5, At: t0},
		},
	}

	if err := snap.EditEvent("10", 1); err != nil { // delta -4 against a total of 1
		t.Fatalf("EditEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 0 {
		t.Errorf("HoursAbsent = %d, want 0 (clamped)", got)
	}

	// Editing back to the original hours does not restore the old total:
	// the clamp already discarded the difference.
	if err := snap.EditEvent("10", 5); err != nil {
		t.Fatalf("EditEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 4 {
		t.Errorf("HoursAbsent after re-edit = %d, want 4 (not the original 1)", got)
	}

	if err := snap.EditEvent("missing", 2); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("missing event err = %v, want ErrEventNotFound", err)
	}
	if err := snap.EditEvent("10", 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero hours err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteEventClampToZero(t *testing.T) {
	snap := Snapshot{
		Subjects: map[string]Subject{
			"s1": {ID: "s1", Name: "Physics", Credits: 3, HoursAbsent: 2, CreatedAt: t0},
		},
		History: []Event{
			{ID: "10", SubjectID: "s1", SubjectName: "Physics", Status: StatusAbsent, Hours: 5, At: t0},
		},
	}

	if err := snap.DeleteEvent("10", false); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 0 {
		t.Errorf("HoursAbsent = %d, want 0 (clamped)", got)
	}
}

func TestDeleteEvent(t *testing.T) {
	snap := seedSnapshot(t)
	evt := mustRecord(t, &snap, "s1", StatusAbsent, 3, t0)
	mustRecord(t, &snap, "s1", StatusAbsent, 2, t0)

	if err := snap.DeleteEvent(evt.ID, false); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if got := snap.Subjects["s1"].HoursAbsent; got != 2 {
		t.Errorf("HoursAbsent = %d, want 2", got)
	}
	if len(snap.History) != 1 {
		t.Errorf("history length = %d, want 1", len(snap.History))
	}

	if err := snap.DeleteEvent(evt.ID, false); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("double delete err = %v, want ErrEventNotFound", err)
	}
}

func TestDeleteEventPrunesClearedSubject(t *testing.T) {
	snap := seedSnapshot(t)
	evt := mustRecord(t, &snap, "s1", StatusAbsent, 3, t0)

	if err := snap.DeleteEvent(evt.ID, true); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, ok := snap.Subjects["s1"]; ok {
		t.Errorf("subject should be pruned when total returns to zero")
	}
	// s2 untouched
	if _, ok := snap.Subjects["s2"]; !ok {
		t.Errorf("unrelated subject removed")
	}
}

func TestDeleteEventKeepsSubjectWithoutPrune(t *testing.T) {
	snap := seedSnapshot(t)
	evt := mustRecord(t, &snap, "s1", StatusAbsent, 3, t0)

	if err := snap.DeleteEvent(evt.ID, false); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	sub, ok := snap.Subjects["s1"]
	if !ok {
		t.Fatalf("subject removed without prune flag")
	}
	if sub.HoursAbsent != 0 {
		t.Errorf("HoursAbsent = %d, want 0", sub.HoursAbsent)
	}
}

func TestDeleteSubjectRemovesOnlyItsHistory(t *testing.T) {
	snap := NewSnapshot()
	// Two subjects with the same display name: id-based join must not
	// cross-delete.
	if err := snap.AddSubject("a", "Maths", 3, t0); err != nil {
		t.Fatal(err)
	}
	if err := snap.AddSubject("b", "Maths", 3, t0); err != nil {
		t.Fatal(err)
	}
	mustRecord(t, &snap, "a", StatusAbsent, 1, t0)
	mustRecord(t, &snap, "b", StatusAbsent, 2, t0)
	mustRecord(t, &snap, "a", StatusPresent, 1, t0)

	if err := snap.DeleteSubject("a"); err != nil {
		t.Fatalf("DeleteSubject: %v", err)
	}
	if _, ok := snap.Subjects["a"]; ok {
		t.Errorf("subject a still present")
	}
	if len(snap.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(snap.History))
	}
	if snap.History[0].SubjectID != "b" {
		t.Errorf("surviving event belongs to %s, want b", snap.History[0].SubjectID)
	}

	if err := snap.DeleteSubject("a"); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("repeat delete err = %v, want ErrSubjectNotFound", err)
	}
}

func TestNewestFirst(t *testing.T) {
	snap := seedSnapshot(t)
	first := mustRecord(t, &snap, "s1", StatusAbsent, 1, t0)
	last := mustRecord(t, &snap, "s1", StatusAbsent, 1, t0.Add(time.Hour))

	ordered := snap.NewestFirst()
	if ordered[0].ID != last.ID || ordered[1].ID != first.ID {
		t.Errorf("NewestFirst order wrong: got %s then %s", ordered[0].ID, ordered[1].ID)
	}
	// Original history untouched.
	if snap.History[0].ID != first.ID {
		t.Errorf("History mutated by NewestFirst")
	}
}

func TestMaxLeaveHours(t *testing.T) {
	tests := []struct {
		credits float64
		want    int
	}{
		{4.5, 13},
		{4, 11},
		{3, 9},
		{1.5, 6},
		{2, 6},   // floor(2*3)
		{5, 15},  // floor(5*3)
		{2.5, 7}, // floor(2.5*3) = floor(7.5)
		{1, 3},
	}
	for _, tt := range tests {
		if got := MaxLeaveHours(tt.credits); got != tt.want {
			t.Errorf("MaxLeaveHours(%v) = %d, want %d", tt.credits, got, tt.want)
		}
	}
}
