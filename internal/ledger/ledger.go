package ledger

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"
)

// Operation errors surfaced to handlers.
var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrDuplicateSubject = errors.New("subject already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

// Event statuses.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Subject is one tracked subject with its running absent-hour total.
type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Credits     float64   `json:"credits"`
	HoursAbsent int       `json:"hours_absent"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is a single attendance entry in the history.
// SubjectName is a display cache captured at creation; the authoritative
// link to the subject is SubjectID.
type Event struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Status      string    `json:"status"`
	Hours       int       `json:"hours"`
	At          time.Time `json:"at"`
}

// Snapshot is one user's complete ledger: subjects keyed by id plus the
// chronological event history. Operations mutate the snapshot in place;
// the caller loads it from storage before and saves it after.
type Snapshot struct {
	Subjects map[string]Subject `json:"subjects"`
	History  []Event            `json:"history"`
}

// NewSnapshot returns an empty ledger.
func NewSnapshot() Snapshot {
	return Snapshot{Subjects: map[string]Subject{}}
}

// AddSubject registers a new subject with a zero absent-hour total.
func (s *Snapshot) AddSubject(id, name string, credits float64, at time.Time) error {
	if id == "" || name == "" || credits <= 0 {
		return ErrInvalidInput
	}
	if s.Subjects == nil {
		s.Subjects = map[string]Subject{}
	}
	if _, ok := s.Subjects[id]; ok {
		return ErrDuplicateSubject
	}
	s.Subjects[id] = Subject{
		ID:        id,
		Name:      name,
		Credits:   credits,
		CreatedAt: at.UTC(),
	}
	return nil
}

// RecordEvent appends an attendance entry for a subject. Absent events add
// their hours to the subject total; present events only enter the history.
func (s *Snapshot) RecordEvent(subjectID, status string, hours int, at time.Time) (Event, error) {
	if hours <= 0 {
		return Event{}, ErrInvalidInput
	}
	if status != StatusPresent && status != StatusAbsent {
		return Event{}, ErrInvalidInput
	}
	sub, ok := s.Subjects[subjectID]
	if !ok {
		return Event{}, ErrSubjectNotFound
	}

	evt := Event{
		ID:          s.nextEventID(at),
		SubjectID:   subjectID,
		SubjectName: sub.Name,
		Status:      status,
		Hours:       hours,
		At:          at.UTC(),
	}
	s.History = append(s.History, evt)

	if status == StatusAbsent {
		sub.HoursAbsent += hours
		s.Subjects[subjectID] = sub
	}
	return evt, nil
}

// EditEvent changes an event's hour count and applies the delta to the
// subject total when the event is an absence. The total is clamped at
// zero, so an edit sequence that would take it negative loses the
// difference; re-editing back to the original hours does not restore it.
func (s *Snapshot) EditEvent(eventID string, newHours int) error {
	if newHours <= 0 {
		return ErrInvalidInput
	}
	i := s.eventIndex(eventID)
	if i < 0 {
		return ErrEventNotFound
	}
	evt := s.History[i]
	if evt.Status == StatusAbsent {
		if sub, ok := s.Subjects[evt.SubjectID]; ok {
			sub.HoursAbsent = clampZero(sub.HoursAbsent + newHours - evt.Hours)
			s.Subjects[evt.SubjectID] = sub
		}
	}
	s.History[i].Hours = newHours
	return nil
}

// DeleteEvent removes an event from the history. An absence gives its
// hours back to the subject total (clamped at zero); when
// removeClearedSubject is set and the total lands on zero, the subject
// itself is dropped.
func (s *Snapshot) DeleteEvent(eventID string, removeClearedSubject bool) error {
	i := s.eventIndex(eventID)
	if i < 0 {
		return ErrEventNotFound
	}
	evt := s.History[i]
	s.History = append(s.History[:i], s.History[i+1:]...)

	if evt.Status != StatusAbsent {
		return nil
	}
	sub, ok := s.Subjects[evt.SubjectID]
	if !ok {
		return nil
	}
	sub.HoursAbsent = clampZero(sub.HoursAbsent - evt.Hours)
	if removeClearedSubject && sub.HoursAbsent == 0 {
		delete(s.Subjects, evt.SubjectID)
		return nil
	}
	s.Subjects[evt.SubjectID] = sub
	return nil
}

// DeleteSubject removes a subject and every history entry referencing it.
// The join is by subject id; the denormalized name plays no part, so two
// subjects sharing a display name never delete each other's history.
func (s *Snapshot) DeleteSubject(subjectID string) error {
	if _, ok := s.Subjects[subjectID]; !ok {
		return ErrSubjectNotFound
	}
	delete(s.Subjects, subjectID)

	kept := s.History[:0]
	for _, evt := range s.History {
		if evt.SubjectID != subjectID {
			kept = append(kept, evt)
		}
	}
	s.History = kept
	return nil
}

// NewestFirst returns the history in display order, most recent event
// first. Event ids are monotonic, so they double as the sort key.
func (s *Snapshot) NewestFirst() []Event {
	out := make([]Event, len(s.History))
	copy(out, s.History)
	sort.SliceStable(out, func(i, j int) bool {
		return eventSeq(out[i].ID) > eventSeq(out[j].ID)
	})
	return out
}

// MaxLeaveHours maps a subject's credit value to its allowed-absence
// ceiling. Callers compare it against HoursAbsent to flag over-limit
// subjects; the ledger itself never enforces it.
func MaxLeaveHours(credits float64) int {
	switch credits {
	case 4.5:
		return 13
	case 4:
		return 11
	case 3:
		return 9
	case 1.5:
		return 6
	}
	return int(math.Floor(credits * 3))
}

// nextEventID derives a creation-time id, bumped past any existing id so
// ids stay strictly monotonic even when the clock repeats.
func (s *Snapshot) nextEventID(at time.Time) string {
	id := at.UTC().UnixNano()
	for _, evt := range s.History {
		if n := eventSeq(evt.ID); n >= id {
			id = n + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

func (s *Snapshot) eventIndex(eventID string) int {
	for i, evt := range s.History {
		if evt.ID == eventID {
			return i
		}
	}
	return -1
}

func eventSeq(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
