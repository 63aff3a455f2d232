package httpapi

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/ledger"
)

func attendanceRouter(store LedgerStore) *gin.Engine {
	return authedRouter(func(g *gin.RouterGroup) {
		NewAttendanceHandler(store).Register(g)
	})
}

type subjectResp struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Credits       float64 `json:"credits"`
	HoursAbsent   int     `json:"hours_absent"`
	MaxLeaveHours int     `json:"max_leave_hours"`
	OverLimit     bool    `json:"over_limit"`
}

func TestAttendanceRequiresAuth(t *testing.T) {
	r := attendanceRouter(newFakeLedgerStore())
	w := doJSON(t, r, http.MethodGet, "/v1/attendance", "", nil)
	statusIs(t, w, http.StatusUnauthorized)
}

func TestAddSubjectAndRecordEvents(t *testing.T) {
	store := newFakeLedgerStore()
	r := attendanceRouter(store)
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/subjects", token, gin.H{
		"name": "Operating Systems", "credits": 4.5,
	})
	statusIs(t, w, http.StatusCreated)

	var sub subjectResp
	decodeBody(t, w, &sub)
	if sub.MaxLeaveHours != 13 {
		t.Errorf("max_leave_hours = %d, want 13", sub.MaxLeaveHours)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/attendance/events", token, gin.H{
		"subject_id": sub.ID, "status": "absent", "hours": 2,
	})
	statusIs(t, w, http.StatusCreated)

	// hours defaults to 1
	w = doJSON(t, r, http.MethodPost, "/v1/attendance/events", token, gin.H{
		"subject_id": sub.ID, "status": "absent",
	})
	statusIs(t, w, http.StatusCreated)

	w = doJSON(t, r, http.MethodGet, "/v1/attendance", token, nil)
	statusIs(t, w, http.StatusOK)
	var view struct {
		Subjects []subjectResp  `json:"subjects"`
		History  []ledger.Event `json:"history"`
	}
	decodeBody(t, w, &view)
	if len(view.Subjects) != 1 || view.Subjects[0].HoursAbsent != 3 {
		t.Errorf("subjects = %+v, want one with 3 absent hours", view.Subjects)
	}
	if len(view.History) != 2 {
		t.Errorf("history length = %d, want 2", len(view.History))
	}
	if view.Subjects[0].OverLimit {
		t.Errorf("3 absent hours of 13 flagged over limit")
	}
}

func TestRecordEventUnknownSubject(t *testing.T) {
	r := attendanceRouter(newFakeLedgerStore())
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/events", token, gin.H{
		"subject_id": "ghost", "status": "absent",
	})
	statusIs(t, w, http.StatusNotFound)
}

func TestRecordEventRejectsBadStatus(t *testing.T) {
	r := attendanceRouter(newFakeLedgerStore())
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/events", token, gin.H{
		"subject_id": "x", "status": "late",
	})
	statusIs(t, w, http.StatusBadRequest)
}

func TestEditAndDeleteEvent(t *testing.T) {
	store := newFakeLedgerStore()
	r := attendanceRouter(store)
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/subjects", token, gin.H{
		"name": "Networks", "credits": 3.0,
	})
	statusIs(t, w, http.StatusCreated)
	var sub subjectResp
	decodeBody(t, w, &sub)

	w = doJSON(t, r, http.MethodPost, "/v1/attendance/events", token, gin.H{
		"subject_id": sub.ID, "status": "absent", "hours": 2,
	})
	statusIs(t, w, http.StatusCreated)
	var created struct {
		Event ledger.Event `json:"event"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodPatch, "/v1/attendance/events/"+created.Event.ID, token, gin.H{"hours": 5})
	statusIs(t, w, http.StatusOK)
	var view struct {
		Subjects []subjectResp `json:"subjects"`
	}
	decodeBody(t, w, &view)
	if view.Subjects[0].HoursAbsent != 5 {
		t.Errorf("hours_absent after edit = %d, want 5", view.Subjects[0].HoursAbsent)
	}

	// Delete with subject pruning: total returns to zero, subject goes too.
	w = doJSON(t, r, http.MethodDelete, "/v1/attendance/events/"+created.Event.ID+"?prune_subject=true", token, nil)
	statusIs(t, w, http.StatusOK)
	decodeBody(t, w, &view)
	if len(view.Subjects) != 0 {
		t.Errorf("subjects = %+v, want pruned", view.Subjects)
	}

	w = doJSON(t, r, http.MethodDelete, "/v1/attendance/events/"+created.Event.ID, token, nil)
	statusIs(t, w, http.StatusNotFound)
}

func TestSaveConflictRetries(t *testing.T) {
	store := newFakeLedgerStore()
	store.failSaves = 2 // fewer than saveRetries, so the handler recovers
	r := attendanceRouter(store)
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/subjects", token, gin.H{
		"name": "Compilers", "credits": 4.0,
	})
	statusIs(t, w, http.StatusCreated)
}

func TestSaveConflictExhaustsRetries(t *testing.T) {
	store := newFakeLedgerStore()
	store.failSaves = saveRetries
	r := attendanceRouter(store)
	token := bearerToken(t, "user-1", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/subjects", token, gin.H{
		"name": "Compilers", "credits": 4.0,
	})
	statusIs(t, w, http.StatusConflict)
}

func TestUsersAreIsolated(t *testing.T) {
	store := newFakeLedgerStore()
	r := attendanceRouter(store)
	alice := bearerToken(t, "alice", auth.RoleStudent)
	bob := bearerToken(t, "bob", auth.RoleStudent)

	w := doJSON(t, r, http.MethodPost, "/v1/attendance/subjects", alice, gin.H{
		"name": "Algebra", "credits": 3.0,
	})
	statusIs(t, w, http.StatusCreated)

	w = doJSON(t, r, http.MethodGet, "/v1/attendance", bob, nil)
	statusIs(t, w, http.StatusOK)
	var view struct {
		Subjects []subjectResp `json:"subjects"`
	}
	decodeBody(t, w, &view)
	if len(view.Subjects) != 0 {
		t.Errorf("bob sees alice's subjects: %+v", view.Subjects)
	}
}
