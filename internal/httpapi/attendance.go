package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studentportal/internal/auth"
	"studentportal/internal/ledger"
)

// saveRetries bounds the read-modify-write loop on version conflicts.
const saveRetries = 3

// LedgerStore loads and saves per-user attendance snapshots.
type LedgerStore interface {
	Load(ctx context.Context, userID string) (ledger.Snapshot, int64, error)
	Save(ctx context.Context, userID string, snap ledger.Snapshot, version int64) error
}

// AttendanceHandler serves the attendance ledger endpoints.
type AttendanceHandler struct {
	store LedgerStore
}

// NewAttendanceHandler creates a handler.
func NewAttendanceHandler(store LedgerStore) *AttendanceHandler {
	return &AttendanceHandler{store: store}
}

// Register mounts the attendance routes on an authenticated group.
func (h *AttendanceHandler) Register(g *gin.RouterGroup) {
	g.GET("/attendance", h.getLedger)
	g.POST("/attendance/subjects", h.addSubject)
	g.DELETE("/attendance/subjects/:id", h.deleteSubject)
	g.POST("/attendance/events", h.recordEvent)
	g.PATCH("/attendance/events/:id", h.editEvent)
	g.DELETE("/attendance/events/:id", h.deleteEvent)
}

type subjectView struct {
	ledger.Subject
	MaxLeaveHours int  `json:"max_leave_hours"`
	OverLimit     bool `json:"over_limit"`
}

func ledgerView(snap ledger.Snapshot) gin.H {
	subjects := make([]subjectView, 0, len(snap.Subjects))
	for _, sub := range snap.Subjects {
		max := ledger.MaxLeaveHours(sub.Credits)
		subjects = append(subjects, subjectView{
			Subject:       sub,
			MaxLeaveHours: max,
			OverLimit:     sub.HoursAbsent > max,
		})
	}
	return gin.H{"subjects": subjects, "history": snap.NewestFirst()}
}

func (h *AttendanceHandler) getLedger(c *gin.Context) {
	snap, _, err := h.store.Load(c.Request.Context(), auth.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, ledgerView(snap))
}

// mutate runs fn inside a load/save cycle, retrying when another request
// saved the same user's ledger in between. This keeps per-user updates
// linearizable without holding any server-side lock.
func (h *AttendanceHandler) mutate(c *gin.Context, fn func(*ledger.Snapshot) error) (ledger.Snapshot, bool) {
	userID := auth.UserID(c)
	ctx := c.Request.Context()

	for attempt := 0; attempt < saveRetries; attempt++ {
		snap, version, err := h.store.Load(ctx, userID)
		if err != nil {
			internalError(c, err)
			return ledger.Snapshot{}, false
		}
		if err := fn(&snap); err != nil {
			ledgerError(c, err)
			return ledger.Snapshot{}, false
		}
		err = h.store.Save(ctx, userID, snap, version)
		if errors.Is(err, ledger.ErrVersionConflict) {
			continue
		}
		if err != nil {
			internalError(c, err)
			return ledger.Snapshot{}, false
		}
		return snap, true
	}
	c.JSON(http.StatusConflict, gin.H{"error": "ledger busy, retry"})
	return ledger.Snapshot{}, false
}

func (h *AttendanceHandler) addSubject(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Credits float64 `json:"credits" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id := uuid.NewString()
	snap, ok := h.mutate(c, func(s *ledger.Snapshot) error {
		return s.AddSubject(id, req.Name, req.Credits, time.Now())
	})
	if !ok {
		return
	}
	sub := snap.Subjects[id]
	max := ledger.MaxLeaveHours(sub.Credits)
	c.JSON(http.StatusCreated, subjectView{Subject: sub, MaxLeaveHours: max})
}

func (h *AttendanceHandler) deleteSubject(c *gin.Context) {
	id := c.Param("id")
	snap, ok := h.mutate(c, func(s *ledger.Snapshot) error {
		return s.DeleteSubject(id)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ledgerView(snap))
}

func (h *AttendanceHandler) recordEvent(c *gin.Context) {
	var req struct {
		SubjectID string `json:"subject_id" binding:"required"`
		Status    string `json:"status" binding:"required,oneof=present absent"`
		Hours     int    `json:"hours" binding:"omitempty,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Hours == 0 {
		req.Hours = 1
	}

	var evt ledger.Event
	snap, ok := h.mutate(c, func(s *ledger.Snapshot) error {
		var err error
		evt, err = s.RecordEvent(req.SubjectID, req.Status, req.Hours, time.Now())
		return err
	})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": evt, "subject": snap.Subjects[req.SubjectID]})
}

func (h *AttendanceHandler) editEvent(c *gin.Context) {
	var req struct {
		Hours int `json:"hours" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id := c.Param("id")
	snap, ok := h.mutate(c, func(s *ledger.Snapshot) error {
		return s.EditEvent(id, req.Hours)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ledgerView(snap))
}

func (h *AttendanceHandler) deleteEvent(c *gin.Context) {
	id := c.Param("id")
	prune := c.Query("prune_subject") == "true"
	snap, ok := h.mutate(c, func(s *ledger.Snapshot) error {
		return s.DeleteEvent(id, prune)
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ledgerView(snap))
}

func ledgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrSubjectNotFound), errors.Is(err, ledger.ErrEventNotFound):
		notFound(c, err.Error())
	case errors.Is(err, ledger.ErrDuplicateSubject):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidInput):
		badRequest(c, err.Error())
	default:
		internalError(c, err)
	}
}
