package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/academics"
	"studentportal/internal/auth"
)

// RecordStore loads and saves per-user academic records.
type RecordStore interface {
	Get(ctx context.Context, userID string) (*academics.Record, error)
	Save(ctx context.Context, userID string, rec academics.Record) error
}

// AcademicsHandler serves the CGPA endpoints.
type AcademicsHandler struct {
	store RecordStore
}

// NewAcademicsHandler creates a handler.
func NewAcademicsHandler(store RecordStore) *AcademicsHandler {
	return &AcademicsHandler{store: store}
}

// Register mounts the CGPA routes on an authenticated group.
func (h *AcademicsHandler) Register(g *gin.RouterGroup) {
	g.GET("/cgpa", h.get)
	g.PUT("/cgpa", h.put)
}

func (h *AcademicsHandler) get(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if rec == nil {
		notFound(c, "no academic record saved")
		return
	}
	c.JSON(http.StatusOK, rec)
}

type courseRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name"`
	Credits     float64 `json:"credits" binding:"required,gt=0"`
	Grade       string  `json:"grade" binding:"required,grade"`
	GradePoints float64 `json:"grade_points" binding:"min=0"`
}

type semesterRequest struct {
	Number  int             `json:"semester" binding:"required,min=1,max=8"`
	Courses []courseRequest `json:"courses" binding:"dive"`
}

type recordRequest struct {
	RegisterNo string            `json:"register_no" binding:"required"`
	Name       string            `json:"name" binding:"required"`
	Semesters  []semesterRequest `json:"semesters" binding:"dive"`
}

// put replaces the record wholesale: derived GPA/CGPA fields are always
// recomputed server-side, never taken from the payload.
func (h *AcademicsHandler) put(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rec := academics.Record{
		RegisterNo: req.RegisterNo,
		Name:       req.Name,
	}
	for _, sem := range req.Semesters {
		s := academics.Semester{Number: sem.Number}
		for _, course := range sem.Courses {
			s.Courses = append(s.Courses, academics.Course{
				Code:        course.Code,
				Name:        course.Name,
				Credits:     course.Credits,
				Grade:       course.Grade,
				GradePoints: course.GradePoints,
			})
		}
		rec.Semesters = append(rec.Semesters, s)
	}
	academics.Recompute(&rec)

	if err := h.store.Save(c.Request.Context(), auth.UserID(c), rec); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
