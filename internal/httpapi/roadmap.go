package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/roadmap"
)

// maxResumeBytes caps resume uploads at 5 MiB.
const maxResumeBytes = 5 << 20

// RoadmapHandler serves senior roadmap submissions.
type RoadmapHandler struct {
	svc *roadmap.Service
}

// NewRoadmapHandler creates a handler.
func NewRoadmapHandler(svc *roadmap.Service) *RoadmapHandler {
	return &RoadmapHandler{svc: svc}
}

// RegisterReads mounts the routes visible to every authenticated user.
func (h *RoadmapHandler) RegisterReads(g *gin.RouterGroup) {
	g.GET("/roadmaps", h.list)
	g.GET("/roadmaps/:id", h.get)
}

// RegisterWrites mounts the submission route (senior only).
func (h *RoadmapHandler) RegisterWrites(g *gin.RouterGroup) {
	g.POST("/roadmaps", h.submit)
}

// submit accepts a multipart form: title, body, company plus an optional
// "resume" PDF. With a resume attached the response is 202 — the upload
// finishes in the worker.
func (h *RoadmapHandler) submit(c *gin.Context) {
	var req struct {
		Title   string `form:"title" binding:"required"`
		Body    string `form:"body" binding:"required"`
		Author  string `form:"author" binding:"required"`
		Company string `form:"company"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rm := roadmap.Roadmap{
		UserID:  auth.UserID(c),
		Author:  req.Author,
		Title:   req.Title,
		Body:    req.Body,
		Company: req.Company,
	}

	var resume []byte
	if file, header, err := c.Request.FormFile("resume"); err == nil {
		defer file.Close()
		if header.Size > maxResumeBytes {
			badRequest(c, "resume exceeds 5MB")
			return
		}
		resume, err = io.ReadAll(io.LimitReader(file, maxResumeBytes))
		if err != nil {
			internalError(c, err)
			return
		}
		rm.ResumeName = header.Filename
	}

	saved, err := h.svc.Submit(c.Request.Context(), rm, resume)
	if err != nil {
		internalError(c, err)
		return
	}

	status := http.StatusCreated
	if saved.Status == roadmap.StatusPending {
		status = http.StatusAccepted
	}
	c.JSON(status, saved)
}

func (h *RoadmapHandler) list(c *gin.Context) {
	limit, offset := pageParams(c)
	out, err := h.svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roadmaps": out})
}

func (h *RoadmapHandler) get(c *gin.Context) {
	rm, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			notFound(c, err.Error())
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, rm)
}
