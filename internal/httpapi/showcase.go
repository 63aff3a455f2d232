package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/showcase"
)

// ShowcaseHandler serves project and problem posts.
type ShowcaseHandler struct {
	repo *showcase.Repository
}

// NewShowcaseHandler creates a handler.
func NewShowcaseHandler(repo *showcase.Repository) *ShowcaseHandler {
	return &ShowcaseHandler{repo: repo}
}

// Register mounts the showcase routes on an authenticated group.
func (h *ShowcaseHandler) Register(g *gin.RouterGroup) {
	g.GET("/projects", h.listProjects)
	g.POST("/projects", h.createProject)
	g.DELETE("/projects/:id", h.deleteProject)
	g.GET("/problems", h.listProblems)
	g.POST("/problems", h.createProblem)
	g.DELETE("/problems/:id", h.deleteProblem)
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, offset = 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}

func (h *ShowcaseHandler) listProjects(c *gin.Context) {
	limit, offset := pageParams(c)
	out, err := h.repo.ListProjects(c.Request.Context(), limit, offset)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (h *ShowcaseHandler) createProject(c *gin.Context) {
	var req struct {
		Author      string   `json:"author" binding:"required"`
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		RepoURL     string   `json:"repo_url" binding:"omitempty,url"`
		DemoURL     string   `json:"demo_url" binding:"omitempty,url"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.repo.CreateProject(c.Request.Context(), showcase.Project{
		UserID:      auth.UserID(c),
		Author:      req.Author,
		Title:       req.Title,
		Description: req.Description,
		RepoURL:     req.RepoURL,
		DemoURL:     req.DemoURL,
		Tags:        req.Tags,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ShowcaseHandler) deleteProject(c *gin.Context) {
	h.deletePost(c, h.repo.GetProjectOwner, h.repo.DeleteProject)
}

func (h *ShowcaseHandler) listProblems(c *gin.Context) {
	limit, offset := pageParams(c)
	out, err := h.repo.ListProblems(c.Request.Context(), limit, offset)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"problems": out})
}

func (h *ShowcaseHandler) createProblem(c *gin.Context) {
	var req struct {
		Author     string   `json:"author" binding:"required"`
		Title      string   `json:"title" binding:"required"`
		Statement  string   `json:"statement" binding:"required"`
		Difficulty string   `json:"difficulty" binding:"required,oneof=easy medium hard"`
		Tags       []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.repo.CreateProblem(c.Request.Context(), showcase.Problem{
		UserID:     auth.UserID(c),
		Author:     req.Author,
		Title:      req.Title,
		Statement:  req.Statement,
		Difficulty: req.Difficulty,
		Tags:       req.Tags,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ShowcaseHandler) deleteProblem(c *gin.Context) {
	h.deletePost(c, h.repo.GetProblemOwner, h.repo.DeleteProblem)
}

// deletePost removes a post when the caller owns it or is an admin.
func (h *ShowcaseHandler) deletePost(
	c *gin.Context,
	owner func(ctx context.Context, id string) (string, error),
	remove func(ctx context.Context, id string) error,
) {
	claims := auth.FromContext(c)
	id := c.Param("id")
	ctx := c.Request.Context()

	userID, err := owner(ctx, id)
	if err != nil {
		if errors.Is(err, showcase.ErrNotFound) {
			notFound(c, err.Error())
			return
		}
		internalError(c, err)
		return
	}
	if userID != claims.Subject && claims.Role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return
	}
	if err := remove(ctx, id); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
