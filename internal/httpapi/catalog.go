package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/catalog"
)

// CatalogHandler serves the academic resource catalog. Reads are open to
// every authenticated user; writes are mounted under the admin group.
type CatalogHandler struct {
	repo *catalog.Repository
}

// NewCatalogHandler creates a handler.
func NewCatalogHandler(repo *catalog.Repository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// RegisterReads mounts the list routes.
func (h *CatalogHandler) RegisterReads(g *gin.RouterGroup) {
	g.GET("/semesters", h.listSemesters)
	g.GET("/subjects", h.listSubjects)
	g.GET("/materials", h.listMaterials)
	g.GET("/question-papers", h.listQuestionPapers)
}

// RegisterWrites mounts the mutating routes (admin only).
func (h *CatalogHandler) RegisterWrites(g *gin.RouterGroup) {
	g.POST("/semesters", h.createSemester)
	g.PUT("/semesters/:id", h.updateSemester)
	g.DELETE("/semesters/:id", h.deleteSemester)
	g.POST("/subjects", h.createSubject)
	g.PUT("/subjects/:id", h.updateSubject)
	g.DELETE("/subjects/:id", h.deleteSubject)
	g.POST("/materials", h.createMaterial)
	g.PUT("/materials/:id", h.updateMaterial)
	g.DELETE("/materials/:id", h.deleteMaterial)
	g.POST("/question-papers", h.createQuestionPaper)
	g.PUT("/question-papers/:id", h.updateQuestionPaper)
	g.DELETE("/question-papers/:id", h.deleteQuestionPaper)
}

func (h *CatalogHandler) listSemesters(c *gin.Context) {
	out, err := h.repo.ListSemesters(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"semesters": out})
}

func (h *CatalogHandler) createSemester(c *gin.Context) {
	var req struct {
		Number int    `json:"number" binding:"required,min=1,max=8"`
		Name   string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.repo.CreateSemester(c.Request.Context(), catalog.Semester{Number: req.Number, Name: req.Name})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) updateSemester(c *gin.Context) {
	var req struct {
		Number int    `json:"number" binding:"required,min=1,max=8"`
		Name   string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	err := h.repo.UpdateSemester(c.Request.Context(), catalog.Semester{ID: c.Param("id"), Number: req.Number, Name: req.Name})
	if h.writeDone(c, err) {
		c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
	}
}

func (h *CatalogHandler) deleteSemester(c *gin.Context) {
	if h.writeDone(c, h.repo.DeleteSemester(c.Request.Context(), c.Param("id"))) {
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	}
}

func (h *CatalogHandler) listSubjects(c *gin.Context) {
	out, err := h.repo.ListSubjects(c.Request.Context(), c.Query("semester_id"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": out})
}

func (h *CatalogHandler) createSubject(c *gin.Context) {
	var req struct {
		SemesterID string  `json:"semester_id" binding:"required"`
		Code       string  `json:"code" binding:"required"`
		Name       string  `json:"name" binding:"required"`
		Credits    float64 `json:"credits" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.repo.CreateSubject(c.Request.Context(), catalog.Subject{
		SemesterID: req.SemesterID,
		Code:       req.Code,
		Name:       req.Name,
		Credits:    req.Credits,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) updateSubject(c *gin.Context) {
	var req struct {
		SemesterID string  `json:"semester_id" binding:"required"`
		Code       string  `json:"code" binding:"required"`
		Name       string  `json:"name" binding:"required"`
		Credits    float64 `json:"credits" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	err := h.repo.UpdateSubject(c.Request.Context(), catalog.Subject{
		ID:         c.Param("id"),
		SemesterID: req.SemesterID,
		Code:       req.Code,
		Name:       req.Name,
		Credits:    req.Credits,
	})
	if h.writeDone(c, err) {
		c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
	}
}

func (h *CatalogHandler) deleteSubject(c *gin.Context) {
	if h.writeDone(c, h.repo.DeleteSubject(c.Request.Context(), c.Param("id"))) {
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	}
}

func (h *CatalogHandler) listMaterials(c *gin.Context) {
	out, err := h.repo.ListMaterials(c.Request.Context(), c.Query("subject_id"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": out})
}

func (h *CatalogHandler) createMaterial(c *gin.Context) {
	var req struct {
		SubjectID   string `json:"subject_id" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		FileURL     string `json:"file_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.repo.CreateMaterial(c.Request.Context(), catalog.Material{
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		UploadedBy:  auth.UserID(c),
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *CatalogHandler) updateMaterial(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		FileURL     string `json:"file_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	err := h.repo.UpdateMaterial(c.Request.Context(), catalog.Material{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
	})
	if h.writeDone(c, err) {
		c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
	}
}

func (h *CatalogHandler) deleteMaterial(c *gin.Context) {
	if h.writeDone(c, h.repo.DeleteMaterial(c.Request.Context(), c.Param("id"))) {
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	}
}

func (h *CatalogHandler) listQuestionPapers(c *gin.Context) {
	out, err := h.repo.ListQuestionPapers(c.Request.Context(), c.Query("subject_id"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_papers": out})
}

func (h *CatalogHandler) createQuestionPaper(c *gin.Context) {
	var req struct {
		SubjectID string `json:"subject_id" binding:"required"`
		Year      int    `json:"year" binding:"required,min=2000"`
		Term      string `json:"term" binding:"required"`
		FileURL   string `json:"file_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	qp, err := h.repo.CreateQuestionPaper(c.Request.Context(), catalog.QuestionPaper{
		SubjectID:  req.SubjectID,
		Year:       req.Year,
		Term:       req.Term,
		FileURL:    req.FileURL,
		UploadedBy: auth.UserID(c),
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, qp)
}

func (h *CatalogHandler) updateQuestionPaper(c *gin.Context) {
	var req struct {
		Year    int    `json:"year" binding:"required,min=2000"`
		Term    string `json:"term" binding:"required"`
		FileURL string `json:"file_url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	err := h.repo.UpdateQuestionPaper(c.Request.Context(), catalog.QuestionPaper{
		ID:      c.Param("id"),
		Year:    req.Year,
		Term:    req.Term,
		FileURL: req.FileURL,
	})
	if h.writeDone(c, err) {
		c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
	}
}

func (h *CatalogHandler) deleteQuestionPaper(c *gin.Context) {
	if h.writeDone(c, h.repo.DeleteQuestionPaper(c.Request.Context(), c.Param("id"))) {
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	}
}

func (h *CatalogHandler) writeDone(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, catalog.ErrNotFound) {
		notFound(c, err.Error())
	} else {
		internalError(c, err)
	}
	return false
}
