package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/users"
)

// AccountHandler serves registration, login, refresh and profile routes.
type AccountHandler struct {
	svc *users.Service
}

// NewAccountHandler creates a handler.
func NewAccountHandler(svc *users.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// RegisterPublic mounts the unauthenticated account routes.
func (h *AccountHandler) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/auth/register", h.register)
	g.POST("/auth/login", h.login)
	g.POST("/auth/refresh", h.refresh)
}

// RegisterAuthed mounts the authenticated account routes.
func (h *AccountHandler) RegisterAuthed(g *gin.RouterGroup) {
	g.GET("/me", h.me)
}

func (h *AccountHandler) register(c *gin.Context) {
	var req struct {
		RegisterNo string `json:"register_no" binding:"required"`
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required,min=8"`
		Role       string `json:"role" binding:"required,oneof=student senior"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	u, err := h.svc.Register(c.Request.Context(), users.RegisterInput{
		RegisterNo: req.RegisterNo,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, users.ErrInvalidRole) {
			badRequest(c, err.Error())
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *AccountHandler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	u, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (h *AccountHandler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, users.ErrRefreshRejected) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (h *AccountHandler) me(c *gin.Context) {
	u, err := h.svc.Profile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if u == nil {
		notFound(c, "account not found")
		return
	}
	c.JSON(http.StatusOK, u)
}
