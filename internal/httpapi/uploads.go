package httpapi

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studentportal/internal/cloudinary"
)

// UploadHandler pushes material and question-paper files to Cloudinary and
// returns the public URL for use in catalog create calls.
type UploadHandler struct {
	cdn *cloudinary.Client
}

// NewUploadHandler creates a handler; cdn may be nil when storage is not
// configured, in which case uploads return 503.
func NewUploadHandler(cdn *cloudinary.Client) *UploadHandler {
	return &UploadHandler{cdn: cdn}
}

// Register mounts the upload route (admin only).
func (h *UploadHandler) Register(g *gin.RouterGroup) {
	g.POST("/uploads", h.upload)
}

func (h *UploadHandler) upload(c *gin.Context) {
	if h.cdn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage not configured"})
		return
	}

	contentType := c.ContentType()
	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			badRequest(c, "file field required")
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			internalError(c, ferr)
			return
		}
		if strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			result, err = h.cdn.UploadRaw(data, header.Filename)
		} else {
			result, err = h.cdn.UploadBytes(data, header.Filename)
		}

	default:
		// JSON body with base64 data URL
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			badRequest(c, "provide {\"data\": \"<base64 data URL>\"}")
			return
		}
		result, err = h.cdn.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "file upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"bytes":     result.Bytes,
	})
}
