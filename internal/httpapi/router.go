package httpapi

import (
	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/catalog"
	"studentportal/internal/cloudinary"
	"studentportal/internal/roadmap"
	"studentportal/internal/showcase"
	"studentportal/internal/users"
)

// Deps collects everything the /v1 routes need.
type Deps struct {
	JWTSigningKey string
	JWTIssuer     string

	Users    *users.Service
	Ledger   LedgerStore
	Records  RecordStore
	Catalog  *catalog.Repository
	Showcase *showcase.Repository
	Roadmaps *roadmap.Service
	Uploads  *cloudinary.Client
}

// Register mounts the full /v1 API on the engine. Route gating: catalog
// writes and uploads are admin-only, roadmap submission is senior (or
// admin), everything else needs any authenticated user.
func Register(r *gin.Engine, d Deps) {
	account := NewAccountHandler(d.Users)

	v1 := r.Group("/v1")
	account.RegisterPublic(v1)

	authed := v1.Group("", auth.Bearer(d.JWTSigningKey, d.JWTIssuer))
	account.RegisterAuthed(authed)
	NewAttendanceHandler(d.Ledger).Register(authed)
	NewAcademicsHandler(d.Records).Register(authed)
	NewShowcaseHandler(d.Showcase).Register(authed)

	catalogH := NewCatalogHandler(d.Catalog)
	catalogH.RegisterReads(authed)

	roadmapH := NewRoadmapHandler(d.Roadmaps)
	roadmapH.RegisterReads(authed)

	senior := authed.Group("", auth.RequireRole(auth.RoleSenior, auth.RoleAdmin))
	roadmapH.RegisterWrites(senior)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	catalogH.RegisterWrites(admin)
	NewUploadHandler(d.Uploads).Register(admin)
}
