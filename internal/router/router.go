// Package router wires HTTP routes onto the Echo instance.  Handlers own
// the request logic; this package only decides which middleware guards
// each surface.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/facility-access-control/internal/handler"
	"github.com/iliyamo/facility-access-control/internal/middleware"
)

// RegisterHealth registers the unauthenticated liveness probe.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the public schedule browse endpoints.  They
// carry no authentication; the response cache middleware absorbs
// repeated reads from entrance displays.
func RegisterCatalog(e *echo.Echo, cat *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/facilities/:id/slots", cat.ListSlots, cache)
}

// RegisterAccess registers the authenticated member and staff surfaces.
// Every route under /v1 requires a valid access token; the scan and
// waitlist mutations additionally sit behind the per-member rate
// limiter so a misbehaving entrance device cannot hammer storage.
func RegisterAccess(
	e *echo.Echo,
	scan *handler.ScanHandler,
	wl *handler.WaitlistHandler,
	att *handler.AttendanceHandler,
	jwtSecret string,
	limiter echo.MiddlewareFunc,
) {
	auth := e.Group("/v1")
	auth.Use(middleware.MemberAuth(jwtSecret))
	auth.Use(middleware.RequireRole(middleware.RoleMember, middleware.RoleStaff))

	auth.POST("/scan", scan.Scan, limiter)
	auth.POST("/waitlist", wl.Join, limiter)
	auth.DELETE("/waitlist", wl.Leave, limiter)
	auth.GET("/me/attendance", att.History)

	// Queue inspection and status transitions are staff-only: they act on
	// other members' entries.
	staff := auth.Group("/waitlist")
	staff.Use(middleware.RequireRole(middleware.RoleStaff))
	staff.GET("/next", wl.PeekNext)
	staff.POST("/:id/status", wl.Mark)
}
