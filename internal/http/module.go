// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"terrasite_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router context.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine; public site endpoints live here.
	Engine *gin.Engine
	// AdminPublic is the /admin group without authentication (login).
	AdminPublic *gin.RouterGroup
	// Admin is the /admin group, token-protected when admin auth is configured.
	Admin *gin.RouterGroup
	// SubmitRateLimiter throttles public form submissions per client IP.
	SubmitRateLimiter *httpkit.IPRateLimiter
}
