// Package auth provides admin authentication for the /admin routes.
package auth

import (
	"terrasite_backend/internal/auth/handler"
	"terrasite_backend/internal/auth/service"
	apphttp "terrasite_backend/internal/http"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/httpkit"
	"terrasite_backend/platform/logger"
	"terrasite_backend/platform/validator"
)

// loginAttemptsPerMinute bounds password guessing per client IP.
const loginAttemptsPerMinute = 5

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	limiter *httpkit.IPRateLimiter
}

// NewModule creates and initializes the auth module.
func NewModule(cfg config.AdminConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cfg)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		limiter: httpkit.NewPerMinuteLimiter(loginAttemptsPerMinute, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the token service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts POST /admin/login.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.AdminPublic.POST("/login", m.limiter.RateLimit(), m.handler.Login)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
