// Package leads provides the lead intake bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"terrasite_backend/internal/events"
	apphttp "terrasite_backend/internal/http"
	"terrasite_backend/internal/leads/handler"
	"terrasite_backend/internal/leads/repository"
	"terrasite_backend/internal/leads/service"
	"terrasite_backend/internal/leads/validation"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"
	"terrasite_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the intake pipeline on top of an opened repository.
func NewModule(repo repository.Repository, eventBus events.Bus, val *validator.Validator, cfg config.LeadsConfig, log *logger.Logger, opts ...service.Option) (*Module, error) {
	fields, err := validation.NewFieldValidator(val)
	if err != nil {
		return nil, err
	}

	svc := service.New(repo, fields, eventBus, cfg, log, opts...)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public form endpoint and the admin listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.POST("/submit-form", ctx.SubmitRateLimiter.RateLimit(), m.handler.Submit)
	ctx.Admin.GET("/leads", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
