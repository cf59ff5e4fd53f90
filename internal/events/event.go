// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadAccepted is published once a lead has been validated and stored.
// Notification and archiving subscribe to it.
type LeadAccepted struct {
	BaseEvent
	Lead domain.Lead `json:"lead"`
}

func (e LeadAccepted) EventName() string { return "leads.lead.accepted" }
