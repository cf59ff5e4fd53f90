// Package service runs the lead intake pipeline: field validation, contact
// check, duplicate check, storage and the accepted-lead event.
package service

import (
	"context"
	"errors"
	"time"

	"terrasite_backend/internal/events"
	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/internal/leads/repository"
	"terrasite_backend/internal/leads/transport"
	"terrasite_backend/internal/leads/validation"
	"terrasite_backend/platform/apperr"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"
)

const (
	// MsgAccepted is returned to the site on success.
	MsgAccepted = "Заявка успешно отправлена"
	// MsgProcessingFailed hides internal failures from the site.
	MsgProcessingFailed = "Ошибка обработки заявки"
)

// Service processes lead submissions.
type Service struct {
	repo   repository.Repository
	fields *validation.FieldValidator
	bus    events.Bus
	log    *logger.Logger
	window time.Duration
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the lead service.
func New(repo repository.Repository, fields *validation.FieldValidator, bus events.Bus, cfg config.LeadsConfig, log *logger.Logger, opts ...Option) *Service {
	window := cfg.GetDuplicateWindow()
	if window <= 0 {
		window = domain.DefaultDuplicateWindow
	}

	s := &Service{
		repo:   repo,
		fields: fields,
		bus:    bus,
		log:    log,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessLead validates, de-duplicates and stores a submission, then
// publishes LeadAccepted. Rejections come back as *apperr.Error wrapping the
// domain error; any other failure is reported as a generic internal error.
func (s *Service) ProcessLead(ctx context.Context, req transport.SubmitLeadRequest) (domain.Lead, error) {
	if err := s.fields.Validate(&req); err != nil {
		return domain.Lead{}, s.reject(ctx, err)
	}

	sub := req.ToSubmission()
	if err := validation.ValidateContact(sub); err != nil {
		return domain.Lead{}, s.reject(ctx, err)
	}

	lead, err := s.store(ctx, sub)
	if err != nil {
		return domain.Lead{}, s.reject(ctx, err)
	}

	s.log.WithContext(ctx).Info("lead accepted",
		"lead_id", lead.ID,
		"name", lead.Name,
		"contact_method", string(lead.ContactMethod),
		"contact", domain.ContactSummary(lead.Submission),
	)

	s.bus.Publish(ctx, events.LeadAccepted{
		BaseEvent: events.NewBaseEventAt(s.now()),
		Lead:      lead,
	})

	return lead, nil
}

// List returns every stored lead in creation order.
func (s *Service) List(ctx context.Context) ([]domain.Lead, error) {
	leads, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, s.reject(ctx, err)
	}
	return leads, nil
}

// store runs the duplicate scan as the repository guard, so the scan and the
// append share one critical section.
func (s *Service) store(ctx context.Context, sub domain.Submission) (domain.Lead, error) {
	now := s.now()
	return s.repo.AddGuarded(ctx, sub, now, func(history []domain.Lead) error {
		existing, dup := domain.FindRecentDuplicate(sub, history, now, s.window)
		if !dup {
			return nil
		}
		return &domain.DuplicateSubmissionError{
			Method:     sub.ContactMethod,
			ExistingID: existing.ID,
			Window:     s.window,
		}
	})
}

// reject maps pipeline errors onto apperr kinds.
func (s *Service) reject(ctx context.Context, err error) error {
	var (
		fieldErr   *domain.FieldValidationError
		missingErr *domain.MissingContactFieldError
		dupErr     *domain.DuplicateSubmissionError
		storeErr   *domain.StorageError
	)

	switch {
	case errors.As(err, &fieldErr):
		return apperr.Wrap(apperr.KindValidation, fieldErr.Message, err).
			WithDetails(map[string]string{"field": fieldErr.Field})
	case errors.As(err, &missingErr):
		return apperr.Wrap(apperr.KindValidation, missingErr.Message(), err).
			WithDetails(map[string]interface{}{"contact_method": missingErr.Method, "fields": missingErr.Fields})
	case errors.As(err, &dupErr):
		s.log.WithContext(ctx).Info("duplicate lead rejected",
			"contact_method", string(dupErr.Method),
			"existing_lead_id", dupErr.ExistingID,
		)
		return apperr.Wrap(apperr.KindDuplicate, domain.DuplicateMessage, err)
	case errors.As(err, &storeErr):
		s.log.WithContext(ctx).StorageError(storeErr.Op, storeErr.Err)
	default:
		s.log.WithContext(ctx).Error("lead processing failed", "error", err)
	}
	return apperr.Wrap(apperr.KindInternal, MsgProcessingFailed, err).WithOp("leads.process")
}
