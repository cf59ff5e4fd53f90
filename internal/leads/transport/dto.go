package transport

import (
	"strings"

	"terrasite_backend/internal/leads/domain"
)

// SubmitLeadRequest is the body of POST /submit-form.
type SubmitLeadRequest struct {
	Name          string   `json:"name" validate:"required,min=2,max=50,person_name"`
	Services      []string `json:"services" validate:"required,min=1"`
	Description   string   `json:"description" validate:"required,min=50,max=2000,not_repeated,min_words=8"`
	Budget        string   `json:"budget" validate:"required,budget"`
	ContactMethod string   `json:"contact_method" validate:"required,contact_method"`
	Phone         string   `json:"phone,omitempty" validate:"omitempty,ru_phone"`
	Telegram      string   `json:"telegram,omitempty" validate:"omitempty,telegram_username"`
	PhoneNumber   string   `json:"phone_number,omitempty" validate:"omitempty,ru_phone"`
	CallTime      string   `json:"call_time,omitempty" validate:"omitempty,min=5,max=200"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

// Normalize trims surrounding whitespace. Nothing else is rewritten: the
// stored lead keeps the text exactly as sent, and markup is escaped only
// where it is rendered. Validation runs on the normalized request.
func (r *SubmitLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Services = trimAll(r.Services)
	r.Description = strings.TrimSpace(r.Description)
	r.Budget = strings.TrimSpace(r.Budget)
	r.ContactMethod = strings.TrimSpace(r.ContactMethod)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Telegram = strings.TrimSpace(r.Telegram)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.CallTime = strings.TrimSpace(r.CallTime)
	r.Email = strings.TrimSpace(r.Email)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// ToSubmission converts a validated request into the domain model.
func (r SubmitLeadRequest) ToSubmission() domain.Submission {
	return domain.Submission{
		Name:          r.Name,
		Services:      append([]string(nil), r.Services...),
		Description:   r.Description,
		Budget:        domain.Budget(r.Budget),
		ContactMethod: domain.ContactMethod(r.ContactMethod),
		Phone:         r.Phone,
		Telegram:      r.Telegram,
		PhoneNumber:   r.PhoneNumber,
		CallTime:      r.CallTime,
		Email:         r.Email,
	}
}

// LeadResponse is one entry of GET /admin/leads.
type LeadResponse = domain.Lead
