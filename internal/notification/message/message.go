// Package message renders the human-readable summary of an accepted lead.
// Email and Telegram notifiers both send it.
package message

import (
	"strings"
	"time"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/platform/phone"
)

const (
	subjectPrefix   = "Новая заявка с сайта Terrasite от "
	submittedLayout = "02.01.2006 15:04"
)

// Message is a rendered lead notification.
type Message struct {
	LeadID      int64
	Subject     string
	Name        string
	Channel     string
	Contact     string
	Services    string
	Budget      string
	Description string
	SubmittedAt string
}

// Build renders lead. The acceptance time is shown in loc; nil means UTC.
func Build(lead domain.Lead, loc *time.Location) Message {
	if loc == nil {
		loc = time.UTC
	}

	submitted := lead.Timestamp
	if at, err := lead.AcceptedAt(); err == nil {
		submitted = at.In(loc).Format(submittedLayout)
	}

	return Message{
		LeadID:      lead.ID,
		Subject:     subjectPrefix + lead.Name,
		Name:        lead.Name,
		Channel:     lead.ContactMethod.Label(),
		Contact:     contact(lead.Submission),
		Services:    strings.Join(lead.Services, ", "),
		Budget:      lead.Budget.Label(),
		Description: lead.Description,
		SubmittedAt: submitted,
	}
}

// contact shows phone numbers in international format when they parse.
func contact(s domain.Submission) string {
	switch s.ContactMethod {
	case domain.ContactWhatsApp:
		return phone.FormatInternational(s.Phone)
	case domain.ContactPhone:
		return phone.FormatInternational(s.PhoneNumber) + ", время: " + strings.TrimSpace(s.CallTime)
	default:
		return domain.ContactSummary(s)
	}
}

// Text is the plain-text body.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString("Новая заявка с сайта Terrasite!\n\n")
	b.WriteString("Контактная информация:\n")
	b.WriteString("Имя: " + m.Name + "\n")
	b.WriteString("Способ связи: " + m.Channel + "\n")
	b.WriteString("Контакт: " + m.Contact + "\n\n")
	b.WriteString("Детали проекта:\n")
	b.WriteString("Услуги: " + m.Services + "\n")
	b.WriteString("Бюджет: " + m.Budget + "\n\n")
	b.WriteString("Описание проекта:\n")
	b.WriteString(m.Description + "\n\n")
	b.WriteString("Время подачи заявки: " + m.SubmittedAt + "\n\n")
	b.WriteString("---\n")
	b.WriteString("Отправлено автоматически с сайта Terrasite")
	return b.String()
}
