package domain

import (
	"strings"
)

// ContactMethod is the channel a lead wants to be contacted through.
type ContactMethod string

const (
	ContactWhatsApp ContactMethod = "whatsapp"
	ContactTelegram ContactMethod = "telegram"
	ContactPhone    ContactMethod = "phone"
	ContactEmail    ContactMethod = "email"
)

// Channel describes everything channel-specific about a contact method.
// Validation, duplicate detection and notifications all read this table.
type Channel struct {
	Method ContactMethod
	// Label is the human channel name.
	Label string
	// Required lists the JSON names of the companion fields that must be non-empty.
	Required []string
	// MissingMessage is shown when a required companion field is empty.
	MissingMessage string

	identity func(Submission) string
	display  func(Submission) string
	fields   func(Submission) []string
}

var channels = map[ContactMethod]Channel{
	ContactWhatsApp: {
		Method:         ContactWhatsApp,
		Label:          "WhatsApp",
		Required:       []string{"phone"},
		MissingMessage: "Введите номер WhatsApp",
		identity:       func(s Submission) string { return s.Phone },
		fields:         func(s Submission) []string { return []string{s.Phone} },
	},
	ContactTelegram: {
		Method:         ContactTelegram,
		Label:          "Telegram",
		Required:       []string{"telegram"},
		MissingMessage: "Введите Telegram username",
		identity:       func(s Submission) string { return s.Telegram },
		fields:         func(s Submission) []string { return []string{s.Telegram} },
	},
	ContactPhone: {
		Method:         ContactPhone,
		Label:          "Звонок",
		Required:       []string{"phone_number", "call_time"},
		MissingMessage: "Введите номер телефона и время для звонка",
		identity:       func(s Submission) string { return s.PhoneNumber },
		display: func(s Submission) string {
			return s.PhoneNumber + ", время: " + s.CallTime
		},
		fields: func(s Submission) []string { return []string{s.PhoneNumber, s.CallTime} },
	},
	ContactEmail: {
		Method:         ContactEmail,
		Label:          "Email",
		Required:       []string{"email"},
		MissingMessage: "Введите email адрес",
		identity:       func(s Submission) string { return s.Email },
		fields:         func(s Submission) []string { return []string{s.Email} },
	},
}

// ChannelFor looks up the channel for m.
func ChannelFor(m ContactMethod) (Channel, bool) {
	ch, ok := channels[m]
	return ch, ok
}

// Valid reports whether m is a known contact method.
func (m ContactMethod) Valid() bool {
	_, ok := channels[m]
	return ok
}

// Label returns the human channel name, or the raw value for unknown methods.
func (m ContactMethod) Label() string {
	if ch, ok := channels[m]; ok {
		return ch.Label
	}
	return string(m)
}

// HasRequiredFields reports whether every companion field is non-blank.
func (c Channel) HasRequiredFields(s Submission) bool {
	for _, v := range c.fields(s) {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Identity returns the normalized contact identity of s: its channel's
// companion value, trimmed and case-folded. Unknown methods yield "".
func Identity(s Submission) string {
	ch, ok := channels[s.ContactMethod]
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(ch.identity(s)))
}

// ContactSummary is the contact value as shown to a human.
func ContactSummary(s Submission) string {
	ch, ok := channels[s.ContactMethod]
	if !ok {
		return ""
	}
	if ch.display != nil {
		return ch.display(s)
	}
	return ch.identity(s)
}
