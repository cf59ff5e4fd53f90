// Package domain holds the lead model, the contact-channel table and the
// duplicate rule. It has no dependencies on transport or storage.
package domain

import (
	"strings"
	"time"
)

// Submission is a validated lead form as the site sent it.
// Only the companion field(s) of ContactMethod are expected to be set.
type Submission struct {
	Name          string        `json:"name"`
	Services      []string      `json:"services"`
	Description   string        `json:"description"`
	Budget        Budget        `json:"budget"`
	ContactMethod ContactMethod `json:"contact_method"`
	Phone         string        `json:"phone,omitempty"`
	Telegram      string        `json:"telegram,omitempty"`
	PhoneNumber   string        `json:"phone_number,omitempty"`
	CallTime      string        `json:"call_time,omitempty"`
	Email         string        `json:"email,omitempty"`
}

// Lead is an accepted, persisted submission. Leads are never mutated.
type Lead struct {
	ID int64 `json:"id"`
	Submission
	Timestamp string `json:"timestamp"`
}

// NewLead stamps a submission with its id and acceptance time.
func NewLead(id int64, sub Submission, acceptedAt time.Time) Lead {
	return Lead{ID: id, Submission: sub, Timestamp: FormatTimestamp(acceptedAt)}
}

// timestampLayout keeps microsecond precision so values survive a round trip
// through Postgres and SQLite unchanged.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// legacyLayouts are the naive local timestamps older lead files contain.
// Fractional seconds are accepted without being spelled out in the layout.
var legacyLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders an acceptance time as an ISO-8601 UTC string.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(timestampLayout)
}

// ParseTimestamp accepts RFC 3339 strings and legacy naive timestamps, which
// are read as local time.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if legacy, lerr := time.ParseInLocation(layout, value, time.Local); lerr == nil {
			return legacy, nil
		}
	}
	return time.Time{}, err
}

// AcceptedAt parses the stored timestamp.
func (l Lead) AcceptedAt() (time.Time, error) {
	return ParseTimestamp(l.Timestamp)
}
