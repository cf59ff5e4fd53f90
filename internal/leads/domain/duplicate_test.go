package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func leadAt(id int64, sub Submission, ago time.Duration) Lead {
	return NewLead(id, sub, testNow.Add(-ago))
}

func emailSubmission(email string) Submission {
	return Submission{ContactMethod: ContactEmail, Email: email}
}

func TestFindRecentDuplicate(t *testing.T) {
	window := DefaultDuplicateWindow
	cases := []struct {
		name      string
		candidate Submission
		history   []Lead
		want      bool
	}{
		{
			name:      "same email inside window",
			candidate: emailSubmission("a@b.com"),
			history:   []Lead{leadAt(1, emailSubmission("a@b.com"), time.Minute)},
			want:      true,
		},
		{
			name:      "identity is case and space insensitive",
			candidate: emailSubmission("  A@B.com "),
			history:   []Lead{leadAt(1, emailSubmission("a@b.COM"), time.Minute)},
			want:      true,
		},
		{
			name:      "just outside window",
			candidate: emailSubmission("a@b.com"),
			history:   []Lead{leadAt(1, emailSubmission("a@b.com"), 301 * time.Second)},
			want:      false,
		},
		{
			name:      "exactly at window boundary",
			candidate: emailSubmission("a@b.com"),
			history:   []Lead{leadAt(1, emailSubmission("a@b.com"), window)},
			want:      false,
		},
		{
			name:      "same number on another channel",
			candidate: Submission{ContactMethod: ContactPhone, PhoneNumber: "+79261234567", CallTime: "после 18:00"},
			history: []Lead{leadAt(1, Submission{ContactMethod: ContactWhatsApp, Phone: "+79261234567"}, time.Minute)},
			want:    false,
		},
		{
			name:      "empty candidate identity",
			candidate: emailSubmission("   "),
			history:   []Lead{leadAt(1, emailSubmission(""), time.Minute)},
			want:      false,
		},
		{
			name:      "different identity",
			candidate: Submission{ContactMethod: ContactTelegram, Telegram: "@someone"},
			history:   []Lead{leadAt(1, Submission{ContactMethod: ContactTelegram, Telegram: "@another"}, time.Minute)},
			want:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := FindRecentDuplicate(tc.candidate, tc.history, testNow, window)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindRecentDuplicateSkipsUnparseableTimestamps(t *testing.T) {
	broken := Lead{ID: 1, Submission: emailSubmission("a@b.com"), Timestamp: "yesterday-ish"}
	good := leadAt(2, emailSubmission("a@b.com"), time.Minute)

	_, dup := FindRecentDuplicate(emailSubmission("a@b.com"), []Lead{broken}, testNow, DefaultDuplicateWindow)
	assert.False(t, dup)

	match, dup := FindRecentDuplicate(emailSubmission("a@b.com"), []Lead{broken, good}, testNow, DefaultDuplicateWindow)
	assert.True(t, dup)
	assert.Equal(t, int64(2), match.ID)
}

func TestParseTimestampAcceptsLegacyNaiveValues(t *testing.T) {
	got, err := ParseTimestamp("2026-03-14T15:04:05.123456")
	assert.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())

	_, err = ParseTimestamp("2026-03-14T15:04:05")
	assert.NoError(t, err)

	_, err = ParseTimestamp("14.03.2026")
	assert.Error(t, err)
}

func TestFormatTimestampRoundTrips(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 15, 123456789, time.FixedZone("MSK", 3*3600))
	formatted := FormatTimestamp(at)
	assert.Equal(t, "2026-03-14T06:30:15.123456Z", formatted)

	parsed, err := ParseTimestamp(formatted)
	assert.NoError(t, err)
	assert.Equal(t, formatted, FormatTimestamp(parsed))
}
