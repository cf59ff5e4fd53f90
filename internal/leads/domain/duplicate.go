package domain

import "time"

// DefaultDuplicateWindow is how long an identity stays blocked on a channel.
const DefaultDuplicateWindow = 300 * time.Second

// FindRecentDuplicate scans history for a lead accepted less than window
// before now, on the same channel, with the same normalized identity.
// Leads whose timestamp cannot be parsed are skipped. An empty candidate
// identity never matches.
func FindRecentDuplicate(candidate Submission, history []Lead, now time.Time, window time.Duration) (Lead, bool) {
	identity := Identity(candidate)
	if identity == "" {
		return Lead{}, false
	}

	for _, lead := range history {
		acceptedAt, err := lead.AcceptedAt()
		if err != nil {
			continue
		}
		if now.Sub(acceptedAt) >= window {
			continue
		}
		if lead.ContactMethod != candidate.ContactMethod {
			continue
		}
		if Identity(lead.Submission) == identity {
			return lead, true
		}
	}
	return Lead{}, false
}
