// Package tracker derives the read-side views of a user's internship
// records: follow-up reminders, the paginated table and the insights
// summary. Every function is pure; callers pass the clock and calendar
// location explicitly.
package tracker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/garnizeh/interntrack/pkg/models"
)

// UnknownStatus labels records whose status is missing.
const UnknownStatus = "Unknown"

// NormalizeStatus folds free-form status values into display labels.
func NormalizeStatus(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return UnknownStatus
	}

	folded := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return unicode.ToLower(r)
	}, s)

	switch folded {
	case "followup":
		return string(models.StatusFollowUp)
	case "offer", "offered", "accepted":
		return string(models.StatusAccepted)
	case "withdraw", "withdrawn":
		return string(models.StatusWithdrawn)
	case "reject", "rejected":
		return string(models.StatusRejected)
	}

	for _, known := range models.Statuses {
		if strings.EqualFold(s, string(known)) {
			return string(known)
		}
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
