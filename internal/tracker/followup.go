package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/garnizeh/interntrack/pkg/models"
)

type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketUpcoming Bucket = "upcoming"
)

// UpcomingWindow is the number of days ahead a follow-up starts surfacing.
const UpcomingWindow = 3

// Reminder is one surfaced follow-up.
type Reminder struct {
	Internship models.Internship `json:"internship"`
	Bucket     Bucket            `json:"bucket"`
	Action     string            `json:"action"`
	Days       int               `json:"days"`
	Message    string            `json:"message"`
}

type FollowUps struct {
	Overdue  []Reminder `json:"overdue"`
	Upcoming []Reminder `json:"upcoming"`
}

// All returns overdue reminders followed by upcoming ones.
func (f FollowUps) All() []Reminder {
	out := make([]Reminder, 0, len(f.Overdue)+len(f.Upcoming))
	out = append(out, f.Overdue...)
	return append(out, f.Upcoming...)
}

// DaysUntil returns ceil((ref - now) / 24h).
func DaysUntil(ref, now time.Time) int {
	return int(math.Ceil(float64(ref.Sub(now)) / float64(24*time.Hour)))
}

// Classify places a single record in a bucket. The second return value is the
// signed day difference; ok is false when the record is not surfaced.
func Classify(in models.Internship, now time.Time) (bucket Bucket, days int, ok bool) {
	if !in.Status.Is(models.StatusFollowUp) {
		return "", 0, false
	}

	ref := in.ApplicationDate
	if in.FollowUpDate != nil {
		ref = *in.FollowUpDate
	}

	days = DaysUntil(ref, now)
	switch {
	case days < 0:
		return BucketOverdue, days, true
	case days >= 1 && days <= UpcomingWindow:
		return BucketUpcoming, days, true
	}
	return "", days, false
}

// ClassifyFollowUps builds the reminder surface. Records listed in dismissed
// or persisted as dismissed are left out of both buckets.
func ClassifyFollowUps(records []models.Internship, now time.Time, dismissed map[string]bool) FollowUps {
	out := FollowUps{Overdue: []Reminder{}, Upcoming: []Reminder{}}
	for _, in := range records {
		if in.FollowUpDismissed || dismissed[in.ID] {
			continue
		}
		bucket, days, ok := Classify(in, now)
		if !ok {
			continue
		}

		r := Reminder{Internship: in, Bucket: bucket, Days: days}
		if bucket == BucketOverdue {
			r.Action = "Update"
			r.Message = "Follow-up update"
			out.Overdue = append(out.Overdue, r)
			continue
		}
		r.Action = "Prepare"
		r.Message = prepareMessage(days)
		out.Upcoming = append(out.Upcoming, r)
	}
	return out
}

func prepareMessage(days int) string {
	if days == 1 {
		return "Prepare in 1 day"
	}
	return fmt.Sprintf("Prepare in %d days", days)
}
