package models

import (
	"fmt"
	"strings"
	"time"
)

// Domain models matching the database schema in db/migrations/0001_init.sql

type Status string

const (
	StatusAccepted  Status = "Accepted"
	StatusWithdrawn Status = "Withdrawn"
	StatusRejected  Status = "Rejected"
	StatusPending   Status = "Pending"
	StatusFollowUp  Status = "Follow Up"
)

// Statuses lists every accepted status value in display order.
var Statuses = []Status{StatusAccepted, StatusWithdrawn, StatusRejected, StatusPending, StatusFollowUp}

// Valid reports whether s is one of the enumerated statuses (exact match).
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Is compares statuses case-insensitively.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(other))
}

type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Resume is the PDF attachment stored inline on an internship.
type Resume struct {
	Data        []byte `json:"-"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`
}

type Internship struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id"`
	Company           string     `json:"company" db:"company"`
	Position          string     `json:"position" db:"position"`
	ApplicationDate   time.Time  `json:"applicationDate" db:"application_date"`
	Status            Status     `json:"status" db:"status"`
	FollowUpDate      *time.Time `json:"followUpDate,omitempty" db:"follow_up_date"`
	FollowUpDismissed bool       `json:"followUpDismissed" db:"follow_up_dismissed"`
	Archived          bool       `json:"archived" db:"archived"`
	Resume            *Resume    `json:"resume,omitempty"`
	Comments          string     `json:"comments,omitempty" db:"comments"`
	Links             []Link     `json:"links"`
	Created           int64      `json:"created" db:"created"`
	Updated           int64      `json:"updated" db:"updated"`
}

// InternshipPatch carries a partial update; nil fields are left untouched.
type InternshipPatch struct {
	Company           *string
	Position          *string
	ApplicationDate   *time.Time
	Status            *Status
	FollowUpDate      *time.Time
	ClearFollowUpDate bool
	FollowUpDismissed *bool
	Archived          *bool
	Comments          *string
	Links             *[]Link
}

// Empty reports whether the patch changes nothing.
func (p InternshipPatch) Empty() bool {
	return p.Company == nil && p.Position == nil && p.ApplicationDate == nil && p.Status == nil &&
		p.FollowUpDate == nil && !p.ClearFollowUpDate && p.FollowUpDismissed == nil &&
		p.Archived == nil && p.Comments == nil && p.Links == nil
}

// Apply copies the patch onto in.
func (p InternshipPatch) Apply(in *Internship) {
	if p.Company != nil {
		in.Company = *p.Company
	}
	if p.Position != nil {
		in.Position = *p.Position
	}
	if p.ApplicationDate != nil {
		in.ApplicationDate = *p.ApplicationDate
	}
	if p.Status != nil {
		in.Status = *p.Status
	}
	if p.ClearFollowUpDate {
		in.FollowUpDate = nil
	}
	if p.FollowUpDate != nil {
		d := *p.FollowUpDate
		in.FollowUpDate = &d
	}
	if p.FollowUpDismissed != nil {
		in.FollowUpDismissed = *p.FollowUpDismissed
	}
	if p.Archived != nil {
		in.Archived = *p.Archived
	}
	if p.Comments != nil {
		in.Comments = *p.Comments
	}
	if p.Links != nil {
		in.Links = append([]Link(nil), (*p.Links)...)
	}
}

// ParseStatus resolves s to an enumerated status ignoring case and
// surrounding space. Unknown values are returned unchanged with ok=false.
func ParseStatus(s string) (Status, bool) {
	trimmed := strings.TrimSpace(s)
	for _, v := range Statuses {
		if strings.EqualFold(trimmed, string(v)) {
			return v, true
		}
	}
	return Status(s), false
}

// DateLayout is the calendar-date form accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}
