package listings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Job is the canonical posting shape served to clients.
type Job struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	Requirements     string    `json:"requirements"`
	ApplyURL         string    `json:"applyUrl"`
	Salary           string    `json:"salary"`
	DatePosted       time.Time `json:"datePosted"`
	Source           string    `json:"source"`
	JobType          string    `json:"jobType"`
	Remote           bool      `json:"remote"`
	Tags             []string  `json:"tags"`
	OrganizationLogo string    `json:"organizationLogo,omitempty"`
	Country          string    `json:"country"`
	City             string    `json:"city"`
	Region           string    `json:"region"`
}

// Unknown marks a missing country, city or region.
const Unknown = "Unknown"

// ErrNotArray is returned by ParsePayload when no list of jobs can be found.
var ErrNotArray = errors.New("listings payload is not an array")

// ParsePayload locates the job array in an aggregator response. The list may
// be the root value or nested under data, jobs and results in turn.
func ParsePayload(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json payload: %w", ErrNotArray)
	}

	res := gjson.ParseBytes(body)
	for _, key := range []string{"data", "jobs", "results"} {
		if res.IsObject() {
			if nested := res.Get(key); nested.Exists() {
				res = nested
			}
		}
	}

	if !res.IsArray() {
		return nil, fmt.Errorf("got %s: %w", res.Type, ErrNotArray)
	}
	return res.Array(), nil
}

// Transform maps one raw posting onto Job. now stands in for a missing or
// unreadable posting date.
func Transform(raw gjson.Result, index int, now time.Time) Job {
	j := Job{
		ID:               orDefault(raw.Get("id").String(), fmt.Sprintf("ext_%d", index)),
		Title:            orDefault(raw.Get("title").String(), "Software Engineer Intern"),
		Company:          orDefault(raw.Get("organization").String(), "Tech Company"),
		Location:         location(raw),
		Description:      raw.Get("description").String(),
		Requirements:     raw.Get("requirements").String(),
		ApplyURL:         orDefault(raw.Get("url").String(), "#"),
		Salary:           orDefault(salary(raw.Get("salary_raw")), "Competitive"),
		DatePosted:       postedAt(raw.Get("date_posted").String(), now),
		Source:           orDefault(raw.Get("source").String(), "External API"),
		JobType:          orDefault(joinStrings(raw.Get("employment_type")), "Internship"),
		Remote:           raw.Get("remote_derived").Bool(),
		Tags:             []string{},
		OrganizationLogo: raw.Get("organization_logo").String(),
		Country:          firstOr(raw.Get("countries_derived"), Unknown),
		City:             firstOr(raw.Get("cities_derived"), Unknown),
		Region:           firstOr(raw.Get("regions_derived"), Unknown),
	}
	for _, t := range raw.Get("tags").Array() {
		if s := t.String(); s != "" {
			j.Tags = append(j.Tags, s)
		}
	}
	return j
}

// TransformAll maps every element of items.
func TransformAll(items []gjson.Result, now time.Time) []Job {
	out := make([]Job, 0, len(items))
	for i, it := range items {
		out = append(out, Transform(it, i, now))
	}
	return out
}

func location(raw gjson.Result) string {
	if derived := raw.Get("locations_derived.0").String(); derived != "" {
		return derived
	}

	addr := raw.Get("locations_raw.0.address")
	if !addr.Exists() {
		return "Remote"
	}
	var parts []string
	for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
		if v := addr.Get(key).String(); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "Remote"
	}
	return strings.Join(parts, ", ")
}

// salary renders salary_raw, which is either free text or a schema.org
// MonetaryAmount object.
func salary(v gjson.Result) string {
	switch {
	case !v.Exists():
		return ""
	case v.Type == gjson.String:
		return v.String()
	case !v.IsObject():
		return ""
	}

	currency := v.Get("currency").String()
	lo, hi := v.Get("value.minValue"), v.Get("value.maxValue")
	if !lo.Exists() && !hi.Exists() {
		lo = v.Get("value.value")
	}

	var amount string
	switch {
	case lo.Exists() && hi.Exists():
		amount = lo.String() + "-" + hi.String()
	case lo.Exists():
		amount = lo.String()
	case hi.Exists():
		amount = hi.String()
	default:
		return ""
	}

	out := strings.TrimSpace(currency + " " + amount)
	if unit := v.Get("value.unitText").String(); unit != "" {
		out += " / " + strings.ToLower(unit)
	}
	return out
}

var postedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func postedAt(s string, now time.Time) time.Time {
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}

func joinStrings(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var parts []string
	for _, e := range v.Array() {
		if s := e.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func firstOr(v gjson.Result, def string) string {
	if s := v.Get("0").String(); s != "" {
		return s
	}
	return def
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
