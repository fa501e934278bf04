package listings

import (
	"slices"
	"sort"
	"strings"
)

// AllLocations disables the location filter.
const AllLocations = "All"

// techKeywords widen the skills filter so generic engineering roles are kept.
var techKeywords = []string{"engineer", "developer", "software", "tech", "it", "intern", "student"}

// FilterBySkills keeps jobs whose title, description, requirements or
// company mention any skill or any generic tech keyword. No skills keeps
// everything.
func FilterBySkills(jobs []Job, skills []string) []Job {
	if len(skills) == 0 {
		return jobs
	}

	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		text := strings.ToLower(strings.Join([]string{j.Title, j.Description, j.Requirements, j.Company}, " "))
		if containsAny(text, skills) || containsAny(text, techKeywords) {
			out = append(out, j)
		}
	}
	return out
}

// FilterByLocation keeps jobs whose location, country, city or region
// contains location. "" and "All" keep everything.
func FilterByLocation(jobs []Job, location string) []Job {
	if location == "" || location == AllLocations {
		return jobs
	}

	needle := strings.ToLower(location)
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		for _, field := range []string{j.Location, j.Country, j.City, j.Region} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// Recommend applies both filters and orders the result newest first.
func Recommend(jobs []Job, skills []string, location string) []Job {
	out := FilterByLocation(FilterBySkills(jobs, skills), location)
	out = slices.Clone(out)
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].DatePosted.After(out[k].DatePosted)
	})
	return out
}

// Options are the distinct values a client can offer as filter choices.
type Options struct {
	Locations []string `json:"locations"`
	Companies []string `json:"companies"`
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
	Regions   []string `json:"regions"`
	Sources   []string `json:"sources"`
	// LocationChoices mixes full locations, countries, cities and regions
	// behind a leading "All".
	LocationChoices []string `json:"locationChoices"`
}

func BuildOptions(jobs []Job) Options {
	pick := func(f func(Job) string) []string {
		return unique(jobs, f)
	}

	o := Options{
		Locations: pick(func(j Job) string { return j.Location }),
		Companies: pick(func(j Job) string { return j.Company }),
		Countries: pick(func(j Job) string { return known(j.Country) }),
		Cities:    pick(func(j Job) string { return known(j.City) }),
		Regions:   pick(func(j Job) string { return known(j.Region) }),
		Sources:   pick(func(j Job) string { return j.Source }),
	}

	mixed := map[string]bool{}
	for _, group := range [][]string{o.Locations, o.Countries, o.Cities, o.Regions} {
		for _, v := range group {
			mixed[v] = true
		}
	}
	delete(mixed, AllLocations)
	choices := make([]string, 0, len(mixed)+1)
	for v := range mixed {
		choices = append(choices, v)
	}
	sort.Strings(choices)
	o.LocationChoices = append([]string{AllLocations}, choices...)
	return o
}

func unique(jobs []Job, field func(Job) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, j := range jobs {
		v := field(j)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func known(v string) string {
	if v == Unknown {
		return ""
	}
	return v
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}
