package tracker

import (
	"sort"
	"strings"
	"time"

	"github.com/garnizeh/interntrack/pkg/models"
)

// TrendMonths is the length of the monthly trend series.
const TrendMonths = 6

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type MonthCount struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
}

type Insights struct {
	Total           int           `json:"total"`
	ThisMonth       int           `json:"thisMonth"`
	Last7           int           `json:"last7"`
	Last30          int           `json:"last30"`
	Avg7            float64       `json:"avg7"`
	Avg30           float64       `json:"avg30"`
	Accepted        int           `json:"accepted"`
	FollowUp        int           `json:"followUp"`
	StatusBreakdown []StatusCount `json:"statusBreakdown"`
	CurrentStreak   int           `json:"currentStreak"`
	BestStreak      int           `json:"bestStreak"`
	LongestGap      int           `json:"longestGap"`
	MonthlyTrend    []MonthCount  `json:"monthlyTrend"`
}

// ComputeInsights summarizes the non-archived records. Calendar days and
// months are evaluated in loc (UTC when nil); date-only values keep their
// own calendar date.
func ComputeInsights(records []models.Internship, now time.Time, loc *time.Location) Insights {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := dayNumber(now)

	current := Partition(records, false)
	ins := Insights{Total: len(current)}

	breakdown := map[string]int{}
	days := map[int]bool{}

	for _, in := range current {
		applied := calendarDate(in.ApplicationDate, loc)
		d := dayNumber(applied)
		days[d] = true

		if applied.Year() == now.Year() && applied.Month() == now.Month() {
			ins.ThisMonth++
		}
		if d <= today && d > today-7 {
			ins.Last7++
		}
		if d <= today && d > today-30 {
			ins.Last30++
		}

		status := strings.TrimSpace(string(in.Status))
		if strings.EqualFold(status, string(models.StatusAccepted)) {
			ins.Accepted++
		}
		if strings.EqualFold(status, string(models.StatusFollowUp)) {
			ins.FollowUp++
		}
		breakdown[NormalizeStatus(status)]++
	}

	ins.Avg7 = float64(ins.Last7) / 7
	ins.Avg30 = float64(ins.Last30) / 30
	ins.StatusBreakdown = sortBreakdown(breakdown)
	ins.CurrentStreak, ins.BestStreak, ins.LongestGap = streaks(days, today)
	ins.MonthlyTrend = monthlyTrend(current, now, loc)
	return ins
}

// calendarDate places t on a calendar. Midnight UTC is how a date without a
// time of day is stored, so it keeps its UTC date; anything else is read in loc.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u
	}
	return t.In(loc)
}

// dayNumber maps the calendar date of t (in its own location) to a day index.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func sortBreakdown(counts map[string]int) []StatusCount {
	out := make([]StatusCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, StatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// streaks derives the current streak, best streak and longest gap from the
// set of activity days.
func streaks(days map[int]bool, today int) (current, best, gap int) {
	if len(days) == 0 {
		return 0, 0, 0
	}

	sorted := make([]int, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Ints(sorted)

	run := 1
	best = 1
	for i := 1; i < len(sorted); i++ {
		diff := sorted[i] - sorted[i-1]
		if diff == 1 {
			run++
		} else {
			run = 1
			gap = max(gap, diff-1)
		}
		best = max(best, run)
	}

	// today itself counts as silent when nothing was filed
	if last := sorted[len(sorted)-1]; last < today {
		gap = max(gap, today-last)
	}

	if days[today] {
		for d := today; days[d]; d-- {
			current++
		}
	}
	return current, best, gap
}

func monthlyTrend(records []models.Internship, now time.Time, loc *time.Location) []MonthCount {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	out := make([]MonthCount, TrendMonths)
	index := map[[2]int]int{}
	for i := range TrendMonths {
		m := first.AddDate(0, i-(TrendMonths-1), 0)
		out[i] = MonthCount{Label: m.Month().String()[:3], Year: m.Year(), Month: int(m.Month())}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, in := range records {
		applied := calendarDate(in.ApplicationDate, loc)
		if i, ok := index[[2]int{applied.Year(), int(applied.Month())}]; ok {
			out[i].Count++
		}
	}
	return out
}
