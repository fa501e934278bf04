package tracker

import (
	"sort"
	"strings"

	"github.com/garnizeh/interntrack/pkg/models"
)

type Tab string

const (
	TabCurrent  Tab = "current"
	TabArchived Tab = "archived"
)

type DateSort string

const (
	SortNone   DateSort = ""
	SortNewest DateSort = "newest"
	SortOldest DateSort = "oldest"
)

// StatusAll disables the status filter.
const StatusAll = "all"

const DefaultRowsPerPage = 5

// RowsPerPageOptions are the page sizes the table accepts.
var RowsPerPageOptions = []int{5, 10, 20, 30, 50}

// ValidRowsPerPage reports whether n is one of RowsPerPageOptions.
func ValidRowsPerPage(n int) bool {
	for _, v := range RowsPerPageOptions {
		if v == n {
			return true
		}
	}
	return false
}

// Controls are the table's independent view controls.
type Controls struct {
	Tab         Tab
	Search      string
	Status      string
	DateSort    DateSort
	Page        int
	RowsPerPage int
}

// Pager keeps page and page size together so a size change always rewinds.
type Pager struct {
	Page        int
	RowsPerPage int
}

func NewPager() *Pager {
	return &Pager{Page: 1, RowsPerPage: DefaultRowsPerPage}
}

// SetRowsPerPage changes the page size and resets to the first page.
func (p *Pager) SetRowsPerPage(n int) {
	if !ValidRowsPerPage(n) {
		n = DefaultRowsPerPage
	}
	p.RowsPerPage = n
	p.Page = 1
}

func (p *Pager) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	p.Page = n
}

type Table struct {
	Rows        []models.Internship `json:"rows"`
	Count       int                 `json:"count"`
	Page        int                 `json:"page"`
	RowsPerPage int                 `json:"rowsPerPage"`
	TotalPages  int                 `json:"totalPages"`
}

// Partition returns the records whose archived flag equals archived, in
// input order.
func Partition(records []models.Internship, archived bool) []models.Internship {
	out := make([]models.Internship, 0, len(records))
	for _, in := range records {
		if in.Archived == archived {
			out = append(out, in)
		}
	}
	return out
}

// BuildTable runs partition, search, status filter, date sort and
// pagination in that order.
func BuildTable(records []models.Internship, c Controls) Table {
	rows := Partition(records, c.Tab == TabArchived)

	if term := strings.ToLower(c.Search); term != "" {
		rows = filter(rows, func(in models.Internship) bool {
			return strings.Contains(strings.ToLower(in.Company), term) ||
				strings.Contains(strings.ToLower(in.Position), term)
		})
	}

	if c.Status != "" && c.Status != StatusAll {
		rows = filter(rows, func(in models.Internship) bool {
			return string(in.Status) == c.Status
		})
	}

	switch c.DateSort {
	case SortNewest:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ApplicationDate.After(rows[j].ApplicationDate)
		})
	case SortOldest:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ApplicationDate.Before(rows[j].ApplicationDate)
		})
	}

	pager := NewPager()
	pager.SetRowsPerPage(c.RowsPerPage)
	pager.SetPage(c.Page)

	t := Table{
		Count:       len(rows),
		Page:        pager.Page,
		RowsPerPage: pager.RowsPerPage,
		TotalPages:  TotalPages(len(rows), pager.RowsPerPage),
	}

	start := (pager.Page - 1) * pager.RowsPerPage
	if start >= len(rows) {
		t.Rows = []models.Internship{}
		return t
	}
	end := min(start+pager.RowsPerPage, len(rows))
	t.Rows = rows[start:end]
	return t
}

// TotalPages is ceil(count/rowsPerPage), never less than 1.
func TotalPages(count, rowsPerPage int) int {
	if rowsPerPage <= 0 {
		rowsPerPage = DefaultRowsPerPage
	}
	return max(1, (count+rowsPerPage-1)/rowsPerPage)
}

func filter(in []models.Internship, keep func(models.Internship) bool) []models.Internship {
	out := in[:0:0]
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
