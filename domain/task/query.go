package task

import (
	"sort"
	"strings"
	"time"
)

// FilterAll is the structured-filter value meaning "no constraint".
const FilterAll = "all"

// Filter describes the composable task filters. Search is a free-text term
// matched against every searchable field; the structured filters are exact
// case-insensitive matches. All non-empty filters compose with logical AND.
type Filter struct {
	Search   string
	Category string
	Priority string
	Status   string
}

// Match reports whether the task satisfies every active filter.
func (f Filter) Match(t *Task) bool {
	if !matchExact(f.Category, string(t.Category)) {
		return false
	}
	if !matchExact(f.Priority, string(t.Priority)) {
		return false
	}
	if !matchExact(f.Status, string(t.Status)) {
		return false
	}
	if f.Search != "" && !matchSearch(t, f.Search) {
		return false
	}
	return true
}

// matchExact treats "" and "all" as no constraint, otherwise compares
// case-insensitively.
func matchExact(filter, value string) bool {
	if filter == "" || strings.EqualFold(filter, FilterAll) {
		return true
	}
	return strings.EqualFold(filter, value)
}

// matchSearch reports whether any searchable field contains the term,
// case-insensitively.
func matchSearch(t *Task, term string) bool {
	term = strings.ToLower(term)
	fields := []string{
		t.Title,
		t.Description,
		string(t.Category),
		t.Assignee,
		t.ID,
		string(t.Status),
		string(t.Priority),
	}
	fields = append(fields, t.Tags...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Sort describes a field sort. The zero value selects the relevance order.
type Sort struct {
	Field      string
	Descending bool
}

// Apply filters the tasks and sorts the result. The input slice is not
// modified; a new slice is returned.
func Apply(tasks []*Task, filter Filter, sortSpec Sort) []*Task {
	result := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t) {
			result = append(result, t)
		}
	}
	if sortSpec.Field == "" || sortSpec.Field == "relevance" {
		SortByRelevance(result)
	} else {
		SortByField(result, sortSpec)
	}
	return result
}

// SortByRelevance orders tasks in place by the dashboard's default order:
// status rank ascending (Pending, In Progress, Completed), then priority
// rank descending (High first), then due date ascending with undated tasks
// last, then ID ascending. The sort is stable.
func SortByRelevance(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Status.Rank() != b.Status.Rank() {
			return a.Status.Rank() < b.Status.Rank()
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if c := compareDueDates(a.DueDate, b.DueDate); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// SortByField orders tasks in place by a single field: strings compare
// case-insensitively, dates chronologically, numbers numerically. Ties
// break by ID ascending so the order is deterministic.
func SortByField(tasks []*Task, spec Sort) {
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareField(tasks[i], tasks[j], spec.Field)
		if spec.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func compareField(a, b *Task, field string) int {
	switch Slug(field) {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "description":
		return compareStrings(a.Description, b.Description)
	case "category":
		return compareStrings(string(a.Category), string(b.Category))
	case "priority":
		return compareInts(a.Priority.Rank(), b.Priority.Rank())
	case "status":
		return compareInts(a.Status.Rank(), b.Status.Rank())
	case "assignee":
		return compareStrings(a.Assignee, b.Assignee)
	case "due-date", "due":
		return compareDueDates(a.DueDate, b.DueDate)
	case "created-at", "created":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated-at", "updated":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "estimated-hours":
		return compareFloats(a.EstimatedHours, b.EstimatedHours)
	case "actual-hours":
		return compareFloats(a.ActualHours, b.ActualHours)
	}
	return 0
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareDueDates orders dates chronologically with undated tasks last.
func compareDueDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

const (
	// DefaultPageSize is the page size used when none is requested.
	DefaultPageSize = 10
	// MaxPageSize bounds a requested page size.
	MaxPageSize = 100
)

// Page is one page of a filtered result set.
type Page struct {
	Tasks      []*Task
	Total      int
	Number     int
	Size       int
	TotalPages int
}

// Paginate slices the tasks into the requested page. The page number is
// clamped to the valid range, so requesting past the end returns the last
// page rather than an empty one.
func Paginate(tasks []*Task, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(tasks)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Tasks:      tasks[start:end],
		Total:      total,
		Number:     number,
		Size:       size,
		TotalPages: totalPages,
	}
}
