package task

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &ts
}

func TestFilterMatch(t *testing.T) {
	tk := &Task{
		ID:          "abc-123",
		Title:       "Write lab report",
		Description: "Physics lab on optics",
		Category:    CategoryAssignment,
		Priority:    PriorityHigh,
		Status:      StatusInProgress,
		Assignee:    "Dana",
		Tags:        []string{"physics", "lab"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter matches", filter: Filter{}, want: true},
		{name: "all means no constraint", filter: Filter{Category: "all", Priority: "All", Status: "ALL"}, want: true},
		{name: "category match", filter: Filter{Category: "assignment"}, want: true},
		{name: "category mismatch", filter: Filter{Category: "Exam"}, want: false},
		{name: "priority match case-insensitive", filter: Filter{Priority: "HIGH"}, want: true},
		{name: "status match", filter: Filter{Status: "In Progress"}, want: true},
		{name: "search in title", filter: Filter{Search: "lab report"}, want: true},
		{name: "search in description", filter: Filter{Search: "optics"}, want: true},
		{name: "search in assignee", filter: Filter{Search: "dana"}, want: true},
		{name: "search in tags", filter: Filter{Search: "physics"}, want: true},
		{name: "search in id", filter: Filter{Search: "abc-123"}, want: true},
		{name: "search in status", filter: Filter{Search: "progress"}, want: true},
		{name: "search no match", filter: Filter{Search: "chemistry"}, want: false},
		{name: "combined filters AND", filter: Filter{Category: "Assignment", Search: "optics"}, want: true},
		{name: "combined filters one fails", filter: Filter{Category: "Exam", Search: "optics"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tk); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortByRelevance(t *testing.T) {
	// Pending beats Completed; within the same status, High beats Low.
	tasks := []*Task{
		{ID: "a", Status: StatusPending, Priority: PriorityHigh},
		{ID: "b", Status: StatusPending, Priority: PriorityLow},
		{ID: "c", Status: StatusCompleted, Priority: PriorityHigh},
	}

	SortByRelevance(tasks)

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d = %s, want %s (order %v)", i, tasks[i].ID, id, ids(tasks))
		}
	}
}

func TestSortByRelevanceDueDates(t *testing.T) {
	// Same status and priority: earlier due date first, undated last.
	tasks := []*Task{
		{ID: "undated", Status: StatusPending, Priority: PriorityMedium},
		{ID: "later", Status: StatusPending, Priority: PriorityMedium, DueDate: date(2025, 4, 20)},
		{ID: "sooner", Status: StatusPending, Priority: PriorityMedium, DueDate: date(2025, 4, 10)},
	}

	SortByRelevance(tasks)

	want := []string{"sooner", "later", "undated"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d = %s, want %s (order %v)", i, tasks[i].ID, id, ids(tasks))
		}
	}
}

func TestSortByField(t *testing.T) {
	base := []*Task{
		{ID: "1", Title: "banana", Priority: PriorityLow, EstimatedHours: 3, DueDate: date(2025, 2, 1), CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Apple", Priority: PriorityHigh, EstimatedHours: 1, CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "3", Title: "cherry", Priority: PriorityMedium, EstimatedHours: 2, DueDate: date(2025, 1, 15), CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name string
		spec Sort
		want []string
	}{
		{name: "title ascending is case-insensitive", spec: Sort{Field: "title"}, want: []string{"2", "1", "3"}},
		{name: "title descending", spec: Sort{Field: "title", Descending: true}, want: []string{"3", "1", "2"}},
		{name: "priority ascending by rank", spec: Sort{Field: "priority"}, want: []string{"1", "3", "2"}},
		{name: "priority descending", spec: Sort{Field: "priority", Descending: true}, want: []string{"2", "3", "1"}},
		{name: "estimated hours", spec: Sort{Field: "estimated hours"}, want: []string{"2", "3", "1"}},
		{name: "created at", spec: Sort{Field: "created-at"}, want: []string{"3", "1", "2"}},
		// snake_case spellings as the HTTP layer sends them.
		{name: "snake_case due_date puts undated last", spec: Sort{Field: "due_date"}, want: []string{"3", "1", "2"}},
		{name: "snake_case created_at", spec: Sort{Field: "created_at"}, want: []string{"3", "1", "2"}},
		{name: "snake_case estimated_hours", spec: Sort{Field: "estimated_hours"}, want: []string{"2", "3", "1"}},
		{name: "unknown field keeps id order", spec: Sort{Field: "bogus"}, want: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := make([]*Task, len(base))
			copy(tasks, base)
			SortByField(tasks, tt.spec)
			for i, id := range tt.want {
				if tasks[i].ID != id {
					t.Fatalf("position %d = %s, want %s (order %v)", i, tasks[i].ID, id, ids(tasks))
				}
			}
		})
	}
}

func TestApplyFilterNarrowsSearch(t *testing.T) {
	tasks := []*Task{
		{ID: "1", Title: "physics homework", Category: CategoryAssignment, Priority: PriorityLow, Status: StatusPending},
		{ID: "2", Title: "physics exam prep", Category: CategoryExam, Priority: PriorityLow, Status: StatusPending},
		{ID: "3", Title: "history essay", Category: CategoryAssignment, Priority: PriorityLow, Status: StatusPending},
	}

	all := Apply(tasks, Filter{Search: "physics"}, Sort{})
	narrowed := Apply(tasks, Filter{Search: "physics", Category: "Exam"}, Sort{})

	if len(all) != 2 {
		t.Fatalf("search returned %d tasks, want 2", len(all))
	}
	if len(narrowed) != 1 || narrowed[0].ID != "2" {
		t.Fatalf("narrowed = %v, want [2]", ids(narrowed))
	}
	// The narrowed result is a subset of the search-only result.
	for _, n := range narrowed {
		found := false
		for _, a := range all {
			if a.ID == n.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("task %s in narrowed result but not in search result", n.ID)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := []*Task{
		{ID: "b", Status: StatusCompleted, Priority: PriorityLow},
		{ID: "a", Status: StatusPending, Priority: PriorityHigh},
	}

	_ = Apply(tasks, Filter{}, Sort{})

	if tasks[0].ID != "b" || tasks[1].ID != "a" {
		t.Errorf("input slice reordered: %v", ids(tasks))
	}
}

func TestPaginate(t *testing.T) {
	tasks := make([]*Task, 25)
	for i := range tasks {
		tasks[i] = &Task{ID: string(rune('a' + i))}
	}

	tests := []struct {
		name       string
		number     int
		size       int
		wantLen    int
		wantNumber int
		wantPages  int
	}{
		{name: "first page", number: 1, size: 10, wantLen: 10, wantNumber: 1, wantPages: 3},
		{name: "last partial page", number: 3, size: 10, wantLen: 5, wantNumber: 3, wantPages: 3},
		{name: "past the end clamps to last", number: 99, size: 10, wantLen: 5, wantNumber: 3, wantPages: 3},
		{name: "zero page clamps to first", number: 0, size: 10, wantLen: 10, wantNumber: 1, wantPages: 3},
		{name: "zero size uses default", number: 1, size: 0, wantLen: DefaultPageSize, wantNumber: 1, wantPages: 3},
		{name: "oversized page size clamps", number: 1, size: 1000, wantLen: 25, wantNumber: 1, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(tasks, tt.number, tt.size)
			if len(page.Tasks) != tt.wantLen {
				t.Errorf("len(Tasks) = %d, want %d", len(page.Tasks), tt.wantLen)
			}
			if page.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", page.Number, tt.wantNumber)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages, tt.wantPages)
			}
			if page.Total != 25 {
				t.Errorf("Total = %d, want 25", page.Total)
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate(nil, 5, 10)
	if len(page.Tasks) != 0 || page.Total != 0 {
		t.Errorf("empty set page = %+v", page)
	}
	if page.Number != 1 || page.TotalPages != 1 {
		t.Errorf("empty set Number = %d, TotalPages = %d, want 1 and 1", page.Number, page.TotalPages)
	}
}

func ids(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
