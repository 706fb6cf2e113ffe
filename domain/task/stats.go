package task

import (
	"math"
	"time"
)

// Breakdown is the per-group slice of a statistics snapshot.
type Breakdown struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"`
}

// Snapshot is the derived productivity report for a task set at a point in
// time. It is never stored durably; it is recomputed from the current task
// set and may be cached for a short TTL.
type Snapshot struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`

	ByCategory map[string]Breakdown `json:"by_category"`
	ByPriority map[string]Breakdown `json:"by_priority"`

	CreatedLast7Days   int     `json:"created_last_7_days"`
	CreatedLast30Days  int     `json:"created_last_30_days"`
	CompletedThisWeek  int     `json:"completed_this_week"`
	WeeklyTrend        int     `json:"weekly_trend"`
	ProductivityStreak int     `json:"productivity_streak"`
	AverageTaskHours   float64 `json:"average_task_hours"`

	ComputedAt time.Time `json:"computed_at"`
}

// ComputeSnapshot aggregates the task set into a statistics snapshot.
// All rounding is round-half-up so displayed percentages are stable.
func ComputeSnapshot(tasks []*Task, now time.Time) *Snapshot {
	snap := &Snapshot{
		ByCategory: make(map[string]Breakdown),
		ByPriority: make(map[string]Breakdown),
		ComputedAt: now,
	}

	// Priority groups always report all three fixed levels.
	for _, p := range Priorities {
		snap.ByPriority[p.Slug()] = Breakdown{}
	}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	priorWeekCreated := 0
	totalEstimated := 0.0

	for _, t := range tasks {
		snap.Total++
		switch t.Status {
		case StatusCompleted:
			snap.Completed++
		case StatusPending:
			snap.Pending++
		case StatusInProgress:
			snap.InProgress++
		}
		if t.Overdue(now) {
			snap.Overdue++
		}

		if inWindow(t.CreatedAt, weekAgo, now) {
			snap.CreatedLast7Days++
		}
		if inWindow(t.CreatedAt, monthAgo, now) {
			snap.CreatedLast30Days++
		}
		if inWindow(t.CreatedAt, twoWeeksAgo, weekAgo) {
			priorWeekCreated++
		}
		if t.Status == StatusCompleted && inWindow(t.UpdatedAt, weekAgo, now) {
			snap.CompletedThisWeek++
		}

		bumpBreakdown(snap.ByCategory, t.Category.Slug(), t.Status)
		bumpBreakdown(snap.ByPriority, t.Priority.Slug(), t.Status)
		totalEstimated += t.EstimatedHours
	}

	snap.CompletionRate = ratePercent(snap.Completed, snap.Total)
	for key, entry := range snap.ByCategory {
		entry.CompletionRate = ratePercent(entry.Completed, entry.Total)
		snap.ByCategory[key] = entry
	}
	for key, entry := range snap.ByPriority {
		entry.CompletionRate = ratePercent(entry.Completed, entry.Total)
		snap.ByPriority[key] = entry
	}

	if priorWeekCreated > 0 {
		change := float64(snap.CompletedThisWeek-priorWeekCreated) / float64(priorWeekCreated) * 100
		snap.WeeklyTrend = roundHalfUp(change)
	}
	if snap.Total > 0 {
		snap.AverageTaskHours = roundHalfUp1(totalEstimated / float64(snap.Total))
	}
	snap.ProductivityStreak = streak(tasks, now)

	return snap
}

// inWindow reports whether ts falls in [from, to).
func inWindow(ts, from, to time.Time) bool {
	return !ts.Before(from) && ts.Before(to)
}

func bumpBreakdown(groups map[string]Breakdown, key string, status Status) {
	entry := groups[key]
	entry.Total++
	if status == StatusCompleted {
		entry.Completed++
	}
	groups[key] = entry
}

// ratePercent returns round(completed/total*100), half up, and 0 for an
// empty group.
func ratePercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return roundHalfUp(float64(completed) / float64(total) * 100)
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// roundHalfUp1 rounds to one decimal place with halves going up.
func roundHalfUp1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// streak counts consecutive days with at least one task completed, walking
// back from today. A streak that ended yesterday still counts; one that
// ended earlier is over.
//
// Days are keyed by formatted date in now's location: stored timestamps
// come back in UTC, and time.Time map keys compare locations too.
func streak(tasks []*Task, now time.Time) int {
	days := make(map[string]bool)
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			days[dayKey(t.UpdatedAt.In(now.Location()))] = true
		}
	}

	day := dateOf(now)
	if !days[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}

	count := 0
	for days[dayKey(day)] {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

func dayKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}
