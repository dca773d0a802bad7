// Package task holds kanban board cards.
package task

import "time"

// Status is a board column. Cards move freely between columns; no ordering
// is enforced.
type Status string

const (
	StatusOpen       Status = "open"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ValidStatus reports whether s is a known board column.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusPlanned, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority orders cards within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is one kanban card.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Labels      []string  `json:"labels"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
