package models

import "time"

// TaskStatus is the upstream-assigned state of a construction task.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusDelayed    TaskStatus = "delayed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDelayed:
		return true
	}
	return false
}

// TaskPriority ranks how urgently a task needs attention.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of construction work. Tasks nest under an optional parent
// and are optionally grouped into a Phase.
//
// ProgressPercentage is authoritative for leaf tasks. For parent tasks it is
// aggregated by the server on write and must not be edited here.
type Task struct {
	ID                 int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID          int64        `gorm:"index;not null" json:"project_id"`
	ParentID           *int64       `gorm:"index" json:"parent_id"`
	PhaseID            *int64       `gorm:"index" json:"phase_id"`
	Name               string       `gorm:"size:255;not null" json:"name"`
	Description        string       `gorm:"type:text" json:"description,omitempty"`
	Status             TaskStatus   `gorm:"size:16;default:not_started;index" json:"status"`
	Priority           TaskPriority `gorm:"size:16;default:medium" json:"priority"`
	StartDate          *string      `gorm:"size:32" json:"start_date"`
	EndDate            *string      `gorm:"size:32" json:"end_date"`
	ProgressPercentage *float64     `json:"progress_percentage"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
