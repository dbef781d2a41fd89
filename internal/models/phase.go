package models

import "time"

// Phase is a top-level grouping of tasks with its own planned date range.
// It carries no progress of its own; progress is derived from member tasks.
type Phase struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"index;not null" json:"project_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	StartDate *string   `gorm:"size:32" json:"start_date"`
	EndDate   *string   `gorm:"size:32" json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
