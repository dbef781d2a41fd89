package models

import "time"

// ConstructionLog is a dated field report against a task.
type ConstructionLog struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID            int64     `gorm:"index;not null" json:"project_id"`
	TaskID               *int64    `gorm:"index" json:"task_id"`
	LogDate              string    `gorm:"size:32;index;not null" json:"log_date"`
	CompletionPercentage *float64  `json:"completion_percentage"`
	Weather              string    `gorm:"size:64" json:"weather,omitempty"`
	PersonnelCount       int       `gorm:"default:0" json:"personnel_count"`
	Notes                string    `gorm:"type:text" json:"notes,omitempty"`
	Attachments          []string  `gorm:"serializer:json;type:text" json:"attachments,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// TableName overrides the GORM table name.
func (ConstructionLog) TableName() string {
	return "construction_logs"
}
