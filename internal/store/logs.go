package store

import (
	"context"
	"fmt"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// LogOpts holds parameters for creating a construction log.
type LogOpts struct {
	ProjectID            int64
	TaskID               *int64
	LogDate              string
	CompletionPercentage *float64
	Weather              string
	PersonnelCount       int
	Notes                string
	Attachments          []string
}

// LogUpdate holds the fields of a construction log that may be edited. Nil
// fields are left unchanged.
type LogUpdate struct {
	LogDate              *string
	CompletionPercentage *float64
	Weather              *string
	PersonnelCount       *int
	Notes                *string
	Attachments          []string
}

// CreateLog inserts a construction log. When the log is attached to a task
// and reports a completion, the value must not fall below the task's most
// recent log; such writes fail with schedule.ErrBelowFloor.
func (s *Store) CreateLog(ctx context.Context, opts LogOpts) (*models.ConstructionLog, error) {
	if opts.ProjectID <= 0 {
		return nil, fmt.Errorf("store: project id is required")
	}
	date, err := normalizeDate("log date", &opts.LogDate)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, fmt.Errorf("store: log date is required")
	}
	if opts.PersonnelCount < 0 {
		return nil, fmt.Errorf("store: personnel count must not be negative")
	}

	log := models.ConstructionLog{
		ProjectID:            opts.ProjectID,
		TaskID:               opts.TaskID,
		LogDate:              *date,
		CompletionPercentage: opts.CompletionPercentage,
		Weather:              opts.Weather,
		PersonnelCount:       opts.PersonnelCount,
		Notes:                opts.Notes,
		Attachments:          opts.Attachments,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.TaskID != nil {
			var task models.Task
			if err := tx.Where("project_id = ? AND id = ?", opts.ProjectID, *opts.TaskID).First(&task).Error; err != nil {
				return fmt.Errorf("store: check task: %w", notFound("task", *opts.TaskID, err))
			}
		}
		if err := checkLogCompletion(tx, &log, nil); err != nil {
			return err
		}
		if err := tx.Create(&log).Error; err != nil {
			return fmt.Errorf("store: create log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// UpdateLog edits a construction log. The completion floor is recomputed with
// the edited log excluded.
func (s *Store) UpdateLog(ctx context.Context, projectID, id int64, upd LogUpdate) (*models.ConstructionLog, error) {
	var log models.ConstructionLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND id = ?", projectID, id).First(&log).Error; err != nil {
			return notFound("log", id, err)
		}

		if upd.LogDate != nil {
			date, err := normalizeDate("log date", upd.LogDate)
			if err != nil {
				return err
			}
			if date == nil {
				return fmt.Errorf("store: log date is required")
			}
			log.LogDate = *date
		}
		if upd.CompletionPercentage != nil {
			log.CompletionPercentage = upd.CompletionPercentage
		}
		if upd.Weather != nil {
			log.Weather = *upd.Weather
		}
		if upd.PersonnelCount != nil {
			if *upd.PersonnelCount < 0 {
				return fmt.Errorf("store: personnel count must not be negative")
			}
			log.PersonnelCount = *upd.PersonnelCount
		}
		if upd.Notes != nil {
			log.Notes = *upd.Notes
		}
		if upd.Attachments != nil {
			log.Attachments = upd.Attachments
		}

		if err := checkLogCompletion(tx, &log, &log.ID); err != nil {
			return err
		}
		if err := tx.Save(&log).Error; err != nil {
			return fmt.Errorf("store: update log %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetLog retrieves a construction log by id within a project.
func (s *Store) GetLog(ctx context.Context, projectID, id int64) (*models.ConstructionLog, error) {
	var log models.ConstructionLog
	if err := s.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&log).Error; err != nil {
		return nil, notFound("log", id, err)
	}
	return &log, nil
}

// ListLogs returns the project's logs, most recent first.
func (s *Store) ListLogs(ctx context.Context, projectID int64) ([]models.ConstructionLog, error) {
	var logs []models.ConstructionLog
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("log_date DESC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list logs: %w", err)
	}
	return logs, nil
}

// ListTaskLogs returns the logs attached to one task, most recent first.
func (s *Store) ListTaskLogs(ctx context.Context, projectID, taskID int64) ([]models.ConstructionLog, error) {
	return listTaskLogs(s.db.WithContext(ctx), projectID, taskID)
}

// CompletionFloor returns the lowest completion a new log for taskID may
// report, or an edited log when excludeLogID is set.
func (s *Store) CompletionFloor(ctx context.Context, projectID, taskID int64, excludeLogID *int64) (float64, error) {
	logs, err := s.ListTaskLogs(ctx, projectID, taskID)
	if err != nil {
		return 0, err
	}
	return schedule.MinAllowedCompletion(taskID, logs, excludeLogID), nil
}

func listTaskLogs(tx *gorm.DB, projectID, taskID int64) ([]models.ConstructionLog, error) {
	var logs []models.ConstructionLog
	err := tx.Where("project_id = ? AND task_id = ?", projectID, taskID).
		Order("log_date DESC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list logs of task %d: %w", taskID, err)
	}
	return logs, nil
}

// checkLogCompletion validates log's completion against the floor set by the
// task's other logs. Unattached logs only need to be within [0, 100].
func checkLogCompletion(tx *gorm.DB, log *models.ConstructionLog, excludeLogID *int64) error {
	if log.CompletionPercentage == nil {
		return nil
	}
	floor := 0.0
	if log.TaskID != nil {
		prior, err := listTaskLogs(tx, log.ProjectID, *log.TaskID)
		if err != nil {
			return err
		}
		floor = schedule.MinAllowedCompletion(*log.TaskID, prior, excludeLogID)
	}
	if err := schedule.CheckCompletion(*log.CompletionPercentage, floor); err != nil {
		return fmt.Errorf("store: log completion: %w", err)
	}
	return nil
}
