package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// TaskOpts holds parameters for creating a task.
type TaskOpts struct {
	ProjectID          int64
	ParentID           *int64
	PhaseID            *int64
	Name               string
	Description        string
	Priority           models.TaskPriority
	StartDate          *string
	EndDate            *string
	ProgressPercentage *float64
}

// TaskFilters holds optional filters for listing tasks.
type TaskFilters struct {
	PhaseID  *int64
	ParentID *int64
	Status   models.TaskStatus
}

// ValidTransitions maps each task status to the statuses it may move to.
var ValidTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusNotStarted: {models.TaskStatusInProgress, models.TaskStatusDelayed},
	models.TaskStatusInProgress: {models.TaskStatusCompleted, models.TaskStatusDelayed},
	models.TaskStatusDelayed:    {models.TaskStatusInProgress, models.TaskStatusCompleted},
	models.TaskStatusCompleted:  {models.TaskStatusInProgress},
}

// IsValidTransition reports whether a task may move from one status to another.
func IsValidTransition(from, to models.TaskStatus) bool {
	return slices.Contains(ValidTransitions[from], to)
}

// CreateTask inserts a new task. Parent and phase, when given, must belong to
// the same project.
func (s *Store) CreateTask(ctx context.Context, opts TaskOpts) (*models.Task, error) {
	if opts.ProjectID <= 0 {
		return nil, fmt.Errorf("store: project id is required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("store: task name is required")
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !opts.Priority.Valid() {
		return nil, fmt.Errorf("store: invalid priority %q", opts.Priority)
	}
	start, err := normalizeDate("start date", opts.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := normalizeDate("end date", opts.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if opts.ProgressPercentage != nil {
		if err := schedule.CheckCompletion(*opts.ProgressPercentage, 0); err != nil {
			return nil, fmt.Errorf("store: task progress: %w", err)
		}
	}

	task := models.Task{
		ProjectID:          opts.ProjectID,
		ParentID:           opts.ParentID,
		PhaseID:            opts.PhaseID,
		Name:               opts.Name,
		Description:        opts.Description,
		Status:             models.TaskStatusNotStarted,
		Priority:           opts.Priority,
		StartDate:          start,
		EndDate:            end,
		ProgressPercentage: opts.ProgressPercentage,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.ParentID != nil {
			var parent models.Task
			if err := tx.Where("project_id = ? AND id = ?", opts.ProjectID, *opts.ParentID).First(&parent).Error; err != nil {
				return fmt.Errorf("store: check parent: %w", notFound("task", *opts.ParentID, err))
			}
		}
		if opts.PhaseID != nil {
			var phase models.Phase
			if err := tx.Where("project_id = ? AND id = ?", opts.ProjectID, *opts.PhaseID).First(&phase).Error; err != nil {
				return fmt.Errorf("store: check phase: %w", notFound("phase", *opts.PhaseID, err))
			}
		}
		if err := tx.Create(&task).Error; err != nil {
			return fmt.Errorf("store: create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask retrieves a task by id within a project.
func (s *Store) GetTask(ctx context.Context, projectID, id int64) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&task).Error
	if err != nil {
		return nil, notFound("task", id, err)
	}
	return &task, nil
}

// ListTasks returns the project's tasks matching filters, ordered by id.
func (s *Store) ListTasks(ctx context.Context, projectID int64, filters TaskFilters) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Model(&models.Task{}).Where("project_id = ?", projectID)
	if filters.PhaseID != nil {
		q = q.Where("phase_id = ?", *filters.PhaseID)
	}
	if filters.ParentID != nil {
		q = q.Where("parent_id = ?", *filters.ParentID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var tasks []models.Task
	if err := q.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTaskStatus moves a task to a new status. Transitions are validated
// against ValidTransitions.
func (s *Store) UpdateTaskStatus(ctx context.Context, projectID, id int64, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("store: invalid status %q", status)
	}
	task, err := s.GetTask(ctx, projectID, id)
	if err != nil {
		return err
	}
	if !IsValidTransition(task.Status, status) {
		return fmt.Errorf("store: invalid status transition from %q to %q; valid transitions: %v",
			task.Status, status, ValidTransitions[task.Status])
	}
	err = s.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ? AND id = ?", projectID, id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("store: update task %d status: %w", id, err)
	}
	return nil
}

// SetTaskProgress records the progress of a leaf task. Parent progress is
// derived upstream and cannot be set here.
func (s *Store) SetTaskProgress(ctx context.Context, projectID, id int64, pct float64) error {
	if err := schedule.CheckCompletion(pct, 0); err != nil {
		return fmt.Errorf("store: task %d progress: %w", id, err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Where("project_id = ? AND id = ?", projectID, id).First(&task).Error; err != nil {
			return notFound("task", id, err)
		}
		var children int64
		if err := tx.Model(&models.Task{}).Where("project_id = ? AND parent_id = ?", projectID, id).Count(&children).Error; err != nil {
			return fmt.Errorf("store: count children of %d: %w", id, err)
		}
		if children > 0 {
			return fmt.Errorf("store: task %d has %d subtasks; its progress is derived", id, children)
		}
		if err := tx.Model(&task).Update("progress_percentage", pct).Error; err != nil {
			return fmt.Errorf("store: set task %d progress: %w", id, err)
		}
		return nil
	})
}
