package store

import (
	"context"
	"fmt"

	"github.com/zulandar/groundwork/internal/models"
)

// PhaseOpts holds parameters for creating a phase.
type PhaseOpts struct {
	ProjectID int64
	Name      string
	StartDate *string
	EndDate   *string
}

// CreatePhase inserts a new phase.
func (s *Store) CreatePhase(ctx context.Context, opts PhaseOpts) (*models.Phase, error) {
	if opts.ProjectID <= 0 {
		return nil, fmt.Errorf("store: project id is required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("store: phase name is required")
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

	phase := models.Phase{
		ProjectID: opts.ProjectID,
		Name:      opts.Name,
		StartDate: start,
		EndDate:   end,
	}
	if err := s.db.WithContext(ctx).Create(&phase).Error; err != nil {
		return nil, fmt.Errorf("store: create phase: %w", err)
	}
	return &phase, nil
}

// GetPhase retrieves a phase by id within a project.
func (s *Store) GetPhase(ctx context.Context, projectID, id int64) (*models.Phase, error) {
	var phase models.Phase
	err := s.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&phase).Error
	if err != nil {
		return nil, notFound("phase", id, err)
	}
	return &phase, nil
}

// ListPhases returns the project's phases ordered by start date, undated
// phases last.
func (s *Store) ListPhases(ctx context.Context, projectID int64) ([]models.Phase, error) {
	var phases []models.Phase
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("CASE WHEN start_date IS NULL THEN 1 ELSE 0 END, start_date ASC, id ASC").
		Find(&phases).Error
	if err != nil {
		return nil, fmt.Errorf("store: list phases: %w", err)
	}
	return phases, nil
}
