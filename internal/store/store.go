// Package store persists tasks, phases and construction logs with GORM and
// serves them to the report builder.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/groundwork/internal/config"
	"github.com/zulandar/groundwork/internal/db"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a task, phase or log id does not exist in the
// requested project.
var ErrNotFound = errors.New("not found")

// Store wraps a GORM handle.
type Store struct {
	db *gorm.DB
}

// New wraps an existing connection.
func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	gdb, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return New(gdb), nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// AutoMigrate creates or updates the Groundwork tables.
func (s *Store) AutoMigrate() error {
	return db.AutoMigrate(s.db)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return sqlDB.Close()
}

// Tasks returns every task of the project. It satisfies report.Source.
func (s *Store) Tasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	return s.ListTasks(ctx, projectID, TaskFilters{})
}

// Phases returns every phase of the project. It satisfies report.Source.
func (s *Store) Phases(ctx context.Context, projectID int64) ([]models.Phase, error) {
	return s.ListPhases(ctx, projectID)
}

// Logs returns every construction log of the project. It satisfies
// report.Source.
func (s *Store) Logs(ctx context.Context, projectID int64) ([]models.ConstructionLog, error) {
	return s.ListLogs(ctx, projectID)
}

// normalizeDate validates an optional calendar date and rewrites it as
// YYYY-MM-DD. Empty strings are treated as absent.
func normalizeDate(field string, s *string) (*string, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, ok := schedule.ParseDate(*s, time.UTC)
	if !ok {
		return nil, fmt.Errorf("store: %s %q is not a date", field, *s)
	}
	out := t.Format("2006-01-02")
	return &out, nil
}

// checkWindow rejects windows that end before they start.
func checkWindow(start, end *string) error {
	if start == nil || end == nil {
		return nil
	}
	if *end < *start {
		return fmt.Errorf("store: end date %s is before start date %s", *end, *start)
	}
	return nil
}

func notFound(kind string, id int64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("store: %s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("store: get %s %d: %w", kind, id, err)
}
