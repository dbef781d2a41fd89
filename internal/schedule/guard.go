package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zulandar/groundwork/internal/models"
)

var (
	// ErrBelowFloor is returned when a log's completion would drop below the
	// task's most recent reported completion.
	ErrBelowFloor = errors.New("completion below previous log")
	// ErrAboveCeiling is returned for completion values over 100.
	ErrAboveCeiling = errors.New("completion above 100")
	// ErrInvalidCompletion is returned for NaN or infinite values.
	ErrInvalidCompletion = errors.New("completion is not a number")
)

// MinAllowedCompletion returns the lowest completion a new or edited log for
// taskID may report: the completion of the task's most recent other log by
// log date, or 0 when there is none. excludeLogID, when set, names the log
// being edited so it does not bound itself.
//
// Log dates are compared as calendar days in UTC. Use MinAllowedCompletionIn
// to order timestamped logs by the site's local day.
func MinAllowedCompletion(taskID int64, logs []models.ConstructionLog, excludeLogID *int64) float64 {
	return MinAllowedCompletionIn(taskID, logs, excludeLogID, time.UTC)
}

// MinAllowedCompletionIn is MinAllowedCompletion with log dates truncated to
// calendar days in loc, matching how an Evaluator on the same location picks
// the most recent log.
func MinAllowedCompletionIn(taskID int64, logs []models.ConstructionLog, excludeLogID *int64, loc *time.Location) float64 {
	var prior []models.ConstructionLog
	for _, l := range logs {
		if l.TaskID == nil || *l.TaskID != taskID {
			continue
		}
		if excludeLogID != nil && l.ID == *excludeLogID {
			continue
		}
		prior = append(prior, l)
	}

	latest, _, ok := latestLog(prior, loc)
	if !ok {
		return 0
	}
	return Percent(latest.CompletionPercentage)
}

// ClampCompletion bounds value to [floor, 100]. Non-numeric values fall to
// the floor.
func ClampCompletion(value, floor float64) float64 {
	floor = clampPercent(floor)
	if math.IsNaN(value) || value < floor {
		return floor
	}
	if value > 100 {
		return 100
	}
	return value
}

// StepCompletion applies an increment or decrement and keeps the result
// within [floor, 100].
func StepCompletion(value, delta, floor float64) float64 {
	return ClampCompletion(value+delta, floor)
}

// CheckCompletion rejects values outside [floor, 100] instead of clamping.
func CheckCompletion(value, floor float64) error {
	floor = clampPercent(floor)
	switch {
	case math.IsNaN(value), math.IsInf(value, 0):
		return ErrInvalidCompletion
	case value < floor:
		return fmt.Errorf("%w: %g < %g", ErrBelowFloor, value, floor)
	case value > 100:
		return fmt.Errorf("%w: %g", ErrAboveCeiling, value)
	}
	return nil
}
