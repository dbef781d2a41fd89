package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/zulandar/groundwork/internal/models"
)

// AggregationPolicy selects how phase progress combines member tasks.
type AggregationPolicy string

const (
	// PolicyMean weighs every matched task equally, regardless of duration
	// or effort.
	PolicyMean AggregationPolicy = "mean"
	// PolicyDurationWeighted weighs each task by its planned window in days.
	// It deviates from the reference client, which only ever used the mean.
	PolicyDurationWeighted AggregationPolicy = "duration_weighted"
)

// ParsePolicy maps a config value to a policy. Empty selects PolicyMean.
func ParsePolicy(s string) (AggregationPolicy, error) {
	switch AggregationPolicy(s) {
	case "", PolicyMean:
		return PolicyMean, nil
	case PolicyDurationWeighted:
		return PolicyDurationWeighted, nil
	}
	return "", fmt.Errorf("schedule: unknown aggregation policy %q", s)
}

// Percent coerces a nullable percentage into [0, 100]. Nil, NaN and
// infinities become 0.
func Percent(v *float64) float64 {
	if v == nil {
		return 0
	}
	return clampPercent(*v)
}

func clampPercent(f float64) float64 {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return f
}

// TaskProgress returns the task's stored progress. Parent tasks are not
// recomputed from their children: the server aggregates them on write.
func TaskProgress(t models.Task) float64 {
	return Percent(t.ProgressPercentage)
}

// PhaseProgress derives a phase's progress from the tasks assigned directly
// to it at the top of the hierarchy. Descendants are not recursed into. A
// phase with no matching tasks has progress 0.
func PhaseProgress(phase models.Phase, tasks []models.Task, policy AggregationPolicy) float64 {
	return BuildHierarchy(tasks).PhaseProgress(phase, policy)
}

// PhaseProgress is the package-level PhaseProgress over an already built
// hierarchy.
func (h *Hierarchy) PhaseProgress(phase models.Phase, policy AggregationPolicy) float64 {
	var sum, weights float64
	for _, r := range h.Roots {
		if r.PhaseID == nil || *r.PhaseID != phase.ID {
			continue
		}
		w := 1.0
		if policy == PolicyDurationWeighted {
			w = plannedDays(r.Task)
		}
		sum += w * TaskProgress(r.Task)
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// ProgressByPhase computes PhaseProgress for every phase, keyed by phase id.
func ProgressByPhase(phases []models.Phase, tasks []models.Task, policy AggregationPolicy) map[int64]float64 {
	h := BuildHierarchy(tasks)
	out := make(map[int64]float64, len(phases))
	for _, p := range phases {
		out[p.ID] = h.PhaseProgress(p, policy)
	}
	return out
}

// plannedDays is the inclusive length of a task's planned window. Tasks
// without a usable window weigh as a single day.
func plannedDays(t models.Task) float64 {
	start, ok := parseOptionalDate(t.StartDate, time.UTC)
	if !ok {
		return 1
	}
	end, ok := parseOptionalDate(t.EndDate, time.UTC)
	if !ok || end.Before(start) {
		return 1
	}
	return float64(daysBetween(start, end) + 1)
}
