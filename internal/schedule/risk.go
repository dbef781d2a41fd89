package schedule

import (
	"time"

	"github.com/zulandar/groundwork/internal/models"
)

// DefaultStaleAfterDays is how many days may pass since the last log before
// a started item needs an update.
const DefaultStaleAfterDays = 3

// Risk holds the two independent schedule flags for a task or phase.
type Risk struct {
	IsDelayed   bool `json:"is_delayed"`
	NeedsUpdate bool `json:"needs_update"`

	// LastLogDate and DaysSinceUpdate describe the most recent relevant log,
	// when there is one.
	LastLogDate     string `json:"last_log_date,omitempty"`
	DaysSinceUpdate *int   `json:"days_since_update,omitempty"`
}

// AtRisk reports whether either flag is set.
func (r Risk) AtRisk() bool { return r.IsDelayed || r.NeedsUpdate }

// Evaluator flags delayed and stale items relative to its clock's today.
// Malformed or missing dates degrade the affected flag to false.
type Evaluator struct {
	Clock          Clock
	StaleAfterDays int // <= 0 uses DefaultStaleAfterDays
}

// NewEvaluator returns an Evaluator reading today from clock.
func NewEvaluator(clock Clock, staleAfterDays int) *Evaluator {
	return &Evaluator{Clock: clock, StaleAfterDays: staleAfterDays}
}

// Today returns the evaluator's current date at midnight.
func (e *Evaluator) Today() time.Time {
	return Today(e.Clock)
}

func (e *Evaluator) staleAfter() int {
	if e.StaleAfterDays <= 0 {
		return DefaultStaleAfterDays
	}
	return e.StaleAfterDays
}

// EvaluateTask flags a task. It is delayed once its end date has passed while
// it is neither completed nor at 100%. It needs an update when its window has
// begun and its latest log is older than the stale threshold, or when it has
// never been logged at all.
func (e *Evaluator) EvaluateTask(task models.Task, logs []models.ConstructionLog) Risk {
	today := e.Today()

	var risk Risk
	if pastEnd(task.EndDate, today) {
		risk.IsDelayed = task.Status != models.TaskStatusCompleted && TaskProgress(task) < 100
	}

	var relevant []models.ConstructionLog
	for _, l := range logs {
		if l.TaskID != nil && *l.TaskID == task.ID {
			relevant = append(relevant, l)
		}
	}
	e.applyStaleness(&risk, task.StartDate, relevant, today)
	return risk
}

// EvaluatePhase flags a phase. Any phase past its end date is delayed. Its
// staleness considers the logs of every task assigned to the phase.
func (e *Evaluator) EvaluatePhase(phase models.Phase, tasks []models.Task, logs []models.ConstructionLog) Risk {
	today := e.Today()

	risk := Risk{IsDelayed: pastEnd(phase.EndDate, today)}

	members := make(map[int64]bool)
	for _, t := range tasks {
		if t.PhaseID != nil && *t.PhaseID == phase.ID {
			members[t.ID] = true
		}
	}
	var relevant []models.ConstructionLog
	for _, l := range logs {
		if l.TaskID != nil && members[*l.TaskID] {
			relevant = append(relevant, l)
		}
	}
	e.applyStaleness(&risk, phase.StartDate, relevant, today)
	return risk
}

func (e *Evaluator) applyStaleness(risk *Risk, startDate *string, logs []models.ConstructionLog, today time.Time) {
	loc := today.Location()

	started := true
	if startDate != nil {
		start, ok := ParseDate(*startDate, loc)
		started = ok && !start.After(today)
	}

	if len(logs) == 0 {
		risk.NeedsUpdate = startDate != nil && started
		return
	}

	latest, latestDate, ok := latestLog(logs, loc)
	if !ok {
		return
	}
	days := daysBetween(latestDate, today)
	risk.LastLogDate = latest.LogDate
	risk.DaysSinceUpdate = &days
	risk.NeedsUpdate = days > e.staleAfter() && started
}

// pastEnd reports whether today is strictly after the given end date.
func pastEnd(endDate *string, today time.Time) bool {
	end, ok := parseOptionalDate(endDate, today.Location())
	return ok && today.After(end)
}

// latestLog returns the log with the greatest LogDate. Ties keep the first
// one found; logs with unparseable dates are skipped.
func latestLog(logs []models.ConstructionLog, loc *time.Location) (models.ConstructionLog, time.Time, bool) {
	var (
		best     models.ConstructionLog
		bestDate time.Time
		found    bool
	)
	for _, l := range logs {
		d, ok := ParseDate(l.LogDate, loc)
		if !ok {
			continue
		}
		if !found || d.After(bestDate) {
			best, bestDate, found = l, d, true
		}
	}
	return best, bestDate, found
}
