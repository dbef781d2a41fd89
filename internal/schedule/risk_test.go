package schedule

import (
	"testing"
	"time"

	"github.com/zulandar/groundwork/internal/models"
)

var testNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func testEvaluator() *Evaluator {
	return NewEvaluator(FixedClock{T: testNow}, 0)
}

// day returns the calendar date offset days from testNow.
func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format("2006-01-02")
}

func taskLog(id, taskID int64, date string, completion float64) models.ConstructionLog {
	return models.ConstructionLog{ID: id, TaskID: &taskID, LogDate: date, CompletionPercentage: &completion}
}

func TestEvaluateTask_Delayed(t *testing.T) {
	tk := models.Task{
		ID:                 1,
		Status:             models.TaskStatusInProgress,
		EndDate:            strPtr(day(-1)),
		ProgressPercentage: float64Ptr(60),
	}
	e := testEvaluator()

	if !e.EvaluateTask(tk, nil).IsDelayed {
		t.Error("in-progress task past end date: IsDelayed = false, want true")
	}

	tk.Status = models.TaskStatusCompleted
	if e.EvaluateTask(tk, nil).IsDelayed {
		t.Error("completed task: IsDelayed = true, want false")
	}

	tk.Status = models.TaskStatusInProgress
	tk.ProgressPercentage = float64Ptr(100)
	if e.EvaluateTask(tk, nil).IsDelayed {
		t.Error("task at 100%: IsDelayed = true, want false")
	}
}

func TestEvaluateTask_DelayBoundaries(t *testing.T) {
	tests := []struct {
		name string
		end  *string
		want bool
	}{
		{"no end date", nil, false},
		{"ends today", strPtr(day(0)), false},
		{"ends tomorrow", strPtr(day(1)), false},
		{"ended yesterday", strPtr(day(-1)), true},
		{"timestamp end", strPtr(day(-2) + "T18:00:00Z"), true},
		{"malformed", strPtr("next tuesday"), false},
		{"empty", strPtr(""), false},
	}
	e := testEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := models.Task{ID: 1, Status: models.TaskStatusNotStarted, EndDate: tt.end}
			if got := e.EvaluateTask(tk, nil).IsDelayed; got != tt.want {
				t.Errorf("IsDelayed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateTask_NeedsUpdate(t *testing.T) {
	tk := models.Task{ID: 7, Status: models.TaskStatusInProgress, StartDate: strPtr(day(-10))}
	e := testEvaluator()

	if !e.EvaluateTask(tk, nil).NeedsUpdate {
		t.Error("started task with no logs: NeedsUpdate = false, want true")
	}

	today := []models.ConstructionLog{taskLog(1, 7, day(0), 50)}
	if e.EvaluateTask(tk, today).NeedsUpdate {
		t.Error("task logged today: NeedsUpdate = true, want false")
	}

	old := []models.ConstructionLog{taskLog(1, 7, day(-5), 50)}
	risk := e.EvaluateTask(tk, old)
	if !risk.NeedsUpdate {
		t.Error("task last logged 5 days ago: NeedsUpdate = false, want true")
	}
	if risk.DaysSinceUpdate == nil || *risk.DaysSinceUpdate != 5 {
		t.Errorf("DaysSinceUpdate = %v, want 5", risk.DaysSinceUpdate)
	}
	if risk.LastLogDate != day(-5) {
		t.Errorf("LastLogDate = %q, want %q", risk.LastLogDate, day(-5))
	}
}

func TestEvaluateTask_StaleThreshold(t *testing.T) {
	tk := models.Task{ID: 7, StartDate: strPtr(day(-10))}
	e := testEvaluator()

	three := []models.ConstructionLog{taskLog(1, 7, day(-3), 10)}
	if e.EvaluateTask(tk, three).NeedsUpdate {
		t.Error("3 days since log: NeedsUpdate = true, want false (threshold is > 3)")
	}
	four := []models.ConstructionLog{taskLog(1, 7, day(-4), 10)}
	if !e.EvaluateTask(tk, four).NeedsUpdate {
		t.Error("4 days since log: NeedsUpdate = false, want true")
	}

	lenient := NewEvaluator(FixedClock{T: testNow}, 7)
	if lenient.EvaluateTask(tk, four).NeedsUpdate {
		t.Error("StaleAfterDays=7, 4 days since log: NeedsUpdate = true, want false")
	}
}

func TestEvaluateTask_UsesMostRecentLog(t *testing.T) {
	tk := models.Task{ID: 7, StartDate: strPtr(day(-30))}
	logs := []models.ConstructionLog{
		taskLog(1, 7, day(-20), 10),
		taskLog(2, 7, day(-1), 40),
		taskLog(3, 7, day(-9), 30),
		taskLog(4, 8, day(0), 99),
	}
	risk := testEvaluator().EvaluateTask(tk, logs)

	if risk.NeedsUpdate {
		t.Error("NeedsUpdate = true, want false (latest log is yesterday)")
	}
	if risk.LastLogDate != day(-1) {
		t.Errorf("LastLogDate = %q, want %q", risk.LastLogDate, day(-1))
	}
}

func TestEvaluateTask_NotStartedYet(t *testing.T) {
	e := testEvaluator()

	future := models.Task{ID: 7, StartDate: strPtr(day(2))}
	if e.EvaluateTask(future, nil).NeedsUpdate {
		t.Error("future start with no logs: NeedsUpdate = true, want false")
	}
	old := []models.ConstructionLog{taskLog(1, 7, day(-10), 0)}
	if e.EvaluateTask(future, old).NeedsUpdate {
		t.Error("future start with stale log: NeedsUpdate = true, want false")
	}

	startsToday := models.Task{ID: 7, StartDate: strPtr(day(0))}
	if !e.EvaluateTask(startsToday, nil).NeedsUpdate {
		t.Error("start today with no logs: NeedsUpdate = false, want true")
	}
}

func TestEvaluateTask_MissingOrMalformedDates(t *testing.T) {
	e := testEvaluator()

	undated := models.Task{ID: 7}
	if e.EvaluateTask(undated, nil).NeedsUpdate {
		t.Error("no start date, no logs: NeedsUpdate = true, want false")
	}
	stale := []models.ConstructionLog{taskLog(1, 7, day(-6), 10)}
	if !e.EvaluateTask(undated, stale).NeedsUpdate {
		t.Error("no start date, stale log: NeedsUpdate = false, want true")
	}

	malformed := models.Task{ID: 7, StartDate: strPtr("soon")}
	if e.EvaluateTask(malformed, nil).NeedsUpdate {
		t.Error("malformed start date: NeedsUpdate = true, want false")
	}
	if e.EvaluateTask(malformed, stale).NeedsUpdate {
		t.Error("malformed start date with stale log: NeedsUpdate = true, want false")
	}

	badLogs := []models.ConstructionLog{taskLog(1, 7, "yesterday-ish", 10)}
	started := models.Task{ID: 7, StartDate: strPtr(day(-10))}
	if e.EvaluateTask(started, badLogs).NeedsUpdate {
		t.Error("only unparseable log dates: NeedsUpdate = true, want false")
	}
}

func TestEvaluatePhase(t *testing.T) {
	phase := models.Phase{ID: 3, StartDate: strPtr(day(-20)), EndDate: strPtr(day(-1))}
	tasks := []models.Task{
		{ID: 1, PhaseID: int64Ptr(3)},
		{ID: 2, PhaseID: int64Ptr(3), ParentID: int64Ptr(1)},
		{ID: 3, PhaseID: int64Ptr(4)},
	}
	e := testEvaluator()

	risk := e.EvaluatePhase(phase, tasks, nil)
	if !risk.IsDelayed {
		t.Error("phase past end date: IsDelayed = false, want true")
	}
	if !risk.NeedsUpdate {
		t.Error("started phase with no logs: NeedsUpdate = false, want true")
	}

	// A log on a nested member task counts for the phase.
	logs := []models.ConstructionLog{
		taskLog(1, 2, day(-1), 50),
		taskLog(2, 3, day(0), 50),
	}
	risk = e.EvaluatePhase(phase, tasks, logs)
	if risk.NeedsUpdate {
		t.Error("phase member logged yesterday: NeedsUpdate = true, want false")
	}

	// Logs on tasks of other phases do not.
	other := []models.ConstructionLog{taskLog(2, 3, day(0), 50), taskLog(3, 1, day(-8), 10)}
	if !e.EvaluatePhase(phase, tasks, other).NeedsUpdate {
		t.Error("only stale member logs: NeedsUpdate = false, want true")
	}
}

func TestEvaluatePhase_DelayedRegardlessOfTaskCompletion(t *testing.T) {
	phase := models.Phase{ID: 3, EndDate: strPtr(day(-2))}
	tasks := []models.Task{{ID: 1, PhaseID: int64Ptr(3), Status: models.TaskStatusCompleted, ProgressPercentage: float64Ptr(100)}}

	if !testEvaluator().EvaluatePhase(phase, tasks, nil).IsDelayed {
		t.Error("phase past end: IsDelayed = false, want true")
	}
}

func TestEvaluate_UnattachedLogsIgnored(t *testing.T) {
	tk := models.Task{ID: 7, StartDate: strPtr(day(-10))}
	logs := []models.ConstructionLog{{ID: 1, LogDate: day(0)}}

	if !testEvaluator().EvaluateTask(tk, logs).NeedsUpdate {
		t.Error("unattached log counted toward task; NeedsUpdate = false, want true")
	}
}

func TestEvaluator_TodayUsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 20:00 UTC on the 15th is already the 16th at UTC+10.
	now := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC).In(loc)
	e := NewEvaluator(FixedClock{T: now}, 0)

	today := e.Today()
	if today.Day() != 16 || today.Hour() != 0 {
		t.Errorf("Today() = %v, want midnight on the 16th", today)
	}

	tk := models.Task{ID: 1, EndDate: strPtr("2026-03-15")}
	if !e.EvaluateTask(tk, nil).IsDelayed {
		t.Error("end date 15th with local today 16th: IsDelayed = false, want true")
	}
}

func TestRisk_AtRisk(t *testing.T) {
	if (Risk{}).AtRisk() {
		t.Error("zero Risk reports AtRisk")
	}
	if !(Risk{NeedsUpdate: true}).AtRisk() || !(Risk{IsDelayed: true}).AtRisk() {
		t.Error("flagged Risk does not report AtRisk")
	}
}
