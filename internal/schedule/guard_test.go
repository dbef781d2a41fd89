package schedule

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/zulandar/groundwork/internal/models"
)

func TestMinAllowedCompletion(t *testing.T) {
	logs := []models.ConstructionLog{
		taskLog(1, 9, day(-5), 20),
		taskLog(2, 9, day(-2), 45),
		taskLog(3, 10, day(-1), 80),
	}

	if got := MinAllowedCompletion(9, logs, nil); got != 45 {
		t.Errorf("MinAllowedCompletion(9) = %v, want 45", got)
	}
	if got := MinAllowedCompletion(11, logs, nil); got != 0 {
		t.Errorf("MinAllowedCompletion(no logs) = %v, want 0", got)
	}
	if got := MinAllowedCompletion(9, nil, nil); got != 0 {
		t.Errorf("MinAllowedCompletion(nil logs) = %v, want 0", got)
	}
}

func TestMinAllowedCompletion_ExcludesEditedLog(t *testing.T) {
	logs := []models.ConstructionLog{
		taskLog(1, 9, day(-5), 20),
		taskLog(2, 9, day(-2), 45),
	}

	if got := MinAllowedCompletion(9, logs, int64Ptr(2)); got != 20 {
		t.Errorf("editing latest log: floor = %v, want 20", got)
	}
	if got := MinAllowedCompletion(9, logs[:1], int64Ptr(1)); got != 0 {
		t.Errorf("editing the only log: floor = %v, want 0", got)
	}
}

func TestMinAllowedCompletion_OrdersByDateNotInput(t *testing.T) {
	logs := []models.ConstructionLog{
		taskLog(5, 9, day(-1), 70),
		taskLog(4, 9, day(-8), 90),
	}

	if got := MinAllowedCompletion(9, logs, nil); got != 70 {
		t.Errorf("floor = %v, want 70 from the most recent log", got)
	}
}

func TestMinAllowedCompletion_TiesKeepFirst(t *testing.T) {
	logs := []models.ConstructionLog{
		taskLog(1, 9, day(-1), 30),
		taskLog(2, 9, day(-1), 60),
	}

	if got := MinAllowedCompletion(9, logs, nil); got != 30 {
		t.Errorf("floor = %v, want 30 (first of same-day logs)", got)
	}
}

func TestMinAllowedCompletion_NullCompletion(t *testing.T) {
	taskID := int64(9)
	logs := []models.ConstructionLog{
		taskLog(1, 9, day(-4), 50),
		{ID: 2, TaskID: &taskID, LogDate: day(-1)},
	}

	if got := MinAllowedCompletion(9, logs, nil); got != 0 {
		t.Errorf("floor = %v, want 0 (latest log has no completion)", got)
	}
}

func TestClampCompletion(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		floor float64
		want  float64
	}{
		{"within range", 60, 45, 60},
		{"below floor", 30, 45, 45},
		{"at floor", 45, 45, 45},
		{"above ceiling", 120, 45, 100},
		{"negative", -5, 0, 0},
		{"nan", math.NaN(), 45, 45},
		{"floor over 100", 50, 130, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampCompletion(tt.value, tt.floor); got != tt.want {
				t.Errorf("ClampCompletion(%v, %v) = %v, want %v", tt.value, tt.floor, got, tt.want)
			}
		})
	}
}

func TestStepCompletion(t *testing.T) {
	tests := []struct {
		value, delta, floor, want float64
	}{
		{50, 5, 45, 55},
		{50, -5, 45, 45},
		{47, -5, 45, 45},
		{98, 5, 45, 100},
		{100, 5, 0, 100},
	}
	for _, tt := range tests {
		if got := StepCompletion(tt.value, tt.delta, tt.floor); got != tt.want {
			t.Errorf("StepCompletion(%v, %v, %v) = %v, want %v", tt.value, tt.delta, tt.floor, got, tt.want)
		}
	}
}

func TestCheckCompletion(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		floor   float64
		wantErr error
	}{
		{"ok", 50, 45, nil},
		{"equal to floor", 45, 45, nil},
		{"full", 100, 45, nil},
		{"below floor", 44.5, 45, ErrBelowFloor},
		{"negative", -1, 0, ErrBelowFloor},
		{"above ceiling", 100.5, 0, ErrAboveCeiling},
		{"nan", math.NaN(), 0, ErrInvalidCompletion},
		{"inf", math.Inf(1), 0, ErrInvalidCompletion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCompletion(tt.value, tt.floor)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckCompletion(%v, %v) = %v, want nil", tt.value, tt.floor, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckCompletion(%v, %v) = %v, want %v", tt.value, tt.floor, err, tt.wantErr)
			}
		})
	}
}

func TestMinAllowedCompletionIn_OrdersBySiteDay(t *testing.T) {
	// 23:30Z on the 14th and 01:00Z on the 15th are both the 15th at UTC+10.
	logs := []models.ConstructionLog{
		taskLog(1, 9, "2026-03-14T23:30:00Z", 30),
		taskLog(2, 9, "2026-03-15T01:00:00Z", 60),
	}
	site := time.FixedZone("UTC+10", 10*60*60)

	if got := MinAllowedCompletion(9, logs, nil); got != 60 {
		t.Errorf("UTC floor = %v, want 60 (second log is a day later)", got)
	}
	if got := MinAllowedCompletionIn(9, logs, nil, site); got != 30 {
		t.Errorf("UTC+10 floor = %v, want 30 (same day, first log kept)", got)
	}
	if got := MinAllowedCompletionIn(9, logs, nil, time.UTC); got != MinAllowedCompletion(9, logs, nil) {
		t.Errorf("MinAllowedCompletionIn(UTC) = %v, want MinAllowedCompletion result", got)
	}
}
