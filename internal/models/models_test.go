package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestTask_Fields(t *testing.T) {
	typ := reflect.TypeOf(Task{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ProjectID", "index")
	assertGormTag(t, typ, "ProjectID", "not null")
	assertGormTag(t, typ, "ParentID", "index")
	assertGormTag(t, typ, "PhaseID", "index")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Status", "default:not_started")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Priority", "default:medium")

	assertFieldType(t, typ, "ParentID", "*int64")
	assertFieldType(t, typ, "PhaseID", "*int64")
	assertFieldType(t, typ, "StartDate", "*string")
	assertFieldType(t, typ, "EndDate", "*string")
	assertFieldType(t, typ, "ProgressPercentage", "*float64")
}

func TestPhase_Fields(t *testing.T) {
	typ := reflect.TypeOf(Phase{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ProjectID", "index")
	assertGormTag(t, typ, "Name", "not null")
	assertFieldType(t, typ, "StartDate", "*string")
	assertFieldType(t, typ, "EndDate", "*string")

	if _, ok := typ.FieldByName("ProgressPercentage"); ok {
		t.Error("Phase must not store its own progress")
	}
}

func TestConstructionLog_Fields(t *testing.T) {
	typ := reflect.TypeOf(ConstructionLog{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TaskID", "index")
	assertGormTag(t, typ, "LogDate", "not null")
	assertGormTag(t, typ, "LogDate", "index")
	assertGormTag(t, typ, "Notes", "type:text")
	assertGormTag(t, typ, "Attachments", "serializer:json")

	assertFieldType(t, typ, "TaskID", "*int64")
	assertFieldType(t, typ, "CompletionPercentage", "*float64")
	assertFieldType(t, typ, "Attachments", "[]string")
}

func TestConstructionLog_TableName(t *testing.T) {
	if got := (ConstructionLog{}).TableName(); got != "construction_logs" {
		t.Errorf("TableName() = %q, want %q", got, "construction_logs")
	}
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusDelayed} {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	for _, s := range []TaskStatus{"", "done", "IN_PROGRESS"} {
		if s.Valid() {
			t.Errorf("%q.Valid() = true, want false", s)
		}
	}
}

func TestTaskPriority_Valid(t *testing.T) {
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.Valid() {
			t.Errorf("%q.Valid() = false, want true", p)
		}
	}
	if TaskPriority("critical").Valid() {
		t.Error(`"critical".Valid() = true, want false`)
	}
}
