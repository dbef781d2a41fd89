package main

import (
	"strings"
	"testing"
)

// seedSite creates a delayed phase with a parent task and one subtask.
//
//	phase 1 Groundworks (ended yesterday)
//	  task 1 Excavation (ended yesterday)
//	    task 2 Footings
func seedSite(t *testing.T, path string) {
	t.Helper()
	steps := [][]string{
		{"phase", "create", "-c", path, "--name", "Groundworks", "--start", dayOffset(-10), "--end", dayOffset(-1)},
		{"task", "create", "-c", path, "--name", "Excavation", "--phase", "1", "--start", dayOffset(-10), "--end", dayOffset(-1)},
		{"task", "create", "-c", path, "--name", "Footings", "--parent", "1", "--priority", "high"},
	}
	for _, args := range steps {
		if out, err := runGW(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
	}
}

func TestTaskCreate(t *testing.T) {
	path := initConfig(t)
	if _, err := runGW(t, "phase", "create", "-c", path, "--name", "Groundworks"); err != nil {
		t.Fatalf("phase create: %v", err)
	}

	out, err := runGW(t, "task", "create", "-c", path, "--name", "Excavation", "--phase", "1", "--progress", "25")
	if err != nil {
		t.Fatalf("task create failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Created task 1: Excavation") || !strings.Contains(out, "Phase: 1") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = runGW(t, "task", "create", "-c", path, "--name", "Footings", "--parent", "1")
	if err != nil {
		t.Fatalf("subtask create failed: %v", err)
	}
	if !strings.Contains(out, "Parent: 1") {
		t.Errorf("expected parent in output, got: %s", out)
	}
}

func TestTaskCreate_Validation(t *testing.T) {
	path := initConfig(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing name", []string{"task", "create", "-c", path}, "name"},
		{"unknown parent", []string{"task", "create", "-c", path, "--name", "x", "--parent", "9"}, "not found"},
		{"unknown phase", []string{"task", "create", "-c", path, "--name", "x", "--phase", "9"}, "not found"},
		{"bad priority", []string{"task", "create", "-c", path, "--name", "x", "--priority", "asap"}, "priority"},
		{"bad date", []string{"task", "create", "-c", path, "--name", "x", "--start", "soon"}, "start date"},
		{"progress over 100", []string{"task", "create", "-c", path, "--name", "x", "--progress", "120"}, "above 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runGW(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestTaskList(t *testing.T) {
	path := initConfig(t)

	out, err := runGW(t, "task", "list", "-c", path)
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("expected empty message, got: %s", out)
	}

	seedSite(t, path)
	out, err = runGW(t, "task", "list", "-c", path)
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	for _, want := range []string{"ID", "PRIORITY", "Excavation", "Footings", "high"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}

	out, err = runGW(t, "task", "list", "-c", path, "--parent", "1")
	if err != nil {
		t.Fatalf("task list --parent failed: %v", err)
	}
	if strings.Contains(out, "Excavation") || !strings.Contains(out, "Footings") {
		t.Errorf("--parent 1 should list only Footings, got: %s", out)
	}

	if _, err := runGW(t, "task", "list", "-c", path, "--status", "paused"); err == nil {
		t.Error("expected error for unknown status filter")
	}
}

func TestTaskTree(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	out, err := runGW(t, "task", "tree", "-c", path)
	if err != nil {
		t.Fatalf("task tree failed: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "1 Excavation") {
		t.Errorf("line 0 = %q, want root Excavation", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  2 Footings") {
		t.Errorf("line 1 = %q, want indented Footings", lines[1])
	}
	if !strings.Contains(lines[0], "DELAYED") {
		t.Errorf("Excavation ended yesterday; want DELAYED in %q", lines[0])
	}
}

func TestTaskShow(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	out, err := runGW(t, "task", "show", "1", "-c", path)
	if err != nil {
		t.Fatalf("task show failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Excavation", "Groundworks", "DELAYED", "Last log:    never", "Subtasks (1)", "Footings"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}

	if _, err := runGW(t, "task", "show", "99", "-c", path); err == nil {
		t.Error("expected error for unknown task")
	}
	if _, err := runGW(t, "task", "show", "abc", "-c", path); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestTaskStatus(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	_, err := runGW(t, "task", "status", "1", "completed", "-c", path)
	if err == nil || !strings.Contains(err.Error(), "invalid status transition") {
		t.Errorf("not_started -> completed: err = %v, want invalid transition", err)
	}

	out, err := runGW(t, "task", "status", "1", "in_progress", "-c", path)
	if err != nil {
		t.Fatalf("task status failed: %v", err)
	}
	if !strings.Contains(out, "Task 1 status: in_progress") {
		t.Errorf("unexpected output: %s", out)
	}

	if _, err := runGW(t, "task", "status", "1", "paused", "-c", path); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestTaskProgress(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	_, err := runGW(t, "task", "progress", "1", "80", "-c", path)
	if err == nil || !strings.Contains(err.Error(), "derived") {
		t.Errorf("parent task progress: err = %v, want derived-progress error", err)
	}

	out, err := runGW(t, "task", "progress", "2", "60%", "-c", path)
	if err != nil {
		t.Fatalf("task progress failed: %v", err)
	}
	if !strings.Contains(out, "Task 2 progress: 60%") {
		t.Errorf("unexpected output: %s", out)
	}

	if _, err := runGW(t, "task", "progress", "2", "lots", "-c", path); err == nil {
		t.Error("expected error for non-numeric percentage")
	}
}

func TestPhaseCommands(t *testing.T) {
	path := initConfig(t)

	out, err := runGW(t, "phase", "list", "-c", path)
	if err != nil {
		t.Fatalf("phase list failed: %v", err)
	}
	if !strings.Contains(out, "No phases found.") {
		t.Errorf("expected empty message, got: %s", out)
	}

	seedSite(t, path)
	out, err = runGW(t, "phase", "list", "-c", path)
	if err != nil {
		t.Fatalf("phase list failed: %v", err)
	}
	if !strings.Contains(out, "Groundworks") || !strings.Contains(out, dayOffset(-1)) {
		t.Errorf("expected phase row, got: %s", out)
	}

	out, err = runGW(t, "phase", "progress", "-c", path)
	if err != nil {
		t.Fatalf("phase progress failed: %v", err)
	}
	for _, want := range []string{"Groundworks", "0%", "DELAYED"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}

	if _, err := runGW(t, "phase", "create", "-c", path, "--name", "Backwards", "--start", dayOffset(0), "--end", dayOffset(-5)); err == nil {
		t.Error("expected error for end before start")
	}
}
