package main

import (
	"strings"
	"testing"
)

func TestLogAdd_MonotonicCompletion(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	out, err := runGW(t, "log", "add", "-c", path, "--task", "2", "--date", dayOffset(-2), "--completion", "40", "--personnel", "6")
	if err != nil {
		t.Fatalf("log add failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Recorded log 1 for "+dayOffset(-2)) || !strings.Contains(out, "Task: 2 at 40%") {
		t.Errorf("unexpected output: %s", out)
	}

	_, err = runGW(t, "log", "add", "-c", path, "--task", "2", "--completion", "30")
	if err == nil {
		t.Fatal("expected completion below previous log to be rejected")
	}
	if !strings.Contains(err.Error(), "minimum for task 2 is 40%") {
		t.Errorf("err = %v, want floor hint", err)
	}

	if _, err := runGW(t, "log", "add", "-c", path, "--task", "2", "--completion", "101"); err == nil {
		t.Error("expected completion over 100 to be rejected")
	}

	out, err = runGW(t, "log", "add", "-c", path, "--task", "2", "--completion", "40")
	if err != nil {
		t.Fatalf("log at the floor failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "for "+dayOffset(0)) {
		t.Errorf("log date should default to today, got: %s", out)
	}
}

func TestLogAdd_Unattached(t *testing.T) {
	path := initConfig(t)

	out, err := runGW(t, "log", "add", "-c", path, "--weather", "rain", "--notes", "site closed", "--attach", "photo-1.jpg", "--attach", "photo-2.jpg")
	if err != nil {
		t.Fatalf("log add failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "Task:") {
		t.Errorf("unattached log should not report a task, got: %s", out)
	}

	if _, err := runGW(t, "log", "add", "-c", path, "--task", "9"); err == nil {
		t.Error("expected error for unknown task")
	}
	if _, err := runGW(t, "log", "add", "-c", path, "--personnel", "-1"); err == nil {
		t.Error("expected error for negative personnel")
	}
}

func TestLogList(t *testing.T) {
	path := initConfig(t)

	out, err := runGW(t, "log", "list", "-c", path)
	if err != nil {
		t.Fatalf("log list failed: %v", err)
	}
	if !strings.Contains(out, "No logs found.") {
		t.Errorf("expected empty message, got: %s", out)
	}

	seedSite(t, path)
	for _, args := range [][]string{
		{"log", "add", "-c", path, "--task", "2", "--date", dayOffset(-3), "--completion", "10", "--notes", "formwork"},
		{"log", "add", "-c", path, "--task", "1", "--date", dayOffset(-1), "--notes", "dig complete"},
	} {
		if out, err := runGW(t, args...); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
	}

	out, err = runGW(t, "log", "list", "-c", path)
	if err != nil {
		t.Fatalf("log list failed: %v", err)
	}
	newest := strings.Index(out, "dig complete")
	oldest := strings.Index(out, "formwork")
	if newest < 0 || oldest < 0 || newest > oldest {
		t.Errorf("expected newest log first, got: %s", out)
	}

	out, err = runGW(t, "log", "list", "-c", path, "--task", "2")
	if err != nil {
		t.Fatalf("log list --task failed: %v", err)
	}
	if strings.Contains(out, "dig complete") || !strings.Contains(out, "formwork") {
		t.Errorf("--task 2 should list only its log, got: %s", out)
	}
}

func TestLogFloor(t *testing.T) {
	path := initConfig(t)
	seedSite(t, path)

	out, err := runGW(t, "log", "floor", "2", "-c", path)
	if err != nil {
		t.Fatalf("log floor failed: %v", err)
	}
	if !strings.Contains(out, "Task 2 minimum completion: 0%") {
		t.Errorf("unexpected output: %s", out)
	}

	for _, args := range [][]string{
		{"log", "add", "-c", path, "--task", "2", "--date", dayOffset(-4), "--completion", "20"},
		{"log", "add", "-c", path, "--task", "2", "--date", dayOffset(-1), "--completion", "45"},
	} {
		if out, err := runGW(t, args...); err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
	}

	out, err = runGW(t, "log", "floor", "2", "-c", path)
	if err != nil {
		t.Fatalf("log floor failed: %v", err)
	}
	if !strings.Contains(out, "45%") {
		t.Errorf("floor = %s, want 45%%", out)
	}

	out, err = runGW(t, "log", "floor", "2", "-c", path, "--exclude", "2")
	if err != nil {
		t.Fatalf("log floor --exclude failed: %v", err)
	}
	if !strings.Contains(out, "20%") {
		t.Errorf("floor excluding log 2 = %s, want 20%%", out)
	}

	if _, err := runGW(t, "log", "floor", "99", "-c", path); err == nil {
		t.Error("expected error for unknown task")
	}
}
