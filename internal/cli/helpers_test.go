package cli

import (
	"testing"
	"time"

	"github.com/imkarma/taskboard/internal/task"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long title", 8, "too lon…"},
		{"héllo wörld", 5, "héll…"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPadIgnoresANSI(t *testing.T) {
	got := pad(colorGreen+"done"+colorReset, 6)
	if stripANSI(got) != "done  " {
		t.Errorf("pad = %q", stripANSI(got))
	}
}

func TestUnlessAll(t *testing.T) {
	if got := unlessAll("all"); got != "" {
		t.Errorf("unlessAll(all) = %q", got)
	}
	if got := unlessAll("ALL"); got != "" {
		t.Errorf("unlessAll(ALL) = %q", got)
	}
	if got := unlessAll("Work"); got != "Work" {
		t.Errorf("unlessAll(Work) = %q", got)
	}
}

func TestDueText(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	date := func(s string) task.Date {
		d, err := task.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	tests := []struct {
		name string
		task task.Task
		want string
	}{
		{"no deadline", task.Task{}, ""},
		{"today", task.Task{Deadline: date("2025-06-10")}, "due today"},
		{"overdue", task.Task{Deadline: date("2025-06-07")}, "overdue 3 days ago"},
		{"upcoming", task.Task{Deadline: date("2025-06-12")}, "due 2 days from now"},
		{"completed", task.Task{Status: task.StatusCompleted, Deadline: date("2025-06-07")}, "2025-06-07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripANSI(dueText(tt.task, now)); got != tt.want {
				t.Errorf("dueText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskboardPath(t *testing.T) {
	if got := taskboardPath("config.yaml"); got != ".taskboard/config.yaml" {
		t.Errorf("taskboardPath = %q", got)
	}
}
