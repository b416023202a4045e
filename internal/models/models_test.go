package models

import (
	"testing"
	"time"
)

func TestPriorityRank(t *testing.T) {
	cases := map[string]int{"High": 3, "Medium": 2, "Low": 1, "": 0, "high": 0, "Urgent": 0}
	for priority, want := range cases {
		if got := PriorityRank(priority); got != want {
			t.Fatalf("PriorityRank(%q) = %d, want %d", priority, got, want)
		}
	}
}

func TestParseStatusAndSort(t *testing.T) {
	if ParseStatus("completed") != StatusCompleted || ParseStatus("not_completed") != StatusNotCompleted {
		t.Fatalf("known statuses must parse")
	}
	if ParseStatus("other") != StatusAll || ParseStatus("") != StatusAll {
		t.Fatalf("unknown status must mean all tasks")
	}
	if ParseSort("priority") != SortPriority || ParseSort("date") != SortDate || ParseSort("title") != SortTitle {
		t.Fatalf("known criteria must parse")
	}
	if ParseSort("random") != SortDefault {
		t.Fatalf("unknown criteria must fall back to default ordering")
	}
}

func TestStatsOf(t *testing.T) {
	s := StatsOf([]Task{{Complete: true}, {}, {Complete: true}, {}, {}})
	if s != (Stats{Total: 5, Completed: 2, Pending: 3}) {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if StatsOf(nil) != (Stats{}) {
		t.Fatalf("expected zero stats for no tasks")
	}
}

func TestTask_DueDateAndDisplayZone(t *testing.T) {
	task := Task{CreatedAt: time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)}
	if task.HasDueDate() || task.DueDateString() != "" {
		t.Fatalf("expected no due date")
	}
	task.DueDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if task.DueDateString() != "2024-05-01" {
		t.Fatalf("unexpected due date %q", task.DueDateString())
	}

	plus2 := time.FixedZone("EET", 2*60*60)
	if got := task.CreatedAtIn(plus2); got.Day() != 2 || got.Hour() != 0 {
		t.Fatalf("expected next day midnight, got %v", got)
	}
	if !task.CreatedAtIn(nil).Equal(task.CreatedAt) {
		t.Fatalf("nil location must keep UTC")
	}
}
