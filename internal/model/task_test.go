package model

import (
	"testing"
	"time"
)

func TestTaskValidate(t *testing.T) {
	valid := func() *Task { return NewTask("write report", 30, PriorityMustDo, "work") }

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"empty title", func(task *Task) { task.Title = "  " }},
		{"zero duration", func(task *Task) { task.Duration = 0 }},
		{"negative duration", func(task *Task) { task.Duration = -5 }},
		{"unknown priority", func(task *Task) { task.Priority = "urgent" }},
		{"empty place", func(task *Task) { task.Place = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid()
			tt.mutate(task)
			if err := task.Validate(); err == nil {
				t.Error("want a validation error")
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityMustDo.Rank() <= PriorityShouldDo.Rank() {
		t.Error("must do should outrank should do")
	}
	if PriorityShouldDo.Rank() <= PriorityIfTimeAvailable.Rank() {
		t.Error("should do should outrank if time available")
	}
	if Priority("whatever").Rank() != 0 {
		t.Error("unknown priority should rank 0")
	}
	if Priority("whatever").Valid() {
		t.Error("unknown priority should not be valid")
	}
}

func TestTaskClone(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)
	orig := NewTask("a", 60, PriorityShouldDo, "home")
	orig.StartTime, orig.EndTime = &start, &end

	clone := orig.Clone()
	*clone.StartTime = clone.StartTime.Add(time.Hour)

	if !orig.StartTime.Equal(start) {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestTitleMatches(t *testing.T) {
	task := Task{Title: "Write Report for Q3"}

	if !task.TitleMatches("write report") {
		t.Error("match should ignore case")
	}
	if !task.TitleMatches("report") {
		t.Error("match should be a substring test")
	}
	if task.TitleMatches("budget") {
		t.Error("unrelated title matched")
	}
}

func TestTimeBlockContains(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2025, 3, 10, h, 30, 0, 0, time.Local)
	}
	day := TimeBlock{Start: 8, End: 12, Place: "home"}
	night := TimeBlock{Start: 22, End: 8, Place: "sleep"}

	tests := []struct {
		name  string
		block TimeBlock
		hour  int
		want  bool
	}{
		{"inside day block", day, 9, true},
		{"at day start", day, 8, true},
		{"at day end", day, 12, false},
		{"before day block", day, 7, false},
		{"overnight before midnight", night, 23, true},
		{"overnight after midnight", night, 3, true},
		{"overnight daytime", night, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.Contains(at(tt.hour)); got != tt.want {
				t.Errorf("Contains(%d:30) = %v, want %v", tt.hour, got, tt.want)
			}
		})
	}
}

func TestTimeBlockEndAt(t *testing.T) {
	night := TimeBlock{Start: 22, End: 8, Place: "sleep"}

	before := time.Date(2025, 3, 10, 23, 0, 0, 0, time.Local)
	if got := night.EndAt(before); got.Day() != 11 || got.Hour() != 8 {
		t.Errorf("entered before midnight, end = %v, want 08:00 next day", got)
	}

	after := time.Date(2025, 3, 11, 3, 0, 0, 0, time.Local)
	if got := night.EndAt(after); got.Day() != 11 || got.Hour() != 8 {
		t.Errorf("entered after midnight, end = %v, want 08:00 same day", got)
	}

	day := TimeBlock{Start: 8, End: 12, Place: "home"}
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	if got := day.EndAt(in); got.Day() != 10 || got.Hour() != 12 {
		t.Errorf("day block end = %v, want 12:00 same day", got)
	}
}
