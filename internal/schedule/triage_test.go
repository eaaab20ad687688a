package schedule

import (
	"testing"
	"time"

	"daytriage/internal/model"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.Local)
}

func testConfig(blocks ...model.TimeBlock) Config {
	return Config{
		Blocks:      blocks,
		Buffer:      10 * time.Minute,
		BedtimeHour: 22,
	}
}

func workdayConfig() Config {
	return testConfig(
		model.TimeBlock{Start: 8, End: 12, Place: "home"},
		model.TimeBlock{Start: 13, End: 17, Place: "work"},
		model.TimeBlock{Start: 17, End: 22, Place: "home"},
	)
}

func task(id int64, title string, duration int, priority model.Priority, place string) model.Task {
	t := model.NewTask(title, duration, priority, place)
	t.ID = id
	return *t
}

func TestTriage_SingleTaskInMatchingBlock(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 9, End: 17, Place: "work"})
	tasks := []model.Task{task(1, "write report", 60, model.PriorityMustDo, "work")}

	res := Triage(tasks, at(9, 0), cfg)

	if len(res.Scheduled) != 1 || len(res.Deferred) != 0 {
		t.Fatalf("want 1 scheduled, 0 deferred, got %d/%d", len(res.Scheduled), len(res.Deferred))
	}
	got := res.Scheduled[0]
	if got.StartTime == nil || !got.StartTime.Equal(at(9, 0)) {
		t.Errorf("start = %v, want 09:00", got.StartTime)
	}
	if got.EndTime == nil || !got.EndTime.Equal(at(10, 0)) {
		t.Errorf("end = %v, want 10:00", got.EndTime)
	}
	if got.Status != model.StatusOngoing {
		t.Errorf("status = %s, want ongoing (start == now)", got.Status)
	}
}

func TestTriage_FutureTaskIsPending(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 9, End: 17, Place: "work"})
	tasks := []model.Task{task(1, "write report", 60, model.PriorityMustDo, "work")}

	res := Triage(tasks, at(8, 30), cfg)

	got := res.Scheduled[0]
	if got.StartTime == nil || !got.StartTime.Equal(at(9, 0)) {
		t.Fatalf("start = %v, want 09:00", got.StartTime)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestTriage_BufferBetweenTasks(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 8, End: 12, Place: "home"})
	tasks := []model.Task{
		task(1, "laundry", 60, model.PriorityMustDo, "home"),
		task(2, "vacuum", 60, model.PriorityMustDo, "home"),
	}

	res := Triage(tasks, at(8, 0), cfg)

	if len(res.Scheduled) != 2 {
		t.Fatalf("want 2 scheduled, got %d (deferred %d)", len(res.Scheduled), len(res.Deferred))
	}
	if !res.Scheduled[0].StartTime.Equal(at(8, 0)) || !res.Scheduled[0].EndTime.Equal(at(9, 0)) {
		t.Errorf("first task at %v–%v, want 08:00–09:00", res.Scheduled[0].StartTime, res.Scheduled[0].EndTime)
	}
	if !res.Scheduled[1].StartTime.Equal(at(9, 10)) || !res.Scheduled[1].EndTime.Equal(at(10, 10)) {
		t.Errorf("second task at %v–%v, want 09:10–10:10", res.Scheduled[1].StartTime, res.Scheduled[1].EndTime)
	}
}

func TestTriage_DefersWhenBlockTooSmall(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 13, End: 14, Place: "work"})
	tasks := []model.Task{task(1, "review", 30, model.PriorityMustDo, "work")}

	// Only five minutes of work block left.
	res := Triage(tasks, at(13, 55), cfg)

	if len(res.Deferred) != 1 {
		t.Fatalf("want 1 deferred, got %d", len(res.Deferred))
	}
	got := res.Deferred[0]
	if got.Status != model.StatusDeferred {
		t.Errorf("status = %s, want deferred", got.Status)
	}
	if got.StartTime != nil || got.EndTime != nil {
		t.Errorf("deferred task must have no times, got %v–%v", got.StartTime, got.EndTime)
	}
}

func TestTriage_StartedTaskKeepsItsSlot(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 8, End: 22, Place: "home"})
	started := task(1, "in progress", 60, model.PriorityShouldDo, "home")
	start, end := at(8, 0), at(9, 0)
	started.StartTime, started.EndTime = &start, &end
	fresh := task(2, "next up", 30, model.PriorityMustDo, "home")

	res := Triage([]model.Task{started, fresh}, at(8, 30), cfg)

	byID := map[int64]model.Task{}
	for _, s := range res.Scheduled {
		byID[s.ID] = s
	}
	got := byID[1]
	if !got.StartTime.Equal(start) || !got.EndTime.Equal(end) {
		t.Errorf("started task moved to %v–%v, want anchored 08:00–09:00", got.StartTime, got.EndTime)
	}
	if got.Status != model.StatusOngoing {
		t.Errorf("status = %s, want ongoing", got.Status)
	}
	// The fresh task routes around the anchored one even though it outranks it.
	if !byID[2].StartTime.Equal(at(9, 10)) {
		t.Errorf("fresh task start = %v, want 09:10 after the anchored slot", byID[2].StartTime)
	}
}

func TestTriage_PriorityOrdersPlacement(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 8, End: 22, Place: "home"})
	tasks := []model.Task{
		task(1, "if time", 30, model.PriorityIfTimeAvailable, "home"),
		task(2, "must", 30, model.PriorityMustDo, "home"),
		task(3, "should", 30, model.PriorityShouldDo, "home"),
	}

	res := Triage(tasks, at(8, 0), cfg)

	var order []int64
	for _, s := range res.Scheduled {
		order = append(order, s.ID)
	}
	want := []int64{2, 3, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("placement order = %v, want %v", order, want)
		}
	}
}

func TestTriage_LongTermValueBreaksTies(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 8, End: 22, Place: "home"})
	lowValue := task(1, "scroll feeds", 30, model.PriorityShouldDo, "home")
	lowValue.LongTermValue = 2
	highValue := task(2, "exercise", 30, model.PriorityShouldDo, "home")
	highValue.LongTermValue = 9

	res := Triage([]model.Task{lowValue, highValue}, at(8, 0), cfg)

	if res.Scheduled[0].ID != 2 {
		t.Errorf("higher long-term value should be placed first, got order %d, %d",
			res.Scheduled[0].ID, res.Scheduled[1].ID)
	}
}

func TestTriage_CompletedTasksPassThrough(t *testing.T) {
	cfg := testConfig(model.TimeBlock{Start: 8, End: 22, Place: "home"})
	done := task(1, "done", 30, model.PriorityMustDo, "home")
	done.Status = model.StatusCompleted
	start, end := at(8, 0), at(8, 30)
	done.StartTime, done.EndTime = &start, &end

	res := Triage([]model.Task{done, task(2, "next", 30, model.PriorityShouldDo, "home")}, at(9, 0), cfg)

	var found *model.Task
	for i := range res.Scheduled {
		if res.Scheduled[i].ID == 1 {
			found = &res.Scheduled[i]
		}
	}
	if found == nil {
		t.Fatal("completed task missing from result")
	}
	if found.Status != model.StatusCompleted || !found.StartTime.Equal(start) || !found.EndTime.Equal(end) {
		t.Errorf("completed task was modified: %+v", found)
	}
	// Completed sorts last, so the open task is placed without regard to it.
	if res.Scheduled[0].ID != 2 {
		t.Errorf("open task should come first in the result")
	}
}

func TestTriage_NoOverlapInvariant(t *testing.T) {
	cfg := workdayConfig()
	tasks := []model.Task{
		task(1, "a", 45, model.PriorityMustDo, "home"),
		task(2, "b", 90, model.PriorityMustDo, "work"),
		task(3, "c", 30, model.PriorityShouldDo, "home"),
		task(4, "d", 120, model.PriorityShouldDo, "work"),
		task(5, "e", 15, model.PriorityIfTimeAvailable, "home"),
	}

	res := Triage(tasks, at(8, 0), cfg)

	for i := 0; i < len(res.Scheduled); i++ {
		a := res.Scheduled[i]
		if a.Status == model.StatusCompleted {
			continue
		}
		for j := i + 1; j < len(res.Scheduled); j++ {
			b := res.Scheduled[j]
			if b.Status == model.StatusCompleted {
				continue
			}
			aEnd := a.EndTime.Add(cfg.Buffer)
			bEnd := b.EndTime.Add(cfg.Buffer)
			if a.StartTime.Before(bEnd) && b.StartTime.Before(aEnd) {
				t.Errorf("tasks %d and %d overlap: %v–%v vs %v–%v",
					a.ID, b.ID, a.StartTime, aEnd, b.StartTime, bEnd)
			}
		}
	}
}

func TestTriage_PlaceWindowInvariant(t *testing.T) {
	cfg := workdayConfig()
	tasks := []model.Task{
		task(1, "a", 45, model.PriorityMustDo, "work"),
		task(2, "b", 60, model.PriorityShouldDo, "home"),
		task(3, "c", 30, model.PriorityShouldDo, "work"),
	}

	res := Triage(tasks, at(8, 0), cfg)

	for _, s := range res.Scheduled {
		if s.Status == model.StatusCompleted {
			continue
		}
		var block *model.TimeBlock
		for i, b := range cfg.Blocks {
			if b.Place == s.Place && b.Contains(*s.StartTime) {
				block = &cfg.Blocks[i]
				break
			}
		}
		if block == nil {
			t.Errorf("task %d starts at %v outside any %s block", s.ID, s.StartTime, s.Place)
			continue
		}
		if s.EndTime.After(block.EndAt(*s.StartTime)) {
			t.Errorf("task %d runs past its block: ends %v, block ends %v",
				s.ID, s.EndTime, block.EndAt(*s.StartTime))
		}
	}
}

func TestTriage_Idempotent(t *testing.T) {
	cfg := workdayConfig()
	tasks := []model.Task{
		task(1, "a", 45, model.PriorityMustDo, "home"),
		task(2, "b", 90, model.PriorityShouldDo, "work"),
		task(3, "c", 300, model.PriorityIfTimeAvailable, "work"),
	}
	now := at(8, 0)

	first := Triage(tasks, now, cfg)
	second := Triage(first.Tasks(), now, cfg)

	if len(first.Scheduled) != len(second.Scheduled) || len(first.Deferred) != len(second.Deferred) {
		t.Fatalf("partition changed: %d/%d then %d/%d",
			len(first.Scheduled), len(first.Deferred), len(second.Scheduled), len(second.Deferred))
	}
	for i := range first.Scheduled {
		a, b := first.Scheduled[i], second.Scheduled[i]
		if a.ID != b.ID || !a.StartTime.Equal(*b.StartTime) || !a.EndTime.Equal(*b.EndTime) {
			t.Errorf("slot %d changed: %d@%v then %d@%v", i, a.ID, a.StartTime, b.ID, b.StartTime)
		}
	}
	if first.Remaining != second.Remaining {
		t.Errorf("remaining changed: %v then %v", first.Remaining, second.Remaining)
	}
}

func TestTriage_InputNotMutated(t *testing.T) {
	cfg := workdayConfig()
	tasks := []model.Task{task(1, "a", 45, model.PriorityMustDo, "home")}

	Triage(tasks, at(8, 0), cfg)

	if tasks[0].StartTime != nil || tasks[0].Status != model.StatusPending {
		t.Errorf("input was mutated: %+v", tasks[0])
	}
}

func TestRemainingTime(t *testing.T) {
	cfg := workdayConfig()

	t.Run("empty day", func(t *testing.T) {
		got := RemainingTime(nil, at(10, 0), cfg)
		if got != 12*time.Hour {
			t.Errorf("remaining = %v, want 12h", got)
		}
	})

	t.Run("scheduled tasks subtract", func(t *testing.T) {
		start := at(11, 0)
		end := at(12, 0)
		scheduled := []model.Task{{ID: 1, Duration: 60, Status: model.StatusPending, StartTime: &start, EndTime: &end}}
		got := RemainingTime(scheduled, at(10, 0), cfg)
		if got != 11*time.Hour {
			t.Errorf("remaining = %v, want 11h", got)
		}
	})

	t.Run("past bedtime is zero", func(t *testing.T) {
		if got := RemainingTime(nil, at(23, 0), cfg); got != 0 {
			t.Errorf("remaining = %v, want 0", got)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		var scheduled []model.Task
		for i := int64(1); i <= 20; i++ {
			start := at(10, 30)
			end := at(12, 30)
			scheduled = append(scheduled, model.Task{
				ID: i, Duration: 120, Status: model.StatusPending, StartTime: &start, EndTime: &end,
			})
		}
		if got := RemainingTime(scheduled, at(10, 0), cfg); got != 0 {
			t.Errorf("remaining = %v, want clamped 0", got)
		}
	})

	t.Run("bounded by minutes until bedtime", func(t *testing.T) {
		now := at(21, 30)
		got := RemainingTime(nil, now, cfg)
		if got < 0 || got > 30*time.Minute {
			t.Errorf("remaining = %v, want within [0, 30m]", got)
		}
	})
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		now   time.Time
		want  model.Status
	}{
		{"before start", at(10, 0), at(11, 0), at(9, 0), model.StatusPending},
		{"at start", at(10, 0), at(11, 0), at(10, 0), model.StatusOngoing},
		{"mid task", at(10, 0), at(11, 0), at(10, 30), model.StatusOngoing},
		{"at end", at(10, 0), at(11, 0), at(11, 0), model.StatusOverdue},
		{"after end", at(10, 0), at(11, 0), at(12, 0), model.StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveStatus(tt.start, tt.end, tt.now); got != tt.want {
				t.Errorf("deriveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}
