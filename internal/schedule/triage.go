package schedule

import (
	"sort"
	"time"

	"daytriage/internal/model"
)

// Result is the outcome of one triage pass. Scheduled holds placed tasks plus
// completed ones passed through unchanged, Deferred the tasks that did not fit
// anywhere before the end of the day.
type Result struct {
	Scheduled []model.Task
	Deferred  []model.Task
	Remaining time.Duration
}

// Tasks flattens the result back into one ordered collection, scheduled
// first. This is the shape the persistence boundary stores.
func (r Result) Tasks() []model.Task {
	out := make([]model.Task, 0, len(r.Scheduled)+len(r.Deferred))
	out = append(out, r.Scheduled...)
	out = append(out, r.Deferred...)
	return out
}

// Triage rebuilds the full schedule from scratch: sort every task into a
// deterministic order, then greedily place each one at the earliest slot the
// day template allows. Deferred tasks re-enter the pool on every pass, so a
// task blocked at one instant becomes placeable as soon as its blockers go
// away. The input is never mutated.
//
// A task whose assigned start is already in the past keeps its interval
// instead of being pushed forward. That anchoring is what lets a task run its
// course into ongoing and overdue as the clock advances; only an explicit
// edit, move or completion releases the slot.
func Triage(tasks []model.Task, now time.Time, cfg Config) Result {
	sorted := make([]model.Task, len(tasks))
	for i, t := range tasks {
		sorted[i] = t.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return taskLess(sorted[i], sorted[j])
	})

	// Anchor started tasks first so later placements route around them
	// regardless of sort position. The end is recomputed from the duration to
	// keep the interval consistent after learning adjustments.
	busy := make([]model.Task, 0, len(sorted))
	anchored := make(map[int64]bool, len(sorted))
	for i := range sorted {
		t := &sorted[i]
		if t.Status == model.StatusCompleted {
			continue
		}
		if t.StartTime != nil && t.EndTime != nil && !t.StartTime.After(now) {
			end := t.StartTime.Add(time.Duration(t.Duration) * time.Minute)
			t.EndTime = &end
			t.Status = deriveStatus(*t.StartTime, end, now)
			busy = append(busy, *t)
			anchored[t.ID] = true
		}
	}

	var res Result
	cursor := now
	for _, t := range sorted {
		if t.Status == model.StatusCompleted || anchored[t.ID] {
			res.Scheduled = append(res.Scheduled, t)
			continue
		}

		from := cursor
		if t.NotBefore != nil && t.NotBefore.After(from) {
			from = *t.NotBefore
		}

		duration := time.Duration(t.Duration) * time.Minute
		slot := findSlot(from, duration, t.Place, busy, cfg)
		if slot == nil {
			t.Status = model.StatusDeferred
			t.StartTime = nil
			t.EndTime = nil
			res.Deferred = append(res.Deferred, t)
			continue
		}

		start := *slot
		end := start.Add(duration)
		t.StartTime = &start
		t.EndTime = &end
		t.Status = deriveStatus(start, end, now)
		res.Scheduled = append(res.Scheduled, t)
		busy = append(busy, t)

		// Tasks pinned to a later date by a move do not hold up the rest of
		// the day, so the cursor only follows tasks placed in the main flow.
		if from.Equal(cursor) {
			cursor = end.Add(cfg.Buffer)
		}
	}

	res.Remaining = RemainingTime(res.Scheduled, now, cfg)
	return res
}

// taskLess orders tasks for placement: completed last, then priority,
// then rated long-term value, then previously assigned start time (unset
// sorts earliest), with IDs as the final tie break.
func taskLess(a, b model.Task) bool {
	aDone := a.Status == model.StatusCompleted
	bDone := b.Status == model.StatusCompleted
	if aDone != bDone {
		return bDone
	}
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() > b.Priority.Rank()
	}
	if a.LongTermValue != b.LongTermValue {
		return a.LongTermValue > b.LongTermValue
	}
	at := startOrZero(a)
	bt := startOrZero(b)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.ID < b.ID
}

func startOrZero(t model.Task) time.Time {
	if t.StartTime == nil {
		return time.Time{}
	}
	return *t.StartTime
}

// deriveStatus recomputes a placed task's status from the reference time.
// Status is never hand-set to one of these values anywhere else.
func deriveStatus(start, end, now time.Time) model.Status {
	switch {
	case !start.After(now) && end.After(now):
		return model.StatusOngoing
	case !end.After(now):
		return model.StatusOverdue
	default:
		return model.StatusPending
	}
}

// RemainingTime reports the free minutes left between now and bedtime after
// subtracting every task scheduled to start in that window. Past bedtime the
// current day's view has no free time; there is no rollover to tomorrow.
func RemainingTime(scheduled []model.Task, now time.Time, cfg Config) time.Duration {
	bed := cfg.bedtime(now)
	if !now.Before(bed) {
		return 0
	}

	free := bed.Sub(now)
	for _, t := range scheduled {
		if t.Status == model.StatusCompleted || t.StartTime == nil {
			continue
		}
		if t.StartTime.After(now) && t.StartTime.Before(bed) {
			free -= time.Duration(t.Duration) * time.Minute
		}
	}

	if free < 0 {
		free = 0
	}
	return free
}
