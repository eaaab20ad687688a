package schedule

import (
	"time"

	"daytriage/internal/model"
)

// findSlot walks forward from the given instant looking for the earliest spot
// where a task of the given duration and place fits without touching any
// already placed task. The search stops at midnight after the starting
// instant; nil means the task cannot be placed that day.
//
// The walk never scans minute by minute through busy time: a conflict moves
// the cursor straight past the conflicting task, an unsuitable block moves it
// to the next hour, and a matching block too small for the task moves it to
// the block's end. Cost is bounded by the number of blocks and conflicts.
func findSlot(from time.Time, duration time.Duration, place string, placed []model.Task, cfg Config) *time.Time {
	need := duration + cfg.Buffer
	cur := from
	dayEnd := startOfNextDay(from)

	for cur.Before(dayEnd) {
		block, ok := blockFor(cfg.Blocks, cur, place)
		if !ok {
			cur = nextHour(cur)
			continue
		}

		if c := conflictAt(cur, need, placed); c != nil {
			cur = c.EndTime.Add(cfg.Buffer)
			continue
		}

		blockEnd := block.EndAt(cur)
		if blockEnd.Sub(cur) >= need {
			start := cur
			return &start
		}

		// The block cannot fit the task, skip it entirely.
		cur = blockEnd
	}

	return nil
}

func blockFor(blocks []model.TimeBlock, t time.Time, place string) (model.TimeBlock, bool) {
	for _, b := range blocks {
		if b.Place == place && b.Contains(t) {
			return b, true
		}
	}
	return model.TimeBlock{}, false
}

// conflictAt returns the first placed task whose occupied interval overlaps
// [start, start+need).
func conflictAt(start time.Time, need time.Duration, placed []model.Task) *model.Task {
	end := start.Add(need)
	for i := range placed {
		t := &placed[i]
		if t.Status == model.StatusCompleted || t.StartTime == nil || t.EndTime == nil {
			continue
		}
		if start.Before(*t.EndTime) && end.After(*t.StartTime) {
			return t
		}
	}
	return nil
}
