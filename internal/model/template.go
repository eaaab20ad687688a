package model

import "time"

// TimeBlock is one slice of the fixed weekly day template: tasks tagged with
// Place may only be scheduled between Start and End o'clock. A block with
// Start > End wraps past midnight (e.g. sleep 22-8).
type TimeBlock struct {
	Start int
	End   int
	Place string
}

// Contains reports whether the wall-clock instant falls inside the block.
func (b TimeBlock) Contains(t time.Time) bool {
	h := t.Hour()
	if b.Start < b.End {
		return h >= b.Start && h < b.End
	}
	return h >= b.Start || h < b.End
}

// EndAt returns the absolute end of the block occurrence containing t.
// Overnight blocks entered before midnight end on the next day.
func (b TimeBlock) EndAt(t time.Time) time.Time {
	end := time.Date(t.Year(), t.Month(), t.Day(), b.End, 0, 0, 0, t.Location())
	if b.Start > b.End && t.Hour() >= b.Start {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// DefaultBlocks is the built-in day template. Callers inject their own set
// when the default does not fit (tests do).
func DefaultBlocks() []TimeBlock {
	return []TimeBlock{
		{Start: 8, End: 12, Place: "home"},
		{Start: 12, End: 13, Place: "break"},
		{Start: 13, End: 17, Place: "work"},
		{Start: 17, End: 22, Place: "home"},
		{Start: 22, End: 8, Place: "sleep"},
	}
}
