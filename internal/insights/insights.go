// Package insights derives simple aggregate statistics from the task
// collection. Nothing here is persisted; every summary is recomputed from the
// current collection on demand.
package insights

import (
	"math"

	"daytriage/internal/model"
)

// Summary is a snapshot of completion statistics.
type Summary struct {
	TotalTasks     int
	CompletedTasks int

	// CompletionRate is completed over total, 0..1.
	CompletionRate float64

	// AvgCompletedDuration is the mean estimated duration of completed
	// tasks, in minutes.
	AvgCompletedDuration int

	// MostProductiveDay and LeastProductiveDay are weekday names ranked by
	// total completed minutes. Empty when nothing has been completed.
	MostProductiveDay  string
	LeastProductiveDay string

	// MostProductiveHour is the start hour with the most completed minutes,
	// -1 when unknown.
	MostProductiveHour int
}

// Build computes a summary over the given collection.
func Build(tasks []model.Task) Summary {
	s := Summary{MostProductiveHour: -1}
	s.TotalTasks = len(tasks)
	if len(tasks) == 0 {
		return s
	}

	byDay := map[string]int{}
	byHour := map[int]int{}
	totalDuration := 0

	for _, t := range tasks {
		if t.Status != model.StatusCompleted {
			continue
		}
		s.CompletedTasks++
		totalDuration += t.Duration

		if t.StartTime == nil {
			continue
		}
		byDay[t.StartTime.Weekday().String()] += t.Duration
		byHour[t.StartTime.Hour()] += t.Duration
	}

	s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks)
	if s.CompletedTasks > 0 {
		s.AvgCompletedDuration = int(math.Round(float64(totalDuration) / float64(s.CompletedTasks)))
	}

	bestDay, worstDay := "", ""
	bestMin, worstMin := -1, math.MaxInt
	for day, minutes := range byDay {
		if minutes > bestMin || (minutes == bestMin && day < bestDay) {
			bestDay, bestMin = day, minutes
		}
		if minutes < worstMin || (minutes == worstMin && day < worstDay) {
			worstDay, worstMin = day, minutes
		}
	}
	s.MostProductiveDay = bestDay
	s.LeastProductiveDay = worstDay

	bestHour, bestHourMin := -1, -1
	for hour, minutes := range byHour {
		if minutes > bestHourMin || (minutes == bestHourMin && hour < bestHour) {
			bestHour, bestHourMin = hour, minutes
		}
	}
	s.MostProductiveHour = bestHour

	return s
}
