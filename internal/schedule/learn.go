package schedule

import (
	"math"
	"time"

	"daytriage/internal/model"
)

const (
	// learnThreshold is the estimate error, in minutes, below which a
	// completion teaches nothing.
	learnThreshold = 10.0

	// learnRate is the fraction of the observed error folded into the new
	// estimate.
	learnRate = 0.1
)

// adjustSimilar nudges the duration estimates of similarly titled tasks
// toward the actual duration observed for a just-completed task. Matching is
// a case-insensitive substring test on titles, so "write report" teaches
// "write report for Q3" too. No history is kept beyond this one adjustment.
func adjustSimilar(tasks []model.Task, done model.Task, actual time.Duration) int {
	diff := actual.Minutes() - float64(done.Duration)
	if math.Abs(diff) <= learnThreshold {
		return 0
	}

	newEstimate := float64(done.Duration) + diff*learnRate

	adjusted := 0
	for i := range tasks {
		t := &tasks[i]
		if t.ID == done.ID || t.Status == model.StatusCompleted {
			continue
		}
		if !t.TitleMatches(done.Title) {
			continue
		}
		t.Duration = int(math.Round((float64(t.Duration) + newEstimate) / 2))
		adjusted++
	}
	return adjusted
}
