package schedule

import (
	"time"

	"daytriage/internal/model"
)

// Config is the injected, read-only scheduling template. It is copied into
// the scheduler at construction and never mutated afterwards.
type Config struct {
	// Blocks is the day template matched against task places.
	Blocks []model.TimeBlock

	// Buffer is reserved after every placed task before the next may start.
	Buffer time.Duration

	// BedtimeHour bounds the remaining-time calculation for the current day.
	BedtimeHour int
}

func DefaultConfig() Config {
	return Config{
		Blocks:      model.DefaultBlocks(),
		Buffer:      10 * time.Minute,
		BedtimeHour: 22,
	}
}

func (c Config) bedtime(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), c.BedtimeHour, 0, 0, 0, now.Location())
}

func startOfNextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func nextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Add(time.Hour)
}
