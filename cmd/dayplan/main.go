// Command dayplan prints today's triaged schedule from the bot's database.
// It is a read-only view: the collection is loaded, triaged at the current
// wall-clock time and rendered, nothing is written back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agalitsyn/sqlite"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"daytriage/internal/insights"
	"daytriage/internal/model"
	"daytriage/internal/schedule"
	storage "daytriage/internal/storage/sqlite"
)

func main() {
	dbPath := flag.String("db-path", "daytriage.db", "Path to sqlite database file.")
	bedtime := flag.Int("bedtime-hour", 22, "Hour that ends the schedulable day.")
	noColor := flag.Bool("no-color", false, "Disable colored output.")
	showInsights := flag.Bool("insights", false, "Show productivity insights.")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	if err := run(*dbPath, *bedtime, *showInsights); err != nil {
		fmt.Fprintln(os.Stderr, "dayplan:", err)
		os.Exit(1)
	}
}

func run(dbPath string, bedtimeHour int, showInsights bool) error {
	db, err := sqlite.Connect(dbPath)
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer db.Close()

	repo := storage.NewTaskStorage(db)
	tasks, err := repo.Load(context.Background())
	if err != nil {
		return fmt.Errorf("could not load tasks: %w", err)
	}

	cfg := schedule.DefaultConfig()
	cfg.BedtimeHour = bedtimeHour

	now := time.Now()
	res := schedule.Triage(tasks, now, cfg)

	printSchedule(res)
	if showInsights {
		printInsights(insights.Build(res.Tasks()))
	}
	return nil
}

func printSchedule(res schedule.Result) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"ID", "Start", "End", "Title", "Place", "Priority", "Status"})

	for _, t := range res.Scheduled {
		w.AppendRow(table.Row{
			t.ID,
			clock(t.StartTime),
			clock(t.EndTime),
			t.Title,
			t.Place,
			t.Priority,
			coloredStatus(t.Status),
		})
	}
	for _, t := range res.Deferred {
		w.AppendRow(table.Row{t.ID, "--:--", "--:--", t.Title, t.Place, t.Priority, coloredStatus(t.Status)})
	}
	w.Render()

	fmt.Printf("\nRemaining today: %d min\n", int(res.Remaining.Minutes()))
}

func printInsights(sum insights.Summary) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)
	w.AppendRows([]table.Row{
		{"Tasks", sum.TotalTasks},
		{"Completed", sum.CompletedTasks},
		{"Completion rate", fmt.Sprintf("%.0f%%", sum.CompletionRate*100)},
		{"Avg completed duration", fmt.Sprintf("%d min", sum.AvgCompletedDuration)},
		{"Most productive day", sum.MostProductiveDay},
		{"Least productive day", sum.LeastProductiveDay},
	})
	fmt.Println()
	w.Render()
}

func clock(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}

func coloredStatus(s model.Status) string {
	switch s {
	case model.StatusOngoing:
		return color.GreenString(string(s))
	case model.StatusOverdue:
		return color.RedString(string(s))
	case model.StatusDeferred:
		return color.YellowString(string(s))
	case model.StatusCompleted:
		return color.HiBlackString(string(s))
	default:
		return string(s)
	}
}
