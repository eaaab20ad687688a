package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"daytriage/internal/insights"
	"daytriage/internal/model"
	"daytriage/internal/schedule"
)

var titleCaser = cases.Title(language.English)

func statusEmoji(s model.Status) string {
	switch s {
	case model.StatusOngoing:
		return "▶️"
	case model.StatusOverdue:
		return "⚠️"
	case model.StatusCompleted:
		return "✅"
	case model.StatusDeferred:
		return "💤"
	default:
		return "🕒"
	}
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}

func formatTaskLine(t model.Task) string {
	line := fmt.Sprintf("%s #%d %s–%s *%s* (%d min, %s, %s)",
		statusEmoji(t.Status),
		t.ID,
		formatClock(t.StartTime),
		formatClock(t.EndTime),
		t.Title,
		t.Duration,
		t.Priority,
		titleCaser.String(t.Place),
	)
	if t.LongTermValue > 0 {
		line += fmt.Sprintf(" [value %d/10]", t.LongTermValue)
	}
	return line
}

func formatResult(res schedule.Result) string {
	var b strings.Builder
	b.WriteString("📋 *Schedule*\n\n")

	shown := 0
	for _, t := range res.Scheduled {
		if t.Status == model.StatusCompleted {
			continue
		}
		b.WriteString(formatTaskLine(t))
		b.WriteString("\n")
		shown++
	}
	if shown == 0 {
		b.WriteString("Nothing scheduled.\n")
	}

	if len(res.Deferred) > 0 {
		b.WriteString("\n💤 *Deferred (no slot today)*\n")
		for _, t := range res.Deferred {
			fmt.Fprintf(&b, "• #%d %s (%d min, %s, %s)\n",
				t.ID, t.Title, t.Duration, t.Priority, titleCaser.String(t.Place))
		}
	}

	fmt.Fprintf(&b, "\n⏳ Remaining today: %d min", int(res.Remaining.Minutes()))
	return b.String()
}

func formatRatings(tasks []model.Task) string {
	var b strings.Builder
	b.WriteString("💡 *Long-term value*\n\n")
	rated := 0
	for _, t := range tasks {
		if t.Status == model.StatusCompleted || t.LongTermValue == 0 {
			continue
		}
		fmt.Fprintf(&b, "• %s — %d/10: %s\n", t.Title, t.LongTermValue, t.Rationale)
		rated++
	}
	if rated == 0 {
		b.WriteString("No rated tasks.")
	}
	return b.String()
}

// formatInsights renders the summary as a monospace table inside a code
// block, which telegram displays aligned.
func formatInsights(sum insights.Summary) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendRows([]table.Row{
		{"Tasks", sum.TotalTasks},
		{"Completed", sum.CompletedTasks},
		{"Completion rate", fmt.Sprintf("%.0f%%", sum.CompletionRate*100)},
		{"Avg completed duration", fmt.Sprintf("%d min", sum.AvgCompletedDuration)},
		{"Most productive day", orDash(sum.MostProductiveDay)},
		{"Least productive day", orDash(sum.LeastProductiveDay)},
		{"Most productive hour", formatHour(sum.MostProductiveHour)},
	})
	return "📈 *Insights*\n```\n" + w.Render() + "\n```"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func formatHour(h int) string {
	if h < 0 {
		return "—"
	}
	return fmt.Sprintf("%02d:00", h)
}
