package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"daytriage/internal/model"
)

const parsePrompt = `Parse the following task input and extract these details:
- Task title
- Estimated duration (in minutes)
- Priority (must do, should do, if time available)
- Location (home, work, or unspecified)
- Deadline (if mentioned, as an ISO-8601 timestamp)

User input: %q

Respond with a single JSON object with keys "title", "duration", "priority", "place" and optional "deadline". No prose.`

type parsedTask struct {
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Priority string `json:"priority"`
	Place    string `json:"place"`
	Deadline string `json:"deadline"`
}

// ParseTask turns a free-text description into a validated task draft.
// Input matching an already completed title returns model.ErrInputIgnored
// before any network round trip. Any other failure comes back as an error and
// the caller skips the add; the collection is never touched here.
func (c *Client) ParseTask(ctx context.Context, input string, completedTitles []string) (model.Task, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Task{}, fmt.Errorf("empty input")
	}

	lower := strings.ToLower(input)
	for _, title := range completedTitles {
		if title != "" && strings.Contains(lower, strings.ToLower(title)) {
			return model.Task{}, model.ErrInputIgnored
		}
	}

	reply, err := c.complete(ctx, fmt.Sprintf(parsePrompt, input))
	if err != nil {
		return model.Task{}, fmt.Errorf("could not parse task input: %w", err)
	}

	var draft parsedTask
	if err := json.Unmarshal([]byte(stripFences(reply)), &draft); err != nil {
		return model.Task{}, fmt.Errorf("malformed parser response: %w", err)
	}

	task := model.NewTask(draft.Title, draft.Duration, normalizePriority(draft.Priority), normalizePlace(draft.Place))
	if d, ok := parseDeadline(draft.Deadline); ok {
		task.Deadline = &d
	}

	if err := task.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("parser returned invalid task: %w", err)
	}
	return *task, nil
}

func normalizePriority(s string) model.Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "must do", "must-do":
		return model.PriorityMustDo
	case "if time available", "if-time-available":
		return model.PriorityIfTimeAvailable
	default:
		return model.PriorityShouldDo
	}
}

func normalizePlace(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "unspecified" {
		return "home"
	}
	return s
}

// parseDeadline accepts the timestamp shapes models actually produce. An
// unparseable deadline is dropped rather than failing the whole add.
func parseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
