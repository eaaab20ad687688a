package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"daytriage/internal/model"
)

const ratePromptHeader = `Rate the following tasks based on their long-term benefit to the user. Provide a rating from 1-10 (10 being highest value) and a brief rationale for each rating.

Tasks:
`

const ratePromptFooter = `
Respond with a JSON array, one object per task in the same order, each containing "longTermValue" and "rationale". No prose.`

// RateTasks scores a snapshot of tasks by long-term value. The response must
// be a same-length ordered list; anything else is an error and the caller
// falls back to the neutral default.
func (c *Client) RateTasks(ctx context.Context, tasks []model.Task) ([]model.Rating, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString(ratePromptHeader)
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (Duration: %d minutes, Priority: %s)\n", t.Title, t.Duration, t.Priority)
	}
	b.WriteString(ratePromptFooter)

	reply, err := c.complete(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("could not rate tasks: %w", err)
	}

	var ratings []model.Rating
	if err := json.Unmarshal([]byte(stripFences(reply)), &ratings); err != nil {
		return nil, fmt.Errorf("malformed rating response: %w", err)
	}
	if len(ratings) != len(tasks) {
		return nil, fmt.Errorf("rating response has %d entries, want %d", len(ratings), len(tasks))
	}
	for i, r := range ratings {
		if r.LongTermValue < 1 || r.LongTermValue > 10 {
			return nil, fmt.Errorf("rating %d out of range: %d", i, r.LongTermValue)
		}
	}
	return ratings, nil
}
