package model

import (
	"errors"
	"strings"
	"time"
)

// Task is a single schedulable item. StartTime and EndTime are assigned by
// triage and are nil while the task is unscheduled or deferred.
type Task struct {
	ID       int64
	Title    string
	Duration int // estimated minutes
	Priority Priority
	Place    string
	Status   Status

	StartTime *time.Time
	EndTime   *time.Time

	// NotBefore is an earliest-start constraint set when a task is moved to a
	// later date. Triage never places the task before it.
	NotBefore *time.Time

	// Deadline is advisory. Tasks past their deadline are not dropped.
	Deadline *time.Time

	// LongTermValue (1-10) and Rationale come from the rating collaborator.
	// Zero means unrated and sorts as lowest value.
	LongTermValue int
	Rationale     string

	CreatedAt time.Time
}

func NewTask(title string, duration int, priority Priority, place string) *Task {
	return &Task{
		Title:    title,
		Duration: duration,
		Priority: priority,
		Place:    place,
		Status:   StatusPending,
	}
}

// Clone returns a deep copy so triage results never alias caller state.
func (t Task) Clone() Task {
	c := t
	c.StartTime = cloneTime(t.StartTime)
	c.EndTime = cloneTime(t.EndTime)
	c.NotBefore = cloneTime(t.NotBefore)
	c.Deadline = cloneTime(t.Deadline)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// TitleMatches reports whether the task title contains sub, ignoring case.
// Used by duration learning and by the parser's ignore check.
func (t Task) TitleMatches(sub string) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(sub))
}

func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}
	if t.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if !t.Priority.Valid() {
		return errors.New("priority must be 'must do', 'should do' or 'if time available'")
	}
	if strings.TrimSpace(t.Place) == "" {
		return errors.New("place is required")
	}
	return nil
}

type Priority string

const (
	PriorityMustDo          Priority = "must do"
	PriorityShouldDo        Priority = "should do"
	PriorityIfTimeAvailable Priority = "if time available"
)

func (p Priority) Valid() bool {
	return p.Rank() != 0
}

// Rank maps priorities onto a strict total order, higher scheduled first.
func (p Priority) Rank() int {
	switch p {
	case PriorityMustDo:
		return 3
	case PriorityShouldDo:
		return 2
	case PriorityIfTimeAvailable:
		return 1
	default:
		return 0
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusOngoing   Status = "ongoing"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
	StatusDeferred  Status = "deferred"
)

// ErrInputIgnored signals that a free-text input matched an already completed
// task and should not produce a new one.
var ErrInputIgnored = errors.New("input matches a completed task")

// Rating is one entry of the rating collaborator's response.
type Rating struct {
	LongTermValue int    `json:"longTermValue"`
	Rationale     string `json:"rationale"`
}

// NeutralRating is substituted when the rating collaborator fails.
var NeutralRating = Rating{LongTermValue: 5, Rationale: "unavailable"}
