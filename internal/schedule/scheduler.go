package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"daytriage/internal/model"
)

// Rater is the task-value collaborator. Implementations receive a snapshot
// and must not hold on to it.
type Rater interface {
	RateTasks(ctx context.Context, tasks []model.Task) ([]model.Rating, error)
}

// Scheduler owns the task collection and the reference clock. Every mutation
// runs to completion under one lock and ends with a full re-triage, so
// overlapping triggers (user commands, the periodic tick) queue up instead of
// interleaving mid-computation.
type Scheduler struct {
	mu     sync.Mutex
	cfg    Config
	rater  Rater
	tasks  []model.Task
	now    time.Time
	nextID int64
}

// New builds a scheduler around an existing collection, typically loaded from
// storage. rater may be nil; rating then degrades to the neutral default.
func New(cfg Config, rater Rater, tasks []model.Task, now time.Time) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		rater:  rater,
		now:    now,
		nextID: 1,
	}
	s.tasks = make([]model.Task, len(tasks))
	for i, t := range tasks {
		s.tasks[i] = t.Clone()
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// Add appends a validated task and re-optimizes. The task gets a fresh ID and
// starts out pending with no assigned times.
func (s *Scheduler) Add(t model.Task) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.ID = s.nextID
	s.nextID++
	t.Status = model.StatusPending
	t.StartTime = nil
	t.EndTime = nil
	t.CreatedAt = s.now

	s.tasks = append(s.tasks, t)
	log.Printf("[DEBUG] added task id=%d title=%q", t.ID, t.Title)
	return s.retriage()
}

// Delete removes a task by ID and re-optimizes. Unknown IDs are a no-op.
func (s *Scheduler) Delete(id int64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	return s.retriage()
}

// Complete marks a task done at the reference time, feeds the observed
// duration into the learning heuristic and re-optimizes. Unknown IDs are a
// no-op.
func (s *Scheduler) Complete(id int64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(id)
	if t == nil {
		return s.retriage()
	}

	if t.StartTime != nil {
		if actual := s.now.Sub(*t.StartTime); actual > 0 {
			if n := adjustSimilar(s.tasks, *t, actual); n > 0 {
				log.Printf("[DEBUG] completion of id=%d adjusted %d similar estimates", id, n)
			}
		}
	}

	t.Status = model.StatusCompleted
	end := s.now
	t.EndTime = &end
	t.NotBefore = nil
	return s.retriage()
}

// Patch carries optional field updates for Edit and Adjust. Nil fields stay
// untouched.
type Patch struct {
	Title    *string
	Duration *int
	Priority *model.Priority
	Place    *string
	Deadline *time.Time
}

// Edit shallow-merges the patch into a task and re-optimizes. Unknown IDs are
// a no-op.
func (s *Scheduler) Edit(id int64, p Patch) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.find(id); t != nil {
		applyPatch(t, p)
	}
	return s.retriage()
}

// Adjustment is one entry of a batch adjustment.
type Adjustment struct {
	ID int64
	Patch
}

// Adjust applies a whole batch of patches and re-optimizes once, so the batch
// lands in a single consistent sort-and-place pass.
func (s *Scheduler) Adjust(adjustments []Adjustment) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, adj := range adjustments {
		if t := s.find(adj.ID); t != nil {
			applyPatch(t, adj.Patch)
		}
	}
	return s.retriage()
}

// Move asks triage to place the task on or after the given instant. Assigned
// times are cleared; the constraint sticks across later passes.
func (s *Scheduler) Move(id int64, when time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.find(id); t != nil {
		w := when
		t.NotBefore = &w
		t.StartTime = nil
		t.EndTime = nil
		t.Status = model.StatusPending
	}
	return s.retriage()
}

// SetNow advances the reference clock and re-optimizes. This alone turns
// pending tasks ongoing or overdue; no timer ever writes statuses directly.
func (s *Scheduler) SetNow(now time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
	return s.retriage()
}

// Rate consults the rating collaborator with a snapshot of the open tasks and
// merges the scores back in as sort tie-breakers. Failures and malformed
// responses degrade every open task to the neutral rating; the error is
// returned for logging but the pass itself never crashes. The lock is held
// across the call so no other trigger mutates the in-flight collection.
func (s *Scheduler) Rate(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot in ID order; replies map back to tasks by index.
	var open []model.Task
	for _, t := range s.tasks {
		if t.Status != model.StatusCompleted {
			open = append(open, t.Clone())
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	if len(open) == 0 || s.rater == nil {
		return s.retriage(), nil
	}

	ratings, err := s.rater.RateTasks(ctx, open)
	if err == nil && len(ratings) != len(open) {
		err = fmt.Errorf("rating response length mismatch: want %d, got %d", len(open), len(ratings))
	}
	if err != nil {
		for i := range open {
			s.applyRating(open[i].ID, model.NeutralRating)
		}
		return s.retriage(), err
	}

	for i, r := range ratings {
		s.applyRating(open[i].ID, r)
	}
	return s.retriage(), nil
}

// Remaining is derived and side-effect free.
func (s *Scheduler) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RemainingTime(s.tasks, s.now, s.cfg)
}

// Tasks returns a snapshot of the current ordered collection.
func (s *Scheduler) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// CompletedTitles lists titles of completed tasks, for the parser's ignore
// check.
func (s *Scheduler) CompletedTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var titles []string
	for _, t := range s.tasks {
		if t.Status == model.StatusCompleted {
			titles = append(titles, t.Title)
		}
	}
	return titles
}

// Now returns the current reference time.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// retriage rebuilds the schedule and replaces the collection with the
// flattened result. Callers must hold the lock.
func (s *Scheduler) retriage() Result {
	res := Triage(s.tasks, s.now, s.cfg)
	s.tasks = res.Tasks()
	return res
}

func (s *Scheduler) find(id int64) *model.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *Scheduler) applyRating(id int64, r model.Rating) {
	if t := s.find(id); t != nil {
		t.LongTermValue = r.LongTermValue
		t.Rationale = r.Rationale
	}
}

// applyPatch merges the patch and releases the task's assigned slot so the
// next triage pass places it under the new attributes.
func applyPatch(t *model.Task, p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Place != nil {
		t.Place = *p.Place
	}
	if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if t.Status != model.StatusCompleted {
		t.StartTime = nil
		t.EndTime = nil
		t.Status = model.StatusPending
	}
}
