package model

import "context"

// TaskRepository persists the whole task collection as an ordered snapshot.
// The scheduler owns the in-memory collection; storage only mirrors it.
type TaskRepository interface {
	Load(ctx context.Context) ([]Task, error)
	Replace(ctx context.Context, tasks []Task) error
}
