package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Journal records every completed focus session.
type Journal interface {
	AppendCompletion(ctx context.Context, in Completion) error
	GetCompletion(ctx context.Context, id string) (Completion, error)
	ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error)
}

// Repository is a KV that also keeps a completion journal.
type Repository interface {
	KV
	Journal
	Close() error
}
