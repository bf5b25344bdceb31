package storage

import "time"

type Completion struct {
	ID           string
	FocusMinutes int
	CompletedAt  time.Time
}

type CompletionListFilter struct {
	Since  *time.Time
	Limit  int
	Offset int
}
