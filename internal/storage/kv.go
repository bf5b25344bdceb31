package storage

import "context"

// Keys under which progress counters are persisted.
const (
	KeyTotalSessions = "totalSessions"
	KeyTodaySessions = "todaySessions"
	KeyLastResetDate = "lastResetDate"
)

// Tx is the view of a key-value store inside one atomic update.
type Tx interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// KV is a string key-value store whose Update runs fn as one atomic step.
// Changes made through tx are committed only if fn returns nil.
type KV interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
}
