package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const fileLockRetry = 10 * time.Millisecond

// FileKV stores values as one JSON object. Each update holds an advisory
// lock on a sibling .lock file, so processes sharing the file serialize
// their read-modify-write. Writes go to a uniquely named temp file that is
// renamed over the target, so a crash never leaves a half-written file.
// A file that cannot be parsed is treated as empty and replaced on the next
// successful update.
type FileKV struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewFileKV(path string) (*FileKV, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("storage: empty file path")
	}
	return &FileKV{path: trimmed, lock: flock.New(trimmed + ".lock")}, nil
}

func (f *FileKV) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureDir(); err != nil {
		return err
	}
	locked, err := f.lock.TryLockContext(ctx, fileLockRetry)
	if err != nil {
		return fmt.Errorf("lock kv file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock kv file: %s is held by another process", f.lock.Path())
	}
	defer f.lock.Unlock()

	current, err := f.load()
	if err != nil {
		return err
	}
	tx := newMapTx(current)
	if err := fn(tx); err != nil {
		return err
	}
	return f.persist(tx.values)
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) load() (map[string]string, error) {
	out := make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read kv file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return out, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return out, nil
	}
	for k, v := range decoded {
		switch typed := v.(type) {
		case string:
			out[k] = typed
		case float64, bool:
			out[k] = fmt.Sprint(typed)
		}
	}
	return out, nil
}

func (f *FileKV) ensureDir() error {
	dir := filepath.Dir(f.path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create kv dir: %w", err)
	}
	return nil
}

func (f *FileKV) persist(values map[string]string) error {
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal kv: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create kv temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(payload, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write kv file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod kv file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close kv file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace kv file: %w", err)
	}
	return nil
}
