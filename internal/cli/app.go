package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sandeepkv93/focusnest/internal/config"
	"github.com/sandeepkv93/focusnest/internal/logging"
	"github.com/sandeepkv93/focusnest/internal/progress"
	"github.com/sandeepkv93/focusnest/internal/storage"
)

// app holds what every command needs: config, logger, store and tracker.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	journal storage.Journal
	tracker *progress.Tracker
	closers []io.Closer
}

type appOptions struct {
	// stderrLogs mirrors log records to stderr.
	stderrLogs bool
}

func openApp(flags *rootFlags, opts appOptions) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.Setup(logging.Options{
		Path:    cfg.LogFile,
		Verbose: flags.verbose,
		Stderr:  opts.stderrLogs,
	})
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}
	kv, journal, closer, err := openStore(cfg.Storage)
	if err != nil {
		// The tracker runs from memory when storage cannot be opened.
		logger.Warn("storage unavailable, progress will not persist", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path, "err", err)
		kv, journal = nil, nil
	} else if closer != nil {
		a.closers = append([]io.Closer{closer}, a.closers...)
	}
	a.journal = journal

	trackerOpts := []progress.Option{progress.WithLogger(logger), progress.WithLocation(loc)}
	if journal != nil {
		trackerOpts = append(trackerOpts, progress.WithJournal(journal))
	}
	a.tracker = progress.NewTracker(kv, trackerOpts...)
	logger.Debug("app opened", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStore returns the KV for sc and, when the backend keeps one, its
// completion journal.
func openStore(sc config.StorageConfig) (storage.KV, storage.Journal, io.Closer, error) {
	switch sc.Backend {
	case config.BackendMemory:
		mem := storage.NewMemoryKV()
		return mem, mem, nil, nil
	case config.BackendFile:
		kv, err := storage.NewFileKV(sc.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv, nil, nil, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		repo, err := storage.OpenSQLite(sc.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return repo, repo, repo, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, sc.Backend)
	}
}
