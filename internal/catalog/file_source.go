package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
)

// FileSource reads the catalog from a JSON file on disk.
type FileSource struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger, debounce: 200 * time.Millisecond}
}

// Path returns the watched file path.
func (s *FileSource) Path() string {
	return s.path
}

// Products reads and decodes the file.
func (s *FileSource) Products(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Decode(data)
}

// Watch calls onChange after the file is written, created or renamed into
// place, coalescing bursts of events. The parent directory is watched so that
// editors replacing the file atomically are noticed. Watch blocks until ctx
// is cancelled.
func (s *FileSource) Watch(ctx context.Context, onChange func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.logger.InfoContext(ctx, "catalog file changed", slog.String("path", s.path))
			onChange(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.WarnContext(ctx, "catalog watcher error", slog.String("error", err.Error()))
		}
	}
}
