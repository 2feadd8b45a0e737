package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/target/fatal-log-mailer/internal/domain/model"
)

// LogLocatorOptions groups dependencies for LogLocator.
type LogLocatorOptions struct {
	Dir    string // Required: directory the platform writes fatal-error logs to
	Logger *slog.Logger
}

// LogLocator finds the fatal-error log files for a given date.
type LogLocator struct {
	dir    string
	logger *slog.Logger
}

// NewLogLocator constructs a LogLocator.
func NewLogLocator(opts LogLocatorOptions) *LogLocator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "log_locator")
	}
	return &LogLocator{dir: opts.Dir, logger: logger}
}

// Dir returns the directory being scanned.
func (l *LogLocator) Dir() string {
	return l.dir
}

// Find lists regular files named fatal-errors-<date><anything>.log. The date is matched
// literally; a missing directory yields no files and no error.
func (l *LogLocator) Find(ctx context.Context, date string) ([]model.LogFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(l.dir) == "" {
		return nil, errors.New("log directory is not configured")
	}

	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.DebugContext(ctx, "log directory does not exist", "dir", l.dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list log directory %s: %w", l.dir, err)
	}

	prefix := model.LogFilePrefix + date
	var files []model.LogFile
	for _, e := range entries {
		if !matchesLogName(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		// Stat follows symlinks; dangling links and directories are skipped.
		info, statErr := os.Stat(path)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, model.LogFile{Path: path, Name: e.Name()})
	}
	return files, nil
}

func matchesLogName(name, prefix string) bool {
	return len(name) >= len(prefix)+len(model.LogFileSuffix) &&
		strings.HasPrefix(name, prefix) &&
		strings.HasSuffix(name, model.LogFileSuffix)
}
