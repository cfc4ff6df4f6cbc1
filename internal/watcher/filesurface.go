package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"phishguard/pkg/htmltext"
	"phishguard/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileSurface is a mail drop directory. Its location is the most recently
// modified message file; .html and .htm files are reduced to their visible
// text, anything else is read as plain text.
type FileSurface struct {
	dir       string
	selector  string
	mutations chan struct{}

	mu       sync.Mutex
	location string
}

// NewFileSurface creates a surface over dir.
func NewFileSurface(dir, selector string) (*FileSurface, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("could not stat mail directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	s := &FileSurface{
		dir:       dir,
		selector:  selector,
		mutations: make(chan struct{}, 1),
	}
	s.location = s.newest()

	return s, nil
}

// Mutations delivers one signal per batch of directory changes.
func (s *FileSurface) Mutations() <-chan struct{} { return s.mutations }

func (s *FileSurface) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.location
}

func (s *FileSurface) Text(context.Context) (string, error) {
	path := s.Location()
	if path == "" {
		return "", nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read message file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return htmltext.ExtractString(string(b), s.selector)
	default:
		return strings.TrimSpace(string(b)), nil
	}
}

// Run watches the directory until ctx is done. The current newest file is
// signalled once at start.
func (s *FileSurface) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("could not watch %s: %w", s.dir, err)
	}
	s.signal()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) == 0 {
				continue
			}
			newest := s.newest()
			s.mu.Lock()
			s.location = newest
			s.mu.Unlock()
			s.signal()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "mail directory watch error", zap.Error(err))
		}
	}
}

func (s *FileSurface) signal() {
	select {
	case s.mutations <- struct{}{}:
	default:
	}
}

func (s *FileSurface) newest() string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return ""
	}

	var (
		path string
		mod  time.Time
	)
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if path == "" || info.ModTime().After(mod) {
			path = filepath.Join(s.dir, e.Name())
			mod = info.ModTime()
		}
	}

	return path
}

var _ Surface = (*FileSurface)(nil)
