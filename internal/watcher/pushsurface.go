package watcher

import (
	"context"
	"sync"

	"phishguard/pkg/htmltext"
)

// PushSurface is a view whose state is pushed to the agent, e.g. DOM
// snapshots posted by the browser extension. Each update is a mutation;
// pending signals coalesce.
type PushSurface struct {
	selector  string
	mutations chan struct{}

	mu       sync.Mutex
	location string
	html     string
}

// NewPushSurface creates an empty surface. selector picks the message body;
// a view without one, e.g. an inbox list, has no text.
func NewPushSurface(selector string) *PushSurface {
	return &PushSurface{
		selector:  selector,
		mutations: make(chan struct{}, 1),
	}
}

// Update replaces the view state and signals a mutation.
func (s *PushSurface) Update(location, html string) {
	s.mu.Lock()
	s.location = location
	s.html = html
	s.mu.Unlock()

	select {
	case s.mutations <- struct{}{}:
	default:
	}
}

// Mutations delivers one signal per batch of updates.
func (s *PushSurface) Mutations() <-chan struct{} { return s.mutations }

func (s *PushSurface) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.location
}

func (s *PushSurface) Text(context.Context) (string, error) {
	s.mu.Lock()
	html := s.html
	s.mu.Unlock()

	if html == "" {
		return "", nil
	}

	return htmltext.ExtractMatchString(html, s.selector)
}

var _ Surface = (*PushSurface)(nil)
