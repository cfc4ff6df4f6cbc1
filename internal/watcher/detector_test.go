package watcher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"phishguard/internal/watcher"

	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	mu       sync.Mutex
	location string
	text     string
}

func (s *fakeSurface) set(location, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location, s.text = location, text
}

func (s *fakeSurface) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.location
}

func (s *fakeSurface) Text(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.text, nil
}

type scans struct {
	mu   sync.Mutex
	got  []string
	seen chan struct{}
}

func newScans() *scans { return &scans{seen: make(chan struct{}, 16)} }

func (s *scans) fn(_ context.Context, text string) {
	s.mu.Lock()
	s.got = append(s.got, text)
	s.mu.Unlock()
	s.seen <- struct{}{}
}

func (s *scans) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.got...)
}

func (s *scans) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.seen:
	case <-time.After(time.Second):
		t.Fatal("scan not triggered")
	}
}

func startDetector(t *testing.T, surface watcher.Surface, settle time.Duration, s *scans) chan<- struct{} {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	mutations := make(chan struct{})
	d := watcher.NewDetector(surface, s.fn, settle)
	done := make(chan struct{})
	go func() {
		d.Run(ctx, mutations)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		d.Wait()
	})

	return mutations
}

func TestDetector_identicalTextScansOnce(t *testing.T) {
	surface := &fakeSurface{location: "https://mail.example/#inbox/1", text: "see https://a.com"}
	s := newScans()
	mutations := startDetector(t, surface, time.Hour, s)

	mutations <- struct{}{}
	s.wait(t)
	mutations <- struct{}{}
	mutations <- struct{}{}

	surface.set("https://mail.example/#inbox/1", "see https://b.com")
	mutations <- struct{}{}
	s.wait(t)

	require.Equal(t, []string{"see https://a.com", "see https://b.com"}, s.texts())
}

func TestDetector_emptyTextIsIgnored(t *testing.T) {
	surface := &fakeSurface{location: "x"}
	s := newScans()
	mutations := startDetector(t, surface, time.Hour, s)

	mutations <- struct{}{}
	surface.set("x", "now with text")
	mutations <- struct{}{}
	s.wait(t)

	require.Equal(t, []string{"now with text"}, s.texts())
}

func TestDetector_locationChangeWaitsToSettle(t *testing.T) {
	surface := &fakeSurface{location: "https://mail.example/#inbox"}
	s := newScans()
	settle := 80 * time.Millisecond
	mutations := startDetector(t, surface, settle, s)
	// no text yet: nothing scanned, but the initial location is captured
	mutations <- struct{}{}

	start := time.Now()
	surface.set("https://mail.example/#inbox/2", "loading")
	mutations <- struct{}{}
	// the view finishes rendering before the delay ends
	time.Sleep(10 * time.Millisecond)
	surface.set("https://mail.example/#inbox/2", "rendered https://a.com")

	s.wait(t)
	require.GreaterOrEqual(t, time.Since(start), settle)
	require.Equal(t, []string{"rendered https://a.com"}, s.texts())
}

func TestDetector_stopsWhenMutationsClose(t *testing.T) {
	d := watcher.NewDetector(&fakeSurface{}, func(context.Context, string) {}, 0)
	mutations := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), mutations)
		close(done)
	}()
	close(mutations)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
