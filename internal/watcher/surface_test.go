package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"phishguard/internal/watcher"

	"github.com/stretchr/testify/require"
)

func TestPushSurface(t *testing.T) {
	s := watcher.NewPushSurface("")

	text, err := s.Text(context.Background())
	require.NoError(t, err)
	require.Empty(t, text)

	s.Update("https://mail.example/#inbox/1", `<div class="a3s">click https://a.com</div>`)
	s.Update("https://mail.example/#inbox/2", `<div class="a3s">click https://b.com</div>`)

	// two updates, one pending signal
	<-s.Mutations()
	select {
	case <-s.Mutations():
		t.Fatal("signals did not coalesce")
	default:
	}

	require.Equal(t, "https://mail.example/#inbox/2", s.Location())
	text, err = s.Text(context.Background())
	require.NoError(t, err)
	require.Equal(t, "click https://b.com", text)
}

func TestPushSurface_noMessageBody(t *testing.T) {
	s := watcher.NewPushSurface("div.a3s")
	s.Update("https://mail.example/#inbox",
		`<body><div class="inbox"><span>Alice</span><span>Lunch tomorrow? https://a.com</span></div></body>`)

	text, err := s.Text(context.Background())
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestFileSurface(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "1.txt")
	require.NoError(t, os.WriteFile(first, []byte("hello https://a.com\n"), 0o600))

	s, err := watcher.NewFileSurface(dir, "")
	require.NoError(t, err)
	require.Equal(t, first, s.Location())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error, 1)
	go func() { errs <- s.Run(ctx) }()

	// initial signal
	select {
	case <-s.Mutations():
	case <-time.After(time.Second):
		t.Fatal("no initial signal")
	}
	text, err := s.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello https://a.com", text)

	second := filepath.Join(dir, "2.html")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(second, []byte(`<div class="a3s">new https://b.com</div>`), 0o600))
	require.NoError(t, os.Chtimes(second, later, later))

	require.Eventually(t, func() bool { return s.Location() == second }, 2*time.Second, 10*time.Millisecond)
	text, err = s.Text(ctx)
	require.NoError(t, err)
	require.Equal(t, "new https://b.com", text)

	cancel()
	require.NoError(t, <-errs)
}

func TestNewFileSurface_notADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o600))

	_, err := watcher.NewFileSurface(f, "")
	require.Error(t, err)

	_, err = watcher.NewFileSurface(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	got := make(chan string, 4)
	r := watcher.NewRegistry(context.Background(), watcher.RegistryOptions{Settle: 10 * time.Millisecond},
		func(_ context.Context, surfaceID, text string) {
			got <- surfaceID + ": " + text
		})
	defer r.Close()

	r.Push("tab-1", "https://mail.example/#inbox/1", `<div class="a3s">https://a.com</div>`)
	r.Push("tab-2", "https://mail.example/#inbox/9", `<div class="a3s">https://z.com</div>`)
	require.Equal(t, 2, r.Len())

	seen := map[string]bool{}
	for range 2 {
		select {
		case s := <-got:
			seen[s] = true
		case <-time.After(time.Second):
			t.Fatal("scan not triggered")
		}
	}
	require.True(t, seen["tab-1: https://a.com"])
	require.True(t, seen["tab-2: https://z.com"])
}

func TestRegistry_inboxViewIsNotScanned(t *testing.T) {
	var scans atomic.Int32
	r := watcher.NewRegistry(context.Background(), watcher.RegistryOptions{
		Selector: "div.a3s",
		Settle:   10 * time.Millisecond,
	}, func(context.Context, string, string) {
		scans.Add(1)
	})

	r.Push("mail", "https://mail.example/#inbox", `<body><div><span>Alice</span><span>Lunch tomorrow?</span></div></body>`)
	r.Push("mail", "https://mail.example/#inbox", `<body><div><span>Bob</span><span>Re: report</span></div></body>`)
	time.Sleep(100 * time.Millisecond)
	r.Close()

	require.Zero(t, scans.Load())
}

func TestRegistry_reclaimsIdleSurfaces(t *testing.T) {
	r := watcher.NewRegistry(context.Background(), watcher.RegistryOptions{
		Settle:      10 * time.Millisecond,
		IdleTimeout: 50 * time.Millisecond,
	}, func(context.Context, string, string) {})
	defer r.Close()

	for _, id := range []string{"s-1", "s-2", "s-3"} {
		r.Push(id, "https://mail.example/#inbox/1", `<div class="a3s">hi</div>`)
	}
	require.Equal(t, 3, r.Len())

	require.Eventually(t, func() bool { return r.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	// a reclaimed surface starts over on its next push
	r.Push("s-1", "https://mail.example/#inbox/2", `<div class="a3s">again</div>`)
	require.Equal(t, 1, r.Len())
}

func TestRegistry_pushKeepsSurfaceAlive(t *testing.T) {
	r := watcher.NewRegistry(context.Background(), watcher.RegistryOptions{
		Settle:      10 * time.Millisecond,
		IdleTimeout: 150 * time.Millisecond,
	}, func(context.Context, string, string) {})
	defer r.Close()

	for i := range 6 {
		r.Push("busy", "https://mail.example/#inbox/1", `<div class="a3s">tick `+string(rune('a'+i))+`</div>`)
		time.Sleep(50 * time.Millisecond)
	}
	require.Equal(t, 1, r.Len())
}

func TestRegistry_capsSurfaces(t *testing.T) {
	r := watcher.NewRegistry(context.Background(), watcher.RegistryOptions{
		Settle:      10 * time.Millisecond,
		MaxSurfaces: 2,
	}, func(context.Context, string, string) {})
	defer r.Close()

	for _, id := range []string{"s-1", "s-2", "s-3", "s-4"} {
		r.Push(id, "https://mail.example/#inbox/1", `<div class="a3s">`+id+`</div>`)
		time.Sleep(2 * time.Millisecond)
		require.LessOrEqual(t, r.Len(), 2)
	}
	require.Equal(t, 2, r.Len())
}
