package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	mockclassifier "phishguard/internal/classifier/mock"
	"phishguard/internal/notify"
	mocknotify "phishguard/internal/notify/mock"
	"phishguard/internal/orchestrator"
	"phishguard/pkg/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type contentFixture struct {
	scanner    *orchestrator.ContentScanner
	classifier *mockclassifier.MockClassifier
	notifier   *mocknotify.MockNotifier
	sender     *mocknotify.MockSender
}

func newContentFixture(t *testing.T, concurrency int) contentFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := contentFixture{
		classifier: mockclassifier.NewMockClassifier(ctrl),
		notifier:   mocknotify.NewMockNotifier(ctrl),
		sender:     mocknotify.NewMockSender(ctrl),
	}
	f.scanner = orchestrator.NewContentScanner(f.classifier, f.notifier, f.sender, orchestrator.ContentOptions{Concurrency: concurrency})

	return f
}

func TestContentScanner_noURLs(t *testing.T) {
	f := newContentFixture(t, 0)
	f.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Times(0)
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", "No URLs found in this email.", domain.SeverityInfo)

	batch := f.scanner.OnContentChanged(context.Background(), "tab-1", "Hi, lunch tomorrow?")
	require.Empty(t, batch.Results)
	require.Zero(t, batch.PhishingCount)
}

func TestContentScanner_batch(t *testing.T) {
	f := newContentFixture(t, 4)

	f.classifier.EXPECT().Classify(gomock.Any(), "https://b.com").Return(domain.Scored(true, 0.87))
	f.classifier.EXPECT().Classify(gomock.Any(), "https://a.com").Return(domain.Scored(false, 0.12))
	f.classifier.EXPECT().Classify(gomock.Any(), "https://c.com").Return(domain.Failed(errors.New("timeout")))

	wantLines := []string{
		"https://b.com → 🚨 Phishing (Phishing Probability: 87.00%)",
		"https://a.com → ✅ Safe (Phishing Probability: 12.00%)",
		"https://c.com → ⚠️ Error scanning URL (timeout)",
	}

	gomock.InOrder(
		f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", "Scanning email for phishing URLs...", domain.SeverityInfo),
		f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", strings.Join(wantLines, "\n"), domain.SeverityPhishing),
	)
	gomock.InOrder(
		f.sender.EXPECT().Send(gomock.Any(), "tab-1", notify.EmailScanStarted()).Return(true),
		f.sender.EXPECT().Send(gomock.Any(), "tab-1", notify.EmailScanResults(wantLines)).Return(true),
	)

	batch := f.scanner.OnContentChanged(context.Background(), "tab-1",
		"https://b.com https://a.com https://b.com https://c.com")

	require.Len(t, batch.Results, 3)
	require.Equal(t, "https://b.com", batch.Results[0].Target.URL)
	require.Equal(t, "https://a.com", batch.Results[1].Target.URL)
	require.Equal(t, "https://c.com", batch.Results[2].Target.URL)
	require.Equal(t, domain.SurfaceEmailContent, batch.Results[0].Target.Surface)
	require.Equal(t, 1, batch.PhishingCount)
	require.Equal(t, batch.PhishingCount, notify.CountPhishing(wantLines))
}

func TestContentScanner_allSafe(t *testing.T) {
	f := newContentFixture(t, 1)
	f.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(domain.Whitelisted()).Times(2)
	f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", "Scanning email for phishing URLs...", domain.SeverityInfo)
	f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", gomock.Any(), domain.SeveritySafe)
	f.sender.EXPECT().Send(gomock.Any(), "tab-1", gomock.Any()).Return(true).Times(2)

	batch := f.scanner.OnContentChanged(context.Background(), "tab-1", "https://google.com https://github.com")
	require.Zero(t, batch.PhishingCount)
}

func TestContentScanner_errorsWithoutPhishing(t *testing.T) {
	f := newContentFixture(t, 2)
	f.classifier.EXPECT().Classify(gomock.Any(), "https://a.com").Return(domain.Whitelisted())
	f.classifier.EXPECT().Classify(gomock.Any(), "https://down.example").
		Return(domain.Failed(errors.New("connection refused")))
	f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", "Scanning email for phishing URLs...", domain.SeverityInfo)
	f.notifier.EXPECT().Notify(gomock.Any(), "tab-1", gomock.Any(), domain.SeverityError)
	f.sender.EXPECT().Send(gomock.Any(), "tab-1", gomock.Any()).Return(true).Times(2)

	batch := f.scanner.OnContentChanged(context.Background(), "tab-1", "https://a.com https://down.example")
	require.Zero(t, batch.PhishingCount)
}

func TestContentScanner_boundedConcurrency(t *testing.T) {
	f := newContentFixture(t, 2)

	var inFlight, peak atomic.Int32
	f.classifier.EXPECT().Classify(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, string) domain.Verdict {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)

		return domain.Scored(false, 0)
	}).Times(6)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
	f.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(true).Times(2)

	batch := f.scanner.OnContentChanged(context.Background(), "tab-1",
		"https://1.com https://2.com https://3.com https://4.com https://5.com https://6.com")

	require.Len(t, batch.Results, 6)
	require.LessOrEqual(t, peak.Load(), int32(2))
}
