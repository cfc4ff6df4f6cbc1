package classifier_test

import (
	"context"
	"errors"
	"testing"

	"phishguard/internal/classifier"
	"phishguard/pkg/domain"
	"phishguard/pkg/lists"
	"phishguard/pkg/predictor"
	mockpredictor "phishguard/pkg/predictor/mock"
	"phishguard/pkg/serrors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newPipeline(t *testing.T, whitelist, blocklist []string) (classifier.Classifier, *mockpredictor.MockClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mockpredictor.NewMockClient(ctrl)

	return classifier.New(classifier.Options{
		Stages: classifier.DefaultStages(lists.NewWhitelist(whitelist), lists.NewBlocklist(blocklist), client, nil),
	}), client
}

func TestClassify_whitelistSkipsRemote(t *testing.T) {
	c, client := newPipeline(t, []string{"https://www.google.com"}, nil)
	client.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)

	v := c.Classify(context.Background(), "https://google.com/maps")
	require.Equal(t, domain.VerdictWhitelisted, v.Kind)
	require.Zero(t, v.Confidence)
}

func TestClassify_whitelistIsExact(t *testing.T) {
	c, client := newPipeline(t, []string{"https://google.com"}, nil)
	client.EXPECT().Predict(gomock.Any(), "https://mail.google.com/").Return(predictor.Prediction{Confidence: 0.01}, nil)

	v := c.Classify(context.Background(), "https://mail.google.com/")
	require.Equal(t, domain.VerdictScoredSafe, v.Kind)
}

func TestClassify_whitelistWinsOverBlocklist(t *testing.T) {
	c, client := newPipeline(t, []string{"https://example.com"}, []string{"example.com"})
	client.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)

	v := c.Classify(context.Background(), "https://EXAMPLE.com/login")
	require.Equal(t, domain.VerdictWhitelisted, v.Kind)
}

func TestClassify_blocklistSkipsRemote(t *testing.T) {
	c, client := newPipeline(t, nil, []string{"www.evil-bank.com"})
	client.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)

	for _, u := range []string{"http://evil-bank.com/verify", "https://www.evil-bank.com", "https://login.evil-bank.com"} {
		v := c.Classify(context.Background(), u)
		require.Equal(t, domain.VerdictBlocklisted, v.Kind, u)
		require.Zero(t, v.Confidence)
		require.True(t, v.IsPhishing())
	}
}

func TestClassify_remote(t *testing.T) {
	c, client := newPipeline(t, nil, nil)
	client.EXPECT().Predict(gomock.Any(), "https://login-paypa1.com").Return(predictor.Prediction{Phishing: true, Confidence: 0.87}, nil)
	client.EXPECT().Predict(gomock.Any(), "https://blog.example.org").Return(predictor.Prediction{Confidence: 0.12}, nil)

	v := c.Classify(context.Background(), "https://login-paypa1.com")
	require.Equal(t, domain.VerdictScoredPhishing, v.Kind)
	require.InDelta(t, 0.87, v.Confidence, 1e-9)

	v = c.Classify(context.Background(), "https://blog.example.org")
	require.Equal(t, domain.VerdictScoredSafe, v.Kind)
	require.InDelta(t, 0.12, v.Confidence, 1e-9)
}

func TestClassify_remoteErrorKeepsKind(t *testing.T) {
	c, client := newPipeline(t, nil, nil)
	client.EXPECT().Predict(gomock.Any(), gomock.Any()).
		Return(predictor.Prediction{}, serrors.Wrap(serrors.ErrNetworkFailure, errors.New("dial tcp: refused"), "could not send request"))

	v := c.Classify(context.Background(), "https://x.test")
	require.True(t, v.IsError())
	require.Equal(t, serrors.ErrNetworkFailure, v.ErrorKind())
	require.Contains(t, v.Reason(), "refused")
}

func TestClassify_invalidURL(t *testing.T) {
	c, client := newPipeline(t, []string{"https://google.com"}, []string{"google.com"})
	client.EXPECT().Predict(gomock.Any(), gomock.Any()).Times(0)

	for _, u := range []string{"not a url", "", "https://", "mailto:someone@example.com"} {
		v := c.Classify(context.Background(), u)
		require.True(t, v.IsError(), u)
		require.Equal(t, serrors.ErrInvalidURL, v.ErrorKind(), u)
	}
}

type fixedStage struct {
	name     string
	decisive bool
	calls    *int
}

func (s fixedStage) Name() string { return s.name }

func (s fixedStage) Evaluate(context.Context, classifier.Evaluation) (domain.Verdict, bool) {
	*s.calls++

	return domain.Scored(true, 0.5), s.decisive
}

func TestClassify_firstDecisiveStageWins(t *testing.T) {
	var first, second, third int
	c := classifier.New(classifier.Options{Stages: []classifier.Stage{
		fixedStage{name: "a", calls: &first},
		fixedStage{name: "b", decisive: true, calls: &second},
		fixedStage{name: "c", decisive: true, calls: &third},
	}})

	v := c.Classify(context.Background(), "https://example.com")
	require.Equal(t, domain.VerdictScoredPhishing, v.Kind)
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)
	require.Zero(t, third)
}

func TestClassify_noDecisiveStage(t *testing.T) {
	var calls int
	c := classifier.New(classifier.Options{Stages: []classifier.Stage{fixedStage{name: "a", calls: &calls}}})

	v := c.Classify(context.Background(), "https://example.com")
	require.True(t, v.IsError())
	require.Equal(t, serrors.ErrInternal, v.ErrorKind())
}
