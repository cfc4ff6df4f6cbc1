package api_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"phishguard/internal/api"
	"phishguard/internal/api/handler/v1handler"
	"phishguard/internal/config"
	mockclassifier "phishguard/internal/classifier/mock"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newHandler(t *testing.T, deps api.Deps, opts api.Options) http.Handler {
	t.Helper()
	h, err := api.NewHandler(deps, opts)
	require.NoError(t, err)

	return h
}

func TestNewOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.Addr = ":9090"
	cfg.HTTP.RequestTimeout = 5 * time.Second
	cfg.HTTP.MetricsPath = "/m"
	cfg.HTTP.AllowedOrigins = []string{"chrome-extension://abc"}
	cfg.JWT.PublicKey = "key"

	opts := api.NewOptions(cfg)
	require.Equal(t, ":9090", opts.Addr)
	require.Equal(t, 5*time.Second, opts.RequestTimeout)
	require.Equal(t, "/m", opts.MetricsPath)
	require.Equal(t, []string{"chrome-extension://abc"}, opts.AllowedOrigins)
	require.Equal(t, "key", opts.SecHandlerOptions.PublicKey)
}

func TestServer_StaticRoutes(t *testing.T) {
	h := newHandler(t, api.Deps{}, api.Options{MetricsPath: "/metrics", AllowedOrigins: []string{"*"}})

	for path, contentType := range map[string]string{
		"/healthz":       "text/plain",
		"/specs/v1.yaml": "application/yaml",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, contentType, rec.Header().Get("Content-Type"), path)
		require.NotEmpty(t, rec.Header().Get("X-Request-Id"), path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Preflight(t *testing.T) {
	h := newHandler(t, api.Deps{}, api.Options{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/classify", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Classify(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mockclassifier.NewMockClassifier(ctrl)
	c.EXPECT().Classify(gomock.Any(), "https://google.com").Return(domain.Whitelisted())

	h := newHandler(t, api.Deps{Deps: v1handler.Deps{Classifier: c}},
		api.Options{RequestTimeout: time.Second})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(`{"url":"https://google.com"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"kind":"WHITELISTED"`)
}

func TestServer_RequiresTokenWhenKeyConfigured(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})

	h := newHandler(t, api.Deps{}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: string(pubPEM)},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(`{"url":"https://google.com"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// health stays public
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServer_InvalidKey(t *testing.T) {
	_, err := api.NewServer(api.Deps{}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: "garbage"},
	})
	require.Error(t, err)
}
