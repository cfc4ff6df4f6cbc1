// Package v1handler implements the v1 agent API: URL classification,
// navigation and content reports from observers, and the notification
// stream.
package v1handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds request bodies when Deps.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 4 << 20

// Classifier classifies a single URL.
type Classifier interface {
	Classify(ctx context.Context, URL string) domain.Verdict
}

// NavigationScanner handles completed navigations.
type NavigationScanner interface {
	OnNavigationComplete(ctx context.Context, surfaceID, URL string) (*domain.ScanResult, bool)
}

// ContentSink receives content view snapshots.
type ContentSink interface {
	Push(surfaceID, location, html string)
}

// NotificationStream streams notifications of one surface to a client.
type NotificationStream interface {
	Serve(w http.ResponseWriter, r *http.Request, surfaceID string, onDismiss func(ctx context.Context)) error
}

// Dismisser removes the visible notification of a surface.
type Dismisser interface {
	Dismiss(ctx context.Context, surfaceID string) bool
}

// Deps are the collaborators of the v1 handlers.
type Deps struct {
	Classifier    Classifier
	Navigator     NavigationScanner
	Content       ContentSink
	Notifications NotificationStream
	Dismissers    []Dismisser
	MaxBodyBytes  int64
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Handler{deps: deps}
}

// Routes registers the v1 endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/classify", h.Classify)
	r.Route("/surfaces/{surfaceID}", func(r chi.Router) {
		r.Post("/navigation", h.Navigation)
		r.Post("/content", h.Content)
		r.Post("/dismiss", h.Dismiss)
	})
}

// StreamRoutes registers the long-lived endpoints, which must not run under
// a request timeout.
func (h *Handler) StreamRoutes(r chi.Router) {
	r.Get("/surfaces/{surfaceID}/notifications", h.Notifications)
}

// Error is the body of every error response.
type Error struct {
	Code    string
	Message string
}

// ErrorResponse pairs an Error with its HTTP status.
type ErrorResponse struct {
	StatusCode int
	Response   Error
}

type kindStatus struct {
	kind    serrors.Kind
	status  int
	message string
}

//nolint: gochecknoglobals
var kindStatuses = []kindStatus{
	{serrors.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{serrors.ErrInvalidURL, http.StatusBadRequest, "invalid URL"},
	{serrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{serrors.ErrNotFound, http.StatusNotFound, "resource not found"},
	{serrors.ErrTimeout, http.StatusGatewayTimeout, "request timed out"},
	{serrors.ErrUnavailable, http.StatusServiceUnavailable, "service unavailable"},
	{serrors.ErrNetworkFailure, http.StatusServiceUnavailable, "prediction service unreachable"},
	{serrors.ErrBadResponse, http.StatusBadGateway, "prediction service failed"},
	{serrors.ErrMalformedPayload, http.StatusBadGateway, "prediction service returned a malformed response"},
}

// NewError maps err to a response. Errors without a known kind become 500
// and their text is only logged.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	for _, ks := range kindStatuses {
		if kind != ks.kind {
			continue
		}
		msg := ks.message
		var se *serrors.Error
		if errors.As(err, &se) && se.Message() != "" {
			msg = se.Message()
		}

		return &ErrorResponse{
			StatusCode: ks.status,
			Response:   Error{Code: ks.kind.Error(), Message: msg},
		}
	}

	logger.Error(ctx, "request failed", zap.Error(err))

	return &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Response:   Error{Code: serrors.ErrInternal.Error(), Message: "internal error"},
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	WriteError(w, res)
}

// WriteError writes res as JSON.
func WriteError(w http.ResponseWriter, res *ErrorResponse) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Str(res.Response.Code)
	e.FieldStart("message")
	e.Str(res.Response.Message)
	e.ObjEnd()

	writeJSON(w, res.StatusCode, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.deps.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, serrors.With(serrors.ErrBadRequest, "request body exceeds %d bytes", tooLarge.Limit)
		}

		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
	}

	return b, nil
}

// surfaceKey scopes surface ids to the authenticated client, so clients
// cannot observe each other's surfaces.
func surfaceKey(r *http.Request) string {
	id := chi.URLParam(r, "surfaceID")
	if client, ok := GetClientIDFromContext(r.Context()); ok {
		return client.String() + ":" + id
	}

	return id
}
