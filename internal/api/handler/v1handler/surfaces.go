package v1handler

import (
	"context"
	"net/http"

	"phishguard/pkg/logger"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Navigation reports a completed navigation. Ignored URLs yield 204.
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	b, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	URL, err := decodeURLRequest(b)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	res, ok := h.deps.Navigator.OnNavigationComplete(r.Context(), surfaceKey(r), URL)
	if !ok {
		w.WriteHeader(http.StatusNoContent)

		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

// Content reports a new snapshot of a content view. Scanning happens in the
// background once the view settles.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	b, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	location, html, err := decodeContentRequest(b)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.deps.Content.Push(surfaceKey(r), location, html)
	w.WriteHeader(http.StatusAccepted)
}

// Dismiss removes the visible notifications of a surface.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	dismissed := h.dismiss(r.Context(), surfaceKey(r))

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("dismissed")
	e.Bool(dismissed)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e.Bytes())
}

// Notifications upgrades to a websocket carrying the notifications of a
// surface. A dismiss frame acts like the Dismiss endpoint.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	key := surfaceKey(r)
	if err := h.deps.Notifications.Serve(w, r, key, func(ctx context.Context) {
		h.dismiss(ctx, key)
	}); err != nil {
		logger.Debug(r.Context(), "notification stream not established", zap.Error(err))
	}
}

func (h *Handler) dismiss(ctx context.Context, surfaceID string) bool {
	dismissed := false
	for _, d := range h.deps.Dismissers {
		if d.Dismiss(ctx, surfaceID) {
			dismissed = true
		}
	}

	return dismissed
}
