package v1handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Classify runs the pipeline on one URL. Classification failures are part
// of the verdict, so the response is 200 whenever the request is valid.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
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

	v := h.deps.Classifier.Classify(r.Context(), URL)

	var e jx.Encoder
	e.ObjStart()
	encodeVerdict(&e, URL, v)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e.Bytes())
}
