package api

import (
	"net/http"

	"github.com/micro-nova/ws281x-go/internal/identity"
)

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identity.Get())
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request) {
	state, appErr := h.ctrl.Render(r.Context())
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) clear(w http.ResponseWriter, r *http.Request) {
	state, appErr := h.ctrl.Clear(r.Context())
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
