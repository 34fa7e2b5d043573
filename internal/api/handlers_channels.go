package api

import (
	"net/http"

	"github.com/micro-nova/ws281x-go/internal/models"
)

func (h *Handlers) getChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"channels": h.ctrl.State().Channels})
}

func (h *Handlers) getChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := intParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	c, appErr := h.ctrl.GetChannel(ch)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) setChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := intParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	var upd models.ChannelUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	if upd.Brightness == nil {
		writeError(w, models.ErrBadRequest("nothing to update"))
		return
	}
	state, appErr := h.ctrl.SetBrightness(ch, *upd.Brightness)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) getLeds(w http.ResponseWriter, r *http.Request) {
	ch, err := intParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	leds, appErr := h.ctrl.GetLeds(ch)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, leds)
}

func (h *Handlers) setLeds(w http.ResponseWriter, r *http.Request) {
	ch, err := intParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	var upd models.LedsUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	state, appErr := h.ctrl.SetLeds(r.Context(), ch, upd)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) fill(w http.ResponseWriter, r *http.Request) {
	ch, err := intParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	var req models.FillRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	state, appErr := h.ctrl.Fill(r.Context(), ch, req)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
