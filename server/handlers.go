package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"Bt1QRadio/core/input"
	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

// APIHandler serves the JSON/HTTP control surface.
type APIHandler struct {
	player *player.Player
	store  store.Store
	flags  *input.Flags
}

// NewAPIHandler creates the API handler set.
func NewAPIHandler(p *player.Player, st store.Store, flags *input.Flags) *APIHandler {
	return &APIHandler{
		player: p,
		store:  st,
		flags:  flags,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// playerError maps domain sentinel errors onto HTTP status codes.
func playerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, player.ErrOutOfRange):
		writeError(w, http.StatusNotFound, "index out of range")
	case errors.Is(err, player.ErrEmptyPlaylist):
		writeError(w, http.StatusConflict, "playlist is empty")
	case errors.Is(err, player.ErrNoStreamToResume):
		writeError(w, http.StatusConflict, "no stream to resume")
	case errors.Is(err, player.ErrInvalidURL),
		errors.Is(err, model.ErrBadScheme),
		errors.Is(err, model.ErrEmptyField),
		errors.Is(err, model.ErrFieldTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, player.ErrPlaylistFull):
		writeError(w, http.StatusConflict, "playlist is full")
	case errors.Is(err, player.ErrStreamConnect):
		writeError(w, http.StatusBadGateway, "stream connect failed")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// checkpoint persists player state after a user action, best-effort.
func (h *APIHandler) checkpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.player.SaveState(ctx); err != nil {
		logger.Warn("failed to persist player state", logger.ErrorField(err))
	}
}

type statusResponse struct {
	model.StatusSnapshot
	Elapsed        int64            `json:"elapsed"`
	PlaylistIndex  int              `json:"playlistIndex"`
	PlaylistLength int              `json:"playlistLength"`
	Stream         model.StreamInfo `json:"stream"`
}

// StatusHandler returns the full playback status.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	pl := h.player.Playlist()
	writeJSON(w, http.StatusOK, statusResponse{
		StatusSnapshot: h.player.Status(),
		Elapsed:        h.player.Elapsed(),
		PlaylistIndex:  pl.Selection(),
		PlaylistLength: pl.Count(),
		Stream:         h.player.Stream(),
	})
}

type playRequest struct {
	URL   string `json:"url"`
	Name  string `json:"name"`
	Index *int   `json:"index"`
}

// PlayHandler starts a stream: by playlist index, by explicit URL, or by
// resuming the remembered stream when the body names neither.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	var err error
	if req.Index != nil {
		err = h.player.PlayIndex(*req.Index)
	} else {
		err = h.player.StartStream(req.URL, req.Name)
	}
	if err != nil {
		playerError(w, err)
		return
	}

	h.checkpoint()
	h.StatusHandler(w, r)
}

// StopHandler stops playback.
func (h *APIHandler) StopHandler(w http.ResponseWriter, r *http.Request) {
	h.player.StopStream()
	h.checkpoint()
	h.StatusHandler(w, r)
}

// NextHandler advances to the next station.
func (h *APIHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Next(); err != nil {
		playerError(w, err)
		return
	}
	h.checkpoint()
	h.StatusHandler(w, r)
}

// PreviousHandler retreats to the previous station.
func (h *APIHandler) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.player.Previous(); err != nil {
		playerError(w, err)
		return
	}
	h.checkpoint()
	h.StatusHandler(w, r)
}

type volumeRequest struct {
	Volume int `json:"volume"` // native scale 0..22
}

// VolumeHandler sets the native-scale volume.
func (h *APIHandler) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.player.SetVolume(req.Volume)
	h.checkpoint()
	writeJSON(w, http.StatusOK, volumeRequest{Volume: h.player.Volume()})
}

type toneRequest struct {
	Bass   int `json:"bass"`
	Mid    int `json:"mid"`
	Treble int `json:"treble"`
}

// ToneHandler sets bass, mid and treble.
func (h *APIHandler) ToneHandler(w http.ResponseWriter, r *http.Request) {
	var req toneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.player.SetTone(req.Bass, req.Mid, req.Treble)
	h.checkpoint()

	bass, mid, treble := h.player.Tone()
	writeJSON(w, http.StatusOK, toneRequest{Bass: bass, Mid: mid, Treble: treble})
}

type playlistResponse struct {
	Items     []model.StreamEntry `json:"items"`
	Selection int                 `json:"selection"`
	Capacity  int                 `json:"capacity"`
}

type playlistRequest struct {
	model.StreamEntry
	Index *int `json:"index"`
}

// PlaylistHandler serves the playlist management channel: GET lists,
// POST adds or replaces one entry, DELETE removes one entry or clears.
func (h *APIHandler) PlaylistHandler(w http.ResponseWriter, r *http.Request) {
	pl := h.player.Playlist()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, playlistResponse{
			Items:     pl.Items(),
			Selection: pl.Selection(),
			Capacity:  pl.Capacity(),
		})
		return

	case http.MethodPost:
		var req playlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		var err error
		if req.Index != nil {
			err = pl.SetItem(*req.Index, req.StreamEntry)
		} else {
			err = pl.AddItem(req.StreamEntry)
		}
		if err != nil {
			playerError(w, err)
			return
		}

	case http.MethodDelete:
		if idx := r.URL.Query().Get("index"); idx != "" {
			i, err := strconv.Atoi(idx)
			if err != nil {
				writeError(w, http.StatusBadRequest, "index must be an integer")
				return
			}
			if err := pl.RemoveItem(i); err != nil {
				playerError(w, err)
				return
			}
		} else {
			pl.Clear()
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := pl.Save(ctx); err != nil {
		logger.Warn("failed to persist playlist", logger.ErrorField(err))
	}

	writeJSON(w, http.StatusOK, playlistResponse{
		Items:     pl.Items(),
		Selection: pl.Selection(),
		Capacity:  pl.Capacity(),
	})
}

type inputRequest struct {
	Rotary int `json:"rotary"`
	Button int `json:"button"`
	Touch  int `json:"touch"`
}

// InputHandler injects synthetic input edges, used when the box runs
// without its physical controls attached. The events take effect on the
// next control-loop tick like real edges would.
func (h *APIHandler) InputHandler(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Rotary != 0 {
		h.flags.AddRotary(req.Rotary)
	}
	for i := 0; i < req.Button; i++ {
		h.flags.PressButton()
	}
	for i := 0; i < req.Touch; i++ {
		h.flags.PressTouch()
	}
	writeJSON(w, http.StatusAccepted, req)
}

// ConfigHandler round-trips the device configuration document.
func (h *APIHandler) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		cfg := store.DefaultDeviceConfig()
		if err := h.store.Get(ctx, store.KeyDeviceConfig, &cfg); err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPut:
		var cfg store.DeviceConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := h.store.Set(ctx, store.KeyDeviceConfig, cfg); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// WifiHandler stores network credentials. Provisioning happens outside
// this service; credentials only pass through to the document store and
// are never read back over HTTP.
func (h *APIHandler) WifiHandler(w http.ResponseWriter, r *http.Request) {
	var creds store.WifiCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if creds.SSID == "" {
		writeError(w, http.StatusBadRequest, "ssid required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Set(ctx, store.KeyWifi, creds); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ssid": creds.SSID})
}
