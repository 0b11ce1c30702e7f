package httptransport

import (
	"context"
	"net/http"

	appplayer "ghostserver/internal/app/player"

	"github.com/go-chi/chi/v5"
)

type PlayerHandlers struct {
	svc *appplayer.Service
}

func NewPlayerHandlers(svc *appplayer.Service) *PlayerHandlers {
	return &PlayerHandlers{svc: svc}
}

type sessionResponse struct {
	SteamID string `json:"steam_id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Session reports the decoded cookie identity, or null when there is none.
func (h *PlayerHandlers) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p.SteamID == "" {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{SteamID: p.SteamID, Name: p.Name, IsAdmin: p.IsAdmin()})
	}
}

func (h *PlayerHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Snapshot(r.Context(), PrincipalFromContext(r.Context()).SteamID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *PlayerHandlers) OpenCase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steamID := PrincipalFromContext(r.Context()).SteamID
		resp, err := h.svc.OpenCase(r.Context(), steamID, chi.URLParam(r, "case_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type flagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

func (h *PlayerHandlers) Equip() http.HandlerFunc {
	return h.flag(h.svc.SetEquipped)
}

func (h *PlayerHandlers) Favorite() http.HandlerFunc {
	return h.flag(h.svc.SetFavorite)
}

type flagSetter func(ctx context.Context, steamID, itemID string, value bool) error

func (h *PlayerHandlers) flag(set flagSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req flagRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		itemID := chi.URLParam(r, "item_id")
		if err := set(r.Context(), PrincipalFromContext(r.Context()).SteamID, itemID, *req.Value); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "item_id": itemID, "value": *req.Value})
	}
}
