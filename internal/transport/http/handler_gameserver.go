package httptransport

import (
	"net/http"

	appgameserver "ghostserver/internal/app/gameserver"
)

// GameServerHandlers serve plugin callbacks. Every route sits behind
// ServerKeyMiddleware, so the server is always in the context.
type GameServerHandlers struct {
	svc *appgameserver.Service
}

func NewGameServerHandlers(svc *appgameserver.Service) *GameServerHandlers {
	return &GameServerHandlers{svc: svc}
}

func (h *GameServerHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.Register(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.ConnectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.Connect(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) AddSouls() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.SoulsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.AddSouls(r.Context(), serverID(r), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) SpendSouls() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.SoulsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.SpendSouls(r.Context(), serverID(r), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) Sync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.SyncRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.Sync(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) Heartbeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.HeartbeatRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.Heartbeat(r.Context(), serverID(r), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) OpenCase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appgameserver.OpenCaseRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.OpenCase(r.Context(), serverID(r), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *GameServerHandlers) Config() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Config())
	}
}

func serverID(r *http.Request) string {
	if sv, ok := ServerFromContext(r.Context()); ok {
		return sv.ID
	}
	return ""
}
