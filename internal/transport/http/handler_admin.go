package httptransport

import (
	"context"
	"net/http"
	"time"

	appadmin "ghostserver/internal/app/admin"
	"ghostserver/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	svc *appadmin.Service
}

func NewAdminHandlers(svc *appadmin.Service) *AdminHandlers {
	return &AdminHandlers{svc: svc}
}

func (h *AdminHandlers) Players() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.svc.Players(r.Context(), limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) SetSouls() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appadmin.SetSoulsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		resp, err := h.svc.SetSouls(r.Context(), PrincipalFromContext(r.Context()), chi.URLParam(r, "steam_id"), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) SetPremium() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appadmin.SetPremiumRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		steamID := chi.URLParam(r, "steam_id")
		if err := h.svc.SetPremium(r.Context(), PrincipalFromContext(r.Context()), steamID, req); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "steam_id": steamID, "tier": req.Tier})
	}
}

func (h *AdminHandlers) Audit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.Audit(r.Context(), chi.URLParam(r, "steam_id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.TransactionFilter{SteamID: q.Get("steam_id"), Category: q.Get("category")}
		for _, p := range []struct {
			key string
			dst **time.Time
		}{{"from", &f.From}, {"to", &f.To}} {
			v := q.Get(p.key)
			if v == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
				return
			}
			*p.dst = &t
		}
		resp, err := h.svc.Transactions(r.Context(), f, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) Servers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			resp, err := h.svc.Servers(r.Context())
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req appadmin.CreateServerRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			resp, err := h.svc.CreateServer(r.Context(), PrincipalFromContext(r.Context()), req)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, resp)
		default:
			WriteHTTPError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		}
	}
}

// HealthCheck reports nil when the dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Health reports each dependency. Postgres down is 503; optional ones (like
// Redis) only change their own field.
func Health(db HealthCheck, optional map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		body := map[string]any{"ok": true, "db": "up"}
		status := http.StatusOK
		if err := db(ctx); err != nil {
			body["ok"] = false
			body["db"] = "down"
			status = http.StatusServiceUnavailable
		}
		for name, check := range optional {
			switch {
			case check == nil:
				body[name] = "disabled"
			case check(ctx) != nil:
				body[name] = "down"
			default:
				body[name] = "up"
			}
		}
		writeJSON(w, status, body)
	}
}
