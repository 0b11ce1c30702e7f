package httptransport

import (
	"errors"
	"net/http"

	appadmin "ghostserver/internal/app/admin"
	appgameserver "ghostserver/internal/app/gameserver"
	appplayer "ghostserver/internal/app/player"
	apppublic "ghostserver/internal/app/public"
	"ghostserver/internal/cases"
	"ghostserver/internal/ledger"
	"ghostserver/internal/store"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{ledger.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{ledger.ErrInvalidCategory, http.StatusBadRequest, "invalid_request"},
	{ledger.ErrInvalidSteamID, http.StatusBadRequest, "invalid_request"},
	{appgameserver.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{appplayer.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{apppublic.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{appadmin.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{ledger.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
	{cases.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
	{cases.ErrCaseNotFound, http.StatusNotFound, "not_found"},
	{appplayer.ErrNotFound, http.StatusNotFound, "not_found"},
	{appadmin.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{ledger.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
	{store.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
	{store.ErrConflict, http.StatusConflict, "conflict"},
}

// writeServiceError maps domain errors onto the public error codes.
// Anything unmapped is logged with the request id and reported as
// internal_error without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			WriteHTTPError(w, m.status, m.code)
			return
		}
	}
	log.Error().
		Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("route", routePattern(r)).
		Msg("request failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
