package httptransport

import (
	"net/http"
	"time"

	"ghostserver/internal/feed"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

// StreamHandler serves live drops as server-sent events. Reconnecting
// clients get the buffered events after their Last-Event-ID first.
func StreamHandler(buf *feed.EventBuffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		streamConnections.Inc()
		feed.SetSSEHeaders(w)
		w.WriteHeader(http.StatusOK)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		ch, replay := buf.SubscribeAfter(lastEventID)
		defer buf.Unsubscribe(ch)
		for _, ev := range replay {
			if err := feed.WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				log.Debug().
					Str("request_id", chimw.GetReqID(r.Context())).
					Msg("feed stream closed")
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := feed.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				ping := feed.StreamEvent{
					Event:    "ping",
					ServerTS: time.Now().UnixMilli(),
					Data:     map[string]any{"ts": time.Now().UnixMilli()},
				}
				if err := feed.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
