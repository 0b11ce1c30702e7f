package feed

import (
	"context"
	"encoding/json"

	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

const EventDrop = "drop"

// Bus carries drops between instances. The Redis implementation lives in
// internal/cache.
type Bus interface {
	PublishDrop(ctx context.Context, payload []byte) error
}

type busMessage struct {
	Origin string `json:"origin"`
	Drop   Drop   `json:"drop"`
}

// Hub is the live drop stream for one process. Local drops are appended and
// forwarded to the bus; bus messages from other instances are appended only.
type Hub struct {
	buf    *EventBuffer
	bus    Bus
	origin string
}

func NewHub(buf *EventBuffer, bus Bus) *Hub {
	return &Hub{buf: buf, bus: bus, origin: store.NewID()}
}

func (h *Hub) Buffer() *EventBuffer {
	return h.buf
}

func (h *Hub) OnDrop(ctx context.Context, open store.CaseOpen, _ int64) {
	d := ToDrop(open)
	h.buf.Append(EventDrop, d)
	if h.bus == nil {
		return
	}
	payload, err := json.Marshal(busMessage{Origin: h.origin, Drop: d})
	if err != nil {
		log.Error().Err(err).Msg("encode drop for bus")
		return
	}
	if err := h.bus.PublishDrop(ctx, payload); err != nil {
		log.Warn().Err(err).Str("drop_id", d.ID).Msg("publish drop")
	}
}

// Ingest handles a payload received from the bus.
func (h *Hub) Ingest(payload []byte) {
	var msg busMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Warn().Err(err).Msg("decode bus drop")
		return
	}
	if msg.Origin == h.origin {
		return
	}
	h.buf.Append(EventDrop, msg.Drop)
}
