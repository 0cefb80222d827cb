package notify

import (
	"context"
	"sync"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/logger"
)

const defaultSubscriberBuffer = 16

// Hub reparte notificaciones a las conexiones vivas (websocket) de cada usuario.
// Un suscriptor lento pierde mensajes; nunca frena la entrega a los demás.
// Implementa notifications.Sink y notifications.Stream.
type Hub struct {
	buffer int
	log    logger.Logger

	mu     sync.RWMutex
	subs   map[int64]map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	ch chan notifications.Envelope
}

func NewHub(buffer int, log logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		buffer: buffer,
		log:    log.With(map[string]any{"sink": "websocket"}),
		subs:   make(map[int64]map[*subscriber]struct{}),
	}
}

func (h *Hub) Name() string { return "websocket" }

// Subscribe registra una conexión hasta que ctx se cancele; ahí el canal se cierra.
func (h *Hub) Subscribe(ctx context.Context, recipientID int64) <-chan notifications.Envelope {
	s := &subscriber{ch: make(chan notifications.Envelope, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch
	}
	if h.subs[recipientID] == nil {
		h.subs[recipientID] = make(map[*subscriber]struct{})
	}
	h.subs[recipientID][s] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(recipientID, s)
	}()
	return s.ch
}

func (h *Hub) remove(recipientID int64, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[recipientID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, recipientID)
	}
	close(s.ch)
}

func (h *Hub) Deliver(_ context.Context, n notifications.Notification) error {
	env := n.Envelope()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[n.RecipientID] {
		select {
		case s.ch <- env:
		default:
			h.log.Warn("subscriber too slow, notification dropped", map[string]any{
				"recipient_id":    n.RecipientID,
				"notification_id": n.ID,
			})
		}
	}
	return nil
}

// Subscribers cuenta conexiones vivas de un usuario.
func (h *Hub) Subscribers(recipientID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[recipientID])
}

// Close cierra todos los canales; los handlers de stream terminan solos.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, id)
	}
}
