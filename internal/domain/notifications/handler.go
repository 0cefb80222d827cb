package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"coffee-with-me/internal/middleware"
)

const streamWriteTimeout = 5 * time.Second

func RegisterRoutes(r chi.Router, svc *Service, stream Stream) {
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Put("/{id}/seen", markSeenHandler(svc))
		if stream != nil {
			nr.Get("/stream", streamHandler(stream))
		}
	})
}

// listNotificationsHandler godoc
// @Summary Listar notificaciones
// @Description Devuelve el inbox del usuario autenticado, más nuevas primero.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param limit query int false "Máximo de items (default 50, máx 200)"
// @Success 200 {array} Envelope
// @Failure 401 {string} string "unauthorized"
// @Router /notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "limit must be a number", http.StatusBadRequest)
				return
			}
			limit = n
		}

		items, err := svc.List(r.Context(), uid, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]Envelope, 0, len(items))
		for _, n := range items {
			out = append(out, n.Envelope())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// markSeenHandler godoc
// @Summary Marcar notificación como vista
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param id path string true "ID de la notificación"
// @Success 200 {object} Envelope
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "notification not found"
// @Router /notifications/{id}/seen [put]
func markSeenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := svc.MarkSeen(r.Context(), uid, chi.URLParam(r, "id"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, n.Envelope())
		case errors.Is(err, ErrNotFound):
			http.Error(w, "notification not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// streamHandler godoc
// @Summary Stream de notificaciones (websocket)
// @Description Upgrade a websocket; cada notificación nueva del usuario llega como un mensaje JSON (Envelope).
// @Tags notifications
// @Param Authorization header string false "Bearer token"
// @Success 101 {string} string "switching protocols"
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/stream [get]
func streamHandler(stream Stream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			// Accept ya respondió.
			return
		}
		defer conn.CloseNow()

		// El cliente no manda nada; CloseRead cancela ctx cuando cierra.
		ctx := conn.CloseRead(r.Context())
		updates := stream.Subscribe(ctx, uid)

		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-updates:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "stream closed")
					return
				}
				if err := writeEnvelope(ctx, conn, env); err != nil {
					return
				}
			}
		}
	}
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
