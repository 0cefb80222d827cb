package friendships

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"coffee-with-me/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/friends", func(fr chi.Router) {
		fr.Post("/", requestFriendshipHandler(svc))
		fr.Get("/", listFriendshipsHandler(svc))
		fr.Put("/", updateFriendshipHandler(svc))
		fr.Delete("/{userID}", removeFriendshipHandler(svc))
	})

	r.Get("/users/{id}/friends/count", friendsCountHandler(svc))
}

type requestFriendshipRequest struct {
	AddresseeID int64 `json:"addressee_id"`
}

type updateFriendshipRequest struct {
	RequesterID int64  `json:"requester_id"`
	AddresseeID int64  `json:"addressee_id"`
	Status      Status `json:"status"`
}

type friendshipResponse struct {
	RequesterID int64     `json:"requester_id"`
	AddresseeID int64     `json:"addressee_id"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type countResponse struct {
	UserID int64 `json:"user_id"`
	Count  int   `json:"count"`
}

// requestFriendshipHandler godoc
// @Summary Enviar solicitud de amistad
// @Description Crea el vínculo en estado REQUESTED. El addressee recibe una notificación.
// @Tags friends
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param payload body requestFriendshipRequest true "Destinatario"
// @Success 201 {object} friendshipResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 409 {string} string "friendship already exists"
// @Router /friends [post]
func requestFriendshipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req requestFriendshipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.Request(r.Context(), uid, req.AddresseeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFriendshipResponse(f))
	}
}

// listFriendshipsHandler godoc
// @Summary Listar vínculos propios
// @Tags friends
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param status query string false "REQUESTED | ACCEPTED | DECLINED | BLOCKED"
// @Success 200 {array} friendshipResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /friends [get]
func listFriendshipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		status := Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
		items, err := svc.ListByStatus(r.Context(), uid, status)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]friendshipResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFriendshipResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// updateFriendshipHandler godoc
// @Summary Cambiar estado de un vínculo
// @Description Aceptar/rechazar sólo lo puede hacer el addressee. Un vínculo ACCEPTED sólo puede pasar a BLOCKED.
// @Tags friends
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body updateFriendshipRequest true "Vínculo y nuevo estado"
// @Success 200 {object} friendshipResponse
// @Failure 400 {string} string "invalid status change"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "friendship not found"
// @Router /friends [put]
func updateFriendshipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateFriendshipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		status := Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))
		f, err := svc.UpdateStatus(r.Context(), uid, req.RequesterID, req.AddresseeID, status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFriendshipResponse(f))
	}
}

// removeFriendshipHandler godoc
// @Summary Eliminar vínculo
// @Tags friends
// @Param Authorization header string false "Bearer token"
// @Param userID path int true "La otra persona"
// @Success 204
// @Failure 404 {string} string "friendship not found"
// @Router /friends/{userID} [delete]
func removeFriendshipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		other, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := svc.Remove(r.Context(), uid, other); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// friendsCountHandler godoc
// @Summary Cantidad de amigos
// @Tags friends
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param id path int true "ID del usuario"
// @Success 200 {object} countResponse
// @Router /users/{id}/friends/count [get]
func friendsCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserID(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		n, err := svc.FriendsCount(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{UserID: id, Count: n})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatusChange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toFriendshipResponse(f Friendship) friendshipResponse {
	return friendshipResponse{
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
