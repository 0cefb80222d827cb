package coffeebreaks

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
	r.Route("/coffee-breaks", func(cr chi.Router) {
		cr.Post("/", createCoffeeBreakHandler(svc))
		cr.Get("/", listCoffeeBreaksHandler(svc))
		cr.Get("/{id}", getCoffeeBreakHandler(svc))
		cr.Delete("/{id}", cancelCoffeeBreakHandler(svc))
	})
}

type createCoffeeBreakRequest struct {
	AddresseeIDs []int64 `json:"addressee_ids"`
	ScheduledTo  string  `json:"scheduled_to"` // RFC3339
	CampusID     *int64  `json:"campus_id,omitempty"`
	Location     string  `json:"location,omitempty"`
}

type coffeeBreakResponse struct {
	ID           int64     `json:"id"`
	RequesterID  int64     `json:"requester_id"`
	AddresseeIDs []int64   `json:"addressee_ids"`
	ScheduledTo  time.Time `json:"scheduled_to"`
	CampusID     *int64    `json:"campus_id,omitempty"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
}

// createCoffeeBreakHandler godoc
// @Summary Crear coffee break
// @Description Invita a uno o más amigos (ACCEPTED). Si se indica campus y no location, la ubicación es el nombre del campus. Cada invitado recibe una notificación.
// @Tags coffee-breaks
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Param payload body createCoffeeBreakRequest true "Invitados y horario; scheduled_to en RFC3339"
// @Success 201 {object} coffeeBreakResponse
// @Failure 400 {string} string "invalid json / invalid input / not a friend"
// @Failure 401 {string} string "unauthorized"
// @Router /coffee-breaks [post]
func createCoffeeBreakHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createCoffeeBreakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var at time.Time
		if strings.TrimSpace(req.ScheduledTo) != "" {
			t, err := time.Parse(time.RFC3339, req.ScheduledTo)
			if err != nil {
				http.Error(w, "scheduled_to must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		c, err := svc.Create(r.Context(), uid, CreateInput{
			AddresseeIDs: req.AddresseeIDs,
			ScheduledTo:  at,
			CampusID:     req.CampusID,
			Location:     req.Location,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCoffeeBreakResponse(c))
	}
}

// listCoffeeBreaksHandler godoc
// @Summary Listar mis coffee breaks
// @Tags coffee-breaks
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} coffeeBreakResponse
// @Router /coffee-breaks [get]
func listCoffeeBreaksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListForUser(r.Context(), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]coffeeBreakResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCoffeeBreakResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getCoffeeBreakHandler godoc
// @Summary Ver coffee break
// @Tags coffee-breaks
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param id path int true "ID del coffee break"
// @Success 200 {object} coffeeBreakResponse
// @Failure 404 {string} string "coffee break not found"
// @Router /coffee-breaks/{id} [get]
func getCoffeeBreakHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "coffee break not found", http.StatusNotFound)
			return
		}

		c, err := svc.GetByID(r.Context(), uid, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCoffeeBreakResponse(c))
	}
}

// cancelCoffeeBreakHandler godoc
// @Summary Cancelar coffee break
// @Tags coffee-breaks
// @Param Authorization header string false "Bearer token"
// @Param id path int true "ID del coffee break"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "coffee break not found"
// @Router /coffee-breaks/{id} [delete]
func cancelCoffeeBreakHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "coffee break not found", http.StatusNotFound)
			return
		}

		if err := svc.Cancel(r.Context(), uid, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFriends):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "coffee break not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCoffeeBreakResponse(c CoffeeBreak) coffeeBreakResponse {
	return coffeeBreakResponse{
		ID:           c.ID,
		RequesterID:  c.RequesterID,
		AddresseeIDs: append([]int64{}, c.AddresseeIDs...),
		ScheduledTo:  c.ScheduledTo,
		CampusID:     c.CampusID,
		Location:     c.Location,
		CreatedAt:    c.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
