package universities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/universities", listUniversitiesHandler(svc))
	r.Get("/universities/{id}", getUniversityHandler(svc))
}

type universityResponse struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Campuses []campusResponse `json:"campuses,omitempty"`
}

type campusResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// listUniversitiesHandler godoc
// @Summary Listar universidades
// @Description Sin campus; para el detalle usar /universities/{id}.
// @Tags universities
// @Produce json
// @Success 200 {array} universityResponse
// @Router /universities [get]
func listUniversitiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]universityResponse, 0, len(items))
		for _, u := range items {
			out = append(out, universityResponse{ID: u.ID, Name: u.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getUniversityHandler godoc
// @Summary Ver universidad con sus campus
// @Tags universities
// @Produce json
// @Param id path int true "ID de la universidad"
// @Success 200 {object} universityResponse
// @Failure 404 {string} string "university not found"
// @Router /universities/{id} [get]
func getUniversityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "university not found", http.StatusNotFound)
			return
		}

		u, err := svc.GetByID(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "university not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := universityResponse{ID: u.ID, Name: u.Name, Campuses: make([]campusResponse, 0, len(u.Campuses))}
		for _, c := range u.Campuses {
			out.Campuses = append(out.Campuses, campusResponse{ID: c.ID, Name: c.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
