package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"coffee-with-me/internal/middleware"
	"coffee-with-me/internal/ports/auth"
)

// RegisterPublicRoutes monta los endpoints sin auth (registro y login).
func RegisterPublicRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer) {
	r.Post("/register", registerHandler(svc))
	r.Post("/login", loginHandler(svc, issuer))
}

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", meHandler(svc))
		mr.Patch("/", updateMeHandler(svc))
		mr.Delete("/", deleteMeHandler(svc))
	})

	r.Get("/users", searchUsersHandler(svc))
	r.Get("/users/{id}", getUserHandler(svc))
}

type registerRequest struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	UniversityID *int64 `json:"university_id,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

type updateMeRequest struct {
	// nil = no tocar
	Name         *string `json:"name"`
	Username     *string `json:"username"`
	UniversityID *int64  `json:"university_id"`
}

type userResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	UniversityID *int64     `json:"university_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 409 {string} string "email or username already in use"
// @Router /register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Name:         req.Name,
			Username:     req.Username,
			Email:        req.Email,
			Password:     req.Password,
			UniversityID: req.UniversityID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u, true))
	}
}

// loginHandler godoc
// @Summary Login
// @Description Devuelve un bearer token para usar en Authorization.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "invalid email or password"
// @Router /login [post]
func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if issuer == nil {
			http.Error(w, "login disabled", http.StatusNotImplemented)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		token, expiresIn, err := issuer.Issue(auth.Claims{UserID: u.ID, Username: u.Username, Email: u.Email})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
			User:        toUserResponse(u, true),
		})
	}
}

// meHandler godoc
// @Summary Perfil propio
// @Tags users
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} userResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u, true))
	}
}

// updateMeHandler godoc
// @Summary Editar perfil propio
// @Tags users
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body updateMeRequest true "Campos a cambiar"
// @Success 200 {object} userResponse
// @Failure 400 {string} string "validación"
// @Failure 401 {string} string "unauthorized"
// @Router /me [patch]
func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateMeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), uid, UpdateProfileInput{
			Name:         req.Name,
			Username:     req.Username,
			UniversityID: req.UniversityID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u, true))
	}
}

// deleteMeHandler godoc
// @Summary Borrar cuenta propia
// @Tags users
// @Param Authorization header string false "Bearer token"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Router /me [delete]
func deleteMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.Delete(r.Context(), uid); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// getUserHandler godoc
// @Summary Ver usuario
// @Tags users
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param id path int true "ID del usuario"
// @Success 200 {object} userResponse
// @Failure 404 {string} string "user not found"
// @Router /users/{id} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		u, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u, u.ID == uid))
	}
}

// searchUsersHandler godoc
// @Summary Buscar usuarios
// @Tags users
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param q query string true "Texto a buscar (nombre, username o email)"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} userResponse
// @Router /users [get]
func searchUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u, u.ID == uid))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// self=false oculta el email de terceros.
func toUserResponse(u User, self bool) userResponse {
	out := userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		UniversityID: u.UniversityID,
		CreatedAt:    u.CreatedAt,
	}
	if self {
		out.Email = u.Email
		out.LastLoginAt = u.LastLoginAt
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
