package handlers

import (
	"net/http"

	"cricketbet/internal/middleware"
	"cricketbet/internal/models"
	"cricketbet/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	userService *services.UserService
	authService *services.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(userService *services.UserService, authService *services.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID, models.RoleUser)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, models.AuthResponse{
		Success: true,
		User:    user,
		Token:   token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID, models.RoleUser)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{
		Success: true,
		User:    user,
		Token:   token,
	})
}

// Refresh issues a new token for whoever holds a valid one.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	role, _ := middleware.GetUserRole(r)

	token, err := h.authService.RefreshToken(&services.Claims{UserID: userID, Role: role})
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{Success: true, Token: token})
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	token, err := h.authService.AdminLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.AuthResponse{Success: true, Token: token})
}

// AdminLogout is stateless: the client drops its token.
func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"redirect": "/admin-login",
	})
}
