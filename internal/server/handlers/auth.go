package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/server/auth"
	"stockroom/internal/server/storage"
	"stockroom/internal/validation"
	"stockroom/pkg/api"
)

// AuthHandler serves registration, login and current-user endpoints
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokenCfg auth.TokenConfig
}

// NewAuthHandler creates the authentication handler
func NewAuthHandler(logger *slog.Logger, users storage.UserStorage, tokenCfg auth.TokenConfig) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		tokenCfg: tokenCfg,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// Pre-checks give the nicer message; the UNIQUE constraints stay the
	// final authority under concurrent registration
	if _, err := h.users.GetUserByEmail(ctx, req.Email); err == nil {
		sendError(h.logger, w, "Email already registered", http.StatusBadRequest)
		return
	}
	if _, err := h.users.GetUserByUsername(ctx, req.Username); err == nil {
		sendError(h.logger, w, "Username already taken", http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: hashed,
		FullName:       req.FullName,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			sendError(h.logger, w, "Email already registered", http.StatusBadRequest)
		case errors.Is(err, storage.ErrUsernameTaken):
			sendError(h.logger, w, "Username already taken", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, toUserResponse(user), http.StatusCreated)
}

// Token handles POST /api/v1/auth/token.
// Credentials arrive as an OAuth2 password form. Unknown user and wrong
// password produce the same response.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		sendError(h.logger, w, "invalid form body", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user := auth.Authenticate(ctx, h.users, username, password)
	if user == nil {
		h.logger.WarnContext(ctx, "login failed", slog.String("username", username))
		w.Header().Set("WWW-Authenticate", "Bearer")
		sendError(h.logger, w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}

	accessToken, err := auth.GenerateAccessToken(h.tokenCfg, user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID))

	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, http.StatusOK)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := auth.CurrentUser(ctx, h.users, h.tokenCfg, bearerToken(r))
	if err != nil {
		sendAuthError(h.logger, w, err)
		return
	}

	user, err = auth.ActiveUser(user)
	if err != nil {
		sendAuthError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, toUserResponse(user), http.StatusOK)
}
