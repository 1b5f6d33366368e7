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

// UsersHandler serves user administration endpoints.
// Listing and deletion are superuser-only; reads and updates are allowed
// for the account owner as well.
type UsersHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokenCfg auth.TokenConfig
}

// NewUsersHandler creates the users handler
func NewUsersHandler(logger *slog.Logger, users storage.UserStorage, tokenCfg auth.TokenConfig) *UsersHandler {
	return &UsersHandler{
		logger:   logger,
		users:    users,
		tokenCfg: tokenCfg,
	}
}

func (h *UsersHandler) activeUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := auth.CurrentUser(r.Context(), h.users, h.tokenCfg, bearerToken(r))
	if err == nil {
		user, err = auth.ActiveUser(user)
	}
	if err != nil {
		sendAuthError(h.logger, w, err)
		return nil, false
	}
	return user, true
}

// List handles GET /api/v1/users/ (superuser only)
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.activeUser(w, r)
	if !ok {
		return
	}
	if _, err := auth.Superuser(caller); err != nil {
		sendAuthError(h.logger, w, err)
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	users, total, err := h.users.ListUsers(r.Context(), params.Skip, params.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list users", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	page, pages := Paginate(params.Skip, params.Limit, total)

	resp := api.PaginatedUsers{
		Items: make([]api.UserResponse, 0, len(users)),
		Total: total,
		Page:  page,
		Size:  params.Limit,
		Pages: pages,
	}
	for _, u := range users {
		resp.Items = append(resp.Items, toUserResponse(u))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get handles GET /api/v1/users/{id} (self or superuser)
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(h.logger, w, "user id must be an integer", http.StatusUnprocessableEntity)
		return
	}

	if caller.ID != id && !caller.IsSuperuser {
		sendError(h.logger, w, "Not enough permissions", http.StatusForbidden)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, toUserResponse(user), http.StatusOK)
}

// Update handles PUT /api/v1/users/{id} (self or superuser).
// Only fields present in the payload are changed; the is_active flag
// can only be flipped by a superuser.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(h.logger, w, "user id must be an integer", http.StatusUnprocessableEntity)
		return
	}

	if caller.ID != id && !caller.IsSuperuser {
		sendError(h.logger, w, "Not enough permissions", http.StatusForbidden)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	var req api.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email != nil {
		if err := validation.ValidateEmail(*req.Email); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		user.Email = *req.Email
	}
	if req.Username != nil {
		if err := validation.ValidateUsername(*req.Username); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Password != nil {
		if err := validation.ValidatePassword(*req.Password); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to hash password", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		user.HashedPassword = hashed
	}
	if req.IsActive != nil {
		if !caller.IsSuperuser {
			sendError(h.logger, w, "Not enough permissions", http.StatusForbidden)
			return
		}
		user.IsActive = *req.IsActive
	}

	now := time.Now()
	user.UpdatedAt = &now

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			sendError(h.logger, w, "Email already registered", http.StatusBadRequest)
		case errors.Is(err, storage.ErrUsernameTaken):
			sendError(h.logger, w, "Username already taken", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "failed to update user", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	sendJSON(h.logger, w, toUserResponse(user), http.StatusOK)
}

// Delete handles DELETE /api/v1/users/{id} (superuser only).
// Owned items are deleted with the account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.activeUser(w, r)
	if !ok {
		return
	}
	if _, err := auth.Superuser(caller); err != nil {
		sendAuthError(h.logger, w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(h.logger, w, "user id must be an integer", http.StatusUnprocessableEntity)
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to delete user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "user deleted",
		slog.Int64("user_id", id),
		slog.Int64("deleted_by", caller.ID))

	w.WriteHeader(http.StatusNoContent)
}
