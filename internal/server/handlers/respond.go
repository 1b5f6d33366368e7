package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"stockroom/internal/models"
	"stockroom/internal/server/auth"
	"stockroom/pkg/api"
)

// sendJSON writes a JSON response with the given status code
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// sendAuthError maps identity-resolution errors to HTTP responses.
// Every ErrUnauthorized cause looks identical to the client.
func sendAuthError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		sendError(logger, w, "Could not validate credentials", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInactiveUser):
		sendError(logger, w, "Inactive user", http.StatusBadRequest)
	case errors.Is(err, auth.ErrNotSuperuser):
		sendError(logger, w, "Not enough permissions", http.StatusForbidden)
	default:
		sendError(logger, w, "internal server error", http.StatusInternalServerError)
	}
}

// bearerToken extracts the token from the Authorization header.
// Returns "" when the header is absent or not in "Bearer <token>" form;
// callers treat both the same.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// listParams holds validated pagination query parameters
type listParams struct {
	Skip  int
	Limit int
}

// parseListParams validates skip/limit query parameters.
// skip must be >= 0 (default 0), limit within [1, 1000] (default 100).
func parseListParams(r *http.Request) (listParams, error) {
	params := listParams{Skip: 0, Limit: 100}

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, errors.New("skip must be a non-negative integer")
		}
		params.Skip = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return params, errors.New("limit must be an integer between 1 and 1000")
		}
		params.Limit = n
	}

	return params, nil
}

// toUserResponse strips the password hash from a user record
func toUserResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// toItemResponse converts an item with its pre-joined owner
func toItemResponse(i *models.Item) api.ItemResponse {
	resp := api.ItemResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Price:       i.Price,
		OwnerID:     i.OwnerID,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.Owner != nil {
		owner := toUserResponse(i.Owner)
		resp.Owner = &owner
	}
	return resp
}
