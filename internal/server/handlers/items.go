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

// ItemsHandler serves item CRUD endpoints
type ItemsHandler struct {
	logger   *slog.Logger
	items    storage.ItemStorage
	users    storage.UserStorage
	tokenCfg auth.TokenConfig
}

// NewItemsHandler creates the items handler
func NewItemsHandler(logger *slog.Logger, items storage.ItemStorage, users storage.UserStorage, tokenCfg auth.TokenConfig) *ItemsHandler {
	return &ItemsHandler{
		logger:   logger,
		items:    items,
		users:    users,
		tokenCfg: tokenCfg,
	}
}

// activeUser resolves the caller: mandatory token, then active check.
// Writes the error response itself and reports success via ok.
func (h *ItemsHandler) activeUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
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

// List handles GET /api/v1/items/
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(w, r); !ok {
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	items, total, err := h.items.ListItems(r.Context(), params.Skip, params.Limit, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list items", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	page, pages := Paginate(params.Skip, params.Limit, total)

	resp := api.PaginatedItems{
		Items: make([]api.ItemResponse, 0, len(items)),
		Total: total,
		Page:  page,
		Size:  params.Limit,
		Pages: pages,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// MyItems handles GET /api/v1/items/my-items
func (h *ItemsHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	user, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	items, _, err := h.items.ListItems(r.Context(), params.Skip, params.Limit, &user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list user items", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get handles GET /api/v1/items/{id}
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.activeUser(w, r); !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		sendError(h.logger, w, "item id must be an integer", http.StatusUnprocessableEntity)
		return
	}

	item, err := h.items.GetItemByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			sendError(h.logger, w, "Item not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get item", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, toItemResponse(item), http.StatusOK)
}

// Create handles POST /api/v1/items/.
// The owner is always the caller; nothing in the payload can change it.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	var req api.ItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateItemTitle(req.Title); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := validation.ValidateItemPrice(req.Price); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	item := &models.Item{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		OwnerID:     user.ID,
		CreatedAt:   time.Now(),
	}

	if err := h.items.CreateItem(r.Context(), item); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create item", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "item created",
		slog.Int64("item_id", item.ID),
		slog.Int64("owner_id", user.ID))

	item.Owner = user
	sendJSON(h.logger, w, toItemResponse(item), http.StatusCreated)
}

// loadOwnedItem fetches an item and enforces the NotFound-before-Forbidden
// ordering for mutations. Writes the error response itself.
func (h *ItemsHandler) loadOwnedItem(w http.ResponseWriter, r *http.Request, caller *models.User) (*models.Item, bool) {
	id, err := pathID(r)
	if err != nil {
		sendError(h.logger, w, "item id must be an integer", http.StatusUnprocessableEntity)
		return nil, false
	}

	item, err := h.items.GetItemByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			sendError(h.logger, w, "Item not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "failed to get item", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	if item.OwnerID != caller.ID {
		sendError(h.logger, w, "Not enough permissions", http.StatusForbidden)
		return nil, false
	}

	return item, true
}

// Update handles PUT /api/v1/items/{id}.
// Only fields present in the payload are changed.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	item, ok := h.loadOwnedItem(w, r, user)
	if !ok {
		return
	}

	var req api.ItemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		if err := validation.ValidateItemTitle(*req.Title); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		if err := validation.ValidateItemPrice(*req.Price); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		item.Price = *req.Price
	}

	now := time.Now()
	item.UpdatedAt = &now

	if err := h.items.UpdateItem(r.Context(), item); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to update item", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, toItemResponse(item), http.StatusOK)
}

// Delete handles DELETE /api/v1/items/{id}
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.activeUser(w, r)
	if !ok {
		return
	}

	item, ok := h.loadOwnedItem(w, r, user)
	if !ok {
		return
	}

	if err := h.items.DeleteItem(r.Context(), item.ID); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to delete item", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "item deleted",
		slog.Int64("item_id", item.ID),
		slog.Int64("owner_id", user.ID))

	w.WriteHeader(http.StatusNoContent)
}
