package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
	"stockroom/internal/server/storage"
	"stockroom/pkg/api"
)

func newItemsHandler(items *mockItemStorage, users *mockUserStorage) *ItemsHandler {
	return NewItemsHandler(setupTestLogger(), items, users, testTokenConfig())
}

// seedItem adds an item owned by the given user
func seedItem(t *testing.T, items *mockItemStorage, owner *models.User, title string, price int64) *models.Item {
	t.Helper()

	item := &models.Item{
		Title:     title,
		Price:     price,
		OwnerID:   owner.ID,
		Owner:     owner,
		CreatedAt: time.Now(),
	}
	require.NoError(t, items.CreateItem(context.Background(), item))
	return item
}

func TestItemsHandler_List(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	bob := seedUser(t, users, "bob", true, false)

	items := newMockItemStorage()
	seedItem(t, items, alice, "Widget", 100)
	seedItem(t, items, alice, "Gadget", 200)
	seedItem(t, items, bob, "Gizmo", 300)

	handler := newItemsHandler(items, users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/", nil)
	authorize(t, req, alice)

	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.PaginatedItems
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 100, resp.Size)
	assert.Equal(t, 1, resp.Pages)
	assert.Len(t, resp.Items, 3)
}

func TestItemsHandler_List_Pagination(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)

	items := newMockItemStorage()
	for i := 0; i < 5; i++ {
		seedItem(t, items, alice, fmt.Sprintf("Item %d", i), 100)
	}

	handler := newItemsHandler(items, users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/?skip=3&limit=3", nil)
	authorize(t, req, alice)

	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.PaginatedItems
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.Pages)
	assert.Len(t, resp.Items, 2)
}

func TestItemsHandler_List_BadParams(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/?limit=0", nil)
	authorize(t, req, alice)

	w := httptest.NewRecorder()
	handler.List(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestItemsHandler_List_Unauthorized(t *testing.T) {
	handler := newItemsHandler(newMockItemStorage(), newMockUserStorage())

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/items/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestItemsHandler_MyItems(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	bob := seedUser(t, users, "bob", true, false)

	items := newMockItemStorage()
	seedItem(t, items, alice, "Widget", 100)
	seedItem(t, items, bob, "Gizmo", 300)

	handler := newItemsHandler(items, users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/my-items", nil)
	authorize(t, req, alice)

	w := httptest.NewRecorder()
	handler.MyItems(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []api.ItemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Widget", resp[0].Title)
	assert.Equal(t, alice.ID, resp[0].OwnerID)
}

func TestItemsHandler_Get(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	bob := seedUser(t, users, "bob", true, false)

	items := newMockItemStorage()
	gizmo := seedItem(t, items, bob, "Gizmo", 300)

	handler := newItemsHandler(items, users)

	// Any active user can read any item
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/items/%d", gizmo.ID), nil)
	authorize(t, req, alice)

	w := withPathValue(handler.Get, "GET /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.ItemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Gizmo", resp.Title)
	require.NotNil(t, resp.Owner)
	assert.Equal(t, "bob", resp.Owner.Username)
}

func TestItemsHandler_Get_NotFound(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/999", nil)
	authorize(t, req, alice)

	w := withPathValue(handler.Get, "GET /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemsHandler_Get_NonIntegerID(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/abc", nil)
	authorize(t, req, alice)

	w := withPathValue(handler.Get, "GET /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestItemsHandler_Create(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)

	items := newMockItemStorage()
	handler := newItemsHandler(items, users)

	req := postJSON(t, "/api/v1/items/", api.ItemCreateRequest{
		Title:       "Widget",
		Description: "A fine widget",
		Price:       150,
	})
	authorize(t, req, alice)

	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp api.ItemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Widget", resp.Title)
	assert.Equal(t, int64(150), resp.Price)
	assert.Equal(t, alice.ID, resp.OwnerID)
	require.NotNil(t, resp.Owner)
	assert.Equal(t, "alice", resp.Owner.Username)
}

func TestItemsHandler_Create_Validation(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	tests := []struct {
		name string
		req  api.ItemCreateRequest
	}{
		{name: "blank title", req: api.ItemCreateRequest{Title: "   ", Price: 100}},
		{name: "zero price", req: api.ItemCreateRequest{Title: "Widget", Price: 0}},
		{name: "negative price", req: api.ItemCreateRequest{Title: "Widget", Price: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postJSON(t, "/api/v1/items/", tt.req)
			authorize(t, req, alice)

			w := httptest.NewRecorder()
			handler.Create(w, req)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestItemsHandler_Create_InactiveUser(t *testing.T) {
	users := newMockUserStorage()
	carol := seedUser(t, users, "carol", false, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	req := postJSON(t, "/api/v1/items/", api.ItemCreateRequest{Title: "Widget", Price: 100})
	authorize(t, req, carol)

	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestItemsHandler_Update_Partial(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)

	items := newMockItemStorage()
	widget := seedItem(t, items, alice, "Widget", 100)
	widget.Description = "Original description"

	handler := newItemsHandler(items, users)

	newPrice := int64(250)
	req := postJSON(t, fmt.Sprintf("/api/v1/items/%d", widget.ID), api.ItemUpdateRequest{
		Price: &newPrice,
	})
	req.Method = http.MethodPut
	authorize(t, req, alice)

	w := withPathValue(handler.Update, "PUT /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.ItemResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(250), resp.Price)
	// Untouched fields survive the partial update
	assert.Equal(t, "Widget", resp.Title)
	assert.Equal(t, "Original description", resp.Description)
	assert.NotNil(t, resp.UpdatedAt)
}

func TestItemsHandler_Update_NotOwner(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	bob := seedUser(t, users, "bob", true, false)

	items := newMockItemStorage()
	widget := seedItem(t, items, alice, "Widget", 100)

	handler := newItemsHandler(items, users)

	title := "Hijacked"
	req := postJSON(t, fmt.Sprintf("/api/v1/items/%d", widget.ID), api.ItemUpdateRequest{Title: &title})
	req.Method = http.MethodPut
	authorize(t, req, bob)

	w := withPathValue(handler.Update, "PUT /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Item is unchanged
	stored, err := items.GetItemByID(context.Background(), widget.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.Title)
}

func TestItemsHandler_Update_NotFoundBeforeForbidden(t *testing.T) {
	// A missing item reports 404 even when the caller would not own it
	users := newMockUserStorage()
	bob := seedUser(t, users, "bob", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	title := "Anything"
	req := postJSON(t, "/api/v1/items/999", api.ItemUpdateRequest{Title: &title})
	req.Method = http.MethodPut
	authorize(t, req, bob)

	w := withPathValue(handler.Update, "PUT /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItemsHandler_Update_Validation(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)

	items := newMockItemStorage()
	widget := seedItem(t, items, alice, "Widget", 100)

	handler := newItemsHandler(items, users)

	badPrice := int64(-1)
	req := postJSON(t, fmt.Sprintf("/api/v1/items/%d", widget.ID), api.ItemUpdateRequest{Price: &badPrice})
	req.Method = http.MethodPut
	authorize(t, req, alice)

	w := withPathValue(handler.Update, "PUT /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestItemsHandler_Delete(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)

	items := newMockItemStorage()
	widget := seedItem(t, items, alice, "Widget", 100)

	handler := newItemsHandler(items, users)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", widget.ID), nil)
	authorize(t, req, alice)

	w := withPathValue(handler.Delete, "DELETE /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := items.GetItemByID(context.Background(), widget.ID)
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestItemsHandler_Delete_NotOwner(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	bob := seedUser(t, users, "bob", true, false)

	items := newMockItemStorage()
	widget := seedItem(t, items, alice, "Widget", 100)

	handler := newItemsHandler(items, users)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", widget.ID), nil)
	authorize(t, req, bob)

	w := withPathValue(handler.Delete, "DELETE /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := items.GetItemByID(context.Background(), widget.ID)
	assert.NoError(t, err, "item must survive a forbidden delete")
}

func TestItemsHandler_Delete_NotFound(t *testing.T) {
	users := newMockUserStorage()
	alice := seedUser(t, users, "alice", true, false)
	handler := newItemsHandler(newMockItemStorage(), users)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/999", nil)
	authorize(t, req, alice)

	w := withPathValue(handler.Delete, "DELETE /api/v1/items/{id}", req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
