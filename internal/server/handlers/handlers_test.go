package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
	"stockroom/internal/server/auth"
	"stockroom/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

func testTokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: 15 * time.Minute,
	}
}

// mockUserStorage is an in-memory UserStorage for handler tests
type mockUserStorage struct {
	users  map[int64]*models.User
	nextID int64
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[int64]*models.User), nextID: 1}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrEmailTaken
		}
		if u.Username == user.Username {
			return storage.ErrUsernameTaken
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, int, error) {
	all := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (m *mockUserStorage) UpdateUser(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStorage) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// mockItemStorage is an in-memory ItemStorage for handler tests
type mockItemStorage struct {
	items  map[int64]*models.Item
	nextID int64
}

func newMockItemStorage() *mockItemStorage {
	return &mockItemStorage{items: make(map[int64]*models.Item), nextID: 1}
}

func (m *mockItemStorage) CreateItem(ctx context.Context, item *models.Item) error {
	item.ID = m.nextID
	m.nextID++
	m.items[item.ID] = item
	return nil
}

func (m *mockItemStorage) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, storage.ErrItemNotFound
	}
	return item, nil
}

func (m *mockItemStorage) ListItems(ctx context.Context, skip, limit int, ownerID *int64) ([]*models.Item, int, error) {
	all := make([]*models.Item, 0, len(m.items))
	for _, item := range m.items {
		if ownerID != nil && item.OwnerID != *ownerID {
			continue
		}
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (m *mockItemStorage) UpdateItem(ctx context.Context, item *models.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return storage.ErrItemNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockItemStorage) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return storage.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

// seedUser adds a user with a known password to the mock store
func seedUser(t *testing.T, users *mockUserStorage, username string, active, super bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Email:          username + "@example.com",
		Username:       username,
		HashedPassword: hash,
		IsActive:       active,
		IsSuperuser:    super,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, users.CreateUser(context.Background(), user))
	return user
}

// authorize attaches a valid bearer token for the given user
func authorize(t *testing.T, req *http.Request, user *models.User) {
	t.Helper()

	token, err := auth.GenerateAccessToken(testTokenConfig(), user.Username)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

// withPathValue routes a request through a mux so PathValue is populated
func withPathValue(handler http.HandlerFunc, pattern string, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}
