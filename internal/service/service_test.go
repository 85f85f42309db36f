package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage/sqlite"
)

type testEnv struct {
	auth    *api.AuthServiceClient
	lists   *api.ListServiceClient
	store   *sqlite.SQLiteStore
	listSvc *ListService
}

// setupTestServer serves both services over a temporary database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	listSvc := NewListService(store, WithOwnerCache(16, time.Minute))

	mux := http.NewServeMux()
	handlers := Handlers(
		NewAuthService(authenticator, jwtManager, store, logger),
		listSvc,
		jwtManager,
	)
	for path, h := range handlers {
		mux.Handle(path, h)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		auth:    api.NewAuthServiceClient(server.Client(), server.URL),
		lists:   api.NewListServiceClient(server.Client(), server.URL),
		store:   store,
		listSvc: listSvc,
	}
}

// register creates an account and returns its id and token.
func (e *testEnv) register(t *testing.T, email, username string) (string, string) {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Password: "salasana",
		Username: username,
	}))
	require.NoError(t, err)
	return resp.Msg.User.ID, resp.Msg.Token
}

func authed[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	id, token := env.register(t, "anna@example.com", "Anna")
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, token)

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "anna@example.com",
		Password: "salasana",
	}))
	require.NoError(t, err)
	assert.Equal(t, api.User{ID: id, Email: "anna@example.com", Username: "Anna"}, login.Msg.User)

	me, err := env.auth.GetCurrentUser(ctx, authed(&api.GetCurrentUserRequest{}, login.Msg.Token))
	require.NoError(t, err)
	assert.Equal(t, "Anna", me.Msg.User.Username)

	_, err = env.auth.Logout(ctx, authed(&api.LogoutRequest{}, login.Msg.Token))
	require.NoError(t, err)
}

func TestAuthService_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.register(t, "anna@example.com", "Anna")

	tests := []struct {
		name string
		call func() error
		code connect.Code
	}{
		{"duplicate email", func() error {
			_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "anna@example.com", Password: "salasana", Username: "Toinen",
			}))
			return err
		}, connect.CodeAlreadyExists},
		{"weak password", func() error {
			_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "b@example.com", Password: "12345", Username: "B",
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"malformed email", func() error {
			_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
				Email: "not-an-email", Password: "salasana", Username: "C",
			}))
			return err
		}, connect.CodeInvalidArgument},
		{"wrong password", func() error {
			_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
				Email: "anna@example.com", Password: "väärä!",
			}))
			return err
		}, connect.CodeUnauthenticated},
		{"unknown email", func() error {
			_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
				Email: "nobody@example.com", Password: "salasana",
			}))
			return err
		}, connect.CodeUnauthenticated},
		{"current user without token", func() error {
			_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
			return err
		}, connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}
}

func TestListService_GetOwner(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	id, _ := env.register(t, "anna@example.com", "Anna")

	resp, err := env.lists.GetOwner(ctx, connect.NewRequest(&api.GetOwnerRequest{OwnerID: id}))
	require.NoError(t, err)
	assert.Equal(t, api.Owner{ID: id, Username: "Anna"}, resp.Msg.Owner)

	_, err = env.lists.GetOwner(ctx, connect.NewRequest(&api.GetOwnerRequest{OwnerID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = env.lists.GetOwner(ctx, connect.NewRequest(&api.GetOwnerRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestListService_AddAndRemoveItem(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	id, token := env.register(t, "anna@example.com", "Anna")

	added, err := env.lists.AddItem(ctx, authed(&api.AddItemRequest{
		OwnerID: id,
		Item:    api.Item{Name: "Salmiakki", Amount: 3, URL: "https://example.com/s", Price: "7,50€"},
	}, token))
	require.NoError(t, err)
	assert.NotEmpty(t, added.Msg.Item.ID)

	items, err := env.store.ListItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Salmiakki", items[0].Name)
	assert.Equal(t, "7,50€", items[0].Price)

	_, err = env.lists.RemoveItem(ctx, authed(&api.RemoveItemRequest{OwnerID: id, ItemID: added.Msg.Item.ID}, token))
	require.NoError(t, err)

	items, err = env.store.ListItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.lists.RemoveItem(ctx, authed(&api.RemoveItemRequest{OwnerID: id, ItemID: added.Msg.Item.ID}, token))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestListService_EditGate(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	annaID, _ := env.register(t, "anna@example.com", "Anna")
	_, bertilToken := env.register(t, "bertil@example.com", "Bertil")

	item := api.Item{Name: "Lakritsi", Amount: 1, Price: "1,00€"}

	t.Run("anonymous", func(t *testing.T) {
		_, err := env.lists.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{OwnerID: annaID, Item: item}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("other user", func(t *testing.T) {
		_, err := env.lists.AddItem(ctx, authed(&api.AddItemRequest{OwnerID: annaID, Item: item}, bertilToken))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

		_, err = env.lists.RemoveItem(ctx, authed(&api.RemoveItemRequest{OwnerID: annaID, ItemID: "x"}, bertilToken))
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := env.lists.AddItem(ctx, authed(&api.AddItemRequest{OwnerID: "missing", Item: item}, bertilToken))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	items, err := env.store.ListItems(ctx, annaID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListService_AddItemRejectsBadPrice(t *testing.T) {
	env := setupTestServer(t)
	id, token := env.register(t, "anna@example.com", "Anna")

	for _, price := range []string{"", "ilmainen", "-1,00€", "1e400", "1e50000000€"} {
		_, err := env.lists.AddItem(context.Background(), authed(&api.AddItemRequest{
			OwnerID: id,
			Item:    api.Item{Name: "X", Amount: 1, Price: price},
		}, token))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "price %q", price)
	}
}

func TestListService_WatchItems(t *testing.T) {
	env := setupTestServer(t)
	id, token := env.register(t, "anna@example.com", "Anna")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := env.lists.WatchItems(ctx, connect.NewRequest(&api.WatchItemsRequest{OwnerID: id}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "initial snapshot: %v", stream.Err())
	assert.Empty(t, stream.Msg().Items)

	for _, name := range []string{"Salmiakki", "Lakritsi"} {
		_, err = env.lists.AddItem(ctx, authed(&api.AddItemRequest{
			OwnerID: id,
			Item:    api.Item{Name: name, Amount: 1, Price: "1,00€"},
		}, token))
		require.NoError(t, err)
	}

	// Snapshots may coalesce; keep reading until both items are visible.
	var names []string
	for len(names) < 2 {
		require.True(t, stream.Receive(), "snapshot: %v", stream.Err())
		names = names[:0]
		for _, item := range stream.Msg().Items {
			names = append(names, item.Name)
		}
	}
	assert.Equal(t, []string{"Salmiakki", "Lakritsi"}, names)
}

func TestListService_WatchOwners(t *testing.T) {
	env := setupTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := env.lists.WatchOwners(ctx, connect.NewRequest(&api.WatchOwnersRequest{}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "initial snapshot: %v", stream.Err())
	assert.Empty(t, stream.Msg().Owners)

	id, _ := env.register(t, "anna@example.com", "Anna")

	require.True(t, stream.Receive(), "snapshot: %v", stream.Err())
	assert.Equal(t, []api.Owner{{ID: id, Username: "Anna"}}, stream.Msg().Owners)
}

func TestListService_CloseEndsStreams(t *testing.T) {
	env := setupTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := env.lists.WatchOwners(ctx, connect.NewRequest(&api.WatchOwnersRequest{}))
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "initial snapshot: %v", stream.Err())

	env.listSvc.Close()
	assert.False(t, stream.Receive())
	assert.NoError(t, stream.Err())
}

func TestOwnerCache(t *testing.T) {
	c := newOwnerCache(0, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set(models.Owner{ID: "a", Username: "Anna"})
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Anna", got.Username)
	assert.Equal(t, 1, c.Len())
}
