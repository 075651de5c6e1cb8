package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/store"
)

type fakeAuth struct {
	payload *models.AuthPayload
	err     error
	calls   int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	f.calls++
	return f.payload, f.err
}

func (f *fakeAuth) Register(ctx context.Context, input models.RegisterInput) (*models.AuthPayload, error) {
	f.calls++
	return f.payload, f.err
}

type fakePurger struct{ resets int }

func (p *fakePurger) Reset() { p.resets++ }

// failingStore refuses every write.
type failingStore struct{ *store.MemoryStore }

func (failingStore) Save(ctx context.Context, entries map[string]string) error {
	return errors.New("disk full")
}

// stickyStore cannot remove entries.
type stickyStore struct{ *store.MemoryStore }

func (stickyStore) Delete(ctx context.Context, keys ...string) error {
	return errors.New("read-only filesystem")
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func adminPayload() *models.AuthPayload {
	return &models.AuthPayload{
		Token: "tok-1",
		User:  &models.User{ID: "u1", Email: "ada@tms.io", FullName: "Ada Lovelace", Role: models.RoleAdmin},
	}
}

func assertConsistent(t *testing.T, m *Manager) {
	t.Helper()
	assert.Equal(t, m.Token() != "", m.User() != nil, "token and user must be set together")
}

func TestLogin_PersistsBothEntries(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m := NewManager(st, &fakeAuth{payload: adminPayload()}, nil, quiet())

	user, err := m.Login(ctx, "ada@tms.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsAdmin())
	assert.Equal(t, "tok-1", m.Token())
	assertConsistent(t, m)

	tok, ok, err := st.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", tok)
	raw, ok, err := st.Get(ctx, KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"u1","email":"ada@tms.io","firstName":"","lastName":"","fullName":"Ada Lovelace","role":"ADMIN","isActive":false}`, raw)
}

func TestLogin_FailureLeavesNoSession(t *testing.T) {
	serverErr := errors.New("Invalid email or password")
	m := NewManager(store.NewMemoryStore(), &fakeAuth{err: serverErr}, nil, quiet())

	_, err := m.Login(context.Background(), "ada@tms.io", "nope")
	require.ErrorIs(t, err, serverErr)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, m.IsAuthenticated())
	assertConsistent(t, m)
}

func TestLogin_IncompletePayload(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), &fakeAuth{payload: &models.AuthPayload{Token: "t"}}, nil, quiet())

	_, err := m.Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrIncompletePayload)
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_PersistFailureKeepsMemoryEmpty(t *testing.T) {
	m := NewManager(failingStore{store.NewMemoryStore()}, &fakeAuth{payload: adminPayload()}, nil, quiet())

	_, err := m.Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.False(t, m.IsAuthenticated())
	assertConsistent(t, m)
}

func TestRegister(t *testing.T) {
	payload := &models.AuthPayload{Token: "tok-2", User: &models.User{ID: "u2", Role: models.RoleEmployee}}
	m := NewManager(store.NewMemoryStore(), &fakeAuth{payload: payload}, nil, quiet())

	user, err := m.Register(context.Background(), models.RegisterInput{Email: "new@tms.io", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u2", user.ID)
	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
}

func TestLogout_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	purger := &fakePurger{}
	m := NewManager(st, &fakeAuth{payload: adminPayload()}, purger, quiet())
	_, err := m.Login(ctx, "a", "b")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))

	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.User())
	assert.Equal(t, 1, purger.resets)
	_, ok, _ := st.Get(ctx, KeyToken)
	assert.False(t, ok)
	_, ok, _ = st.Get(ctx, KeyUser)
	assert.False(t, ok)
}

func TestInvalidate_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	purger := &fakePurger{}
	m := NewManager(st, &fakeAuth{payload: adminPayload()}, purger, quiet())
	_, err := m.Login(ctx, "a", "b")
	require.NoError(t, err)

	require.NoError(t, m.Invalidate(ctx))
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, purger.resets)
	_, ok, _ := st.Get(ctx, KeyToken)
	assert.False(t, ok)
}

func TestLogout_DeleteFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	st := stickyStore{store.NewMemoryStore()}
	purger := &fakePurger{}
	m := NewManager(st, &fakeAuth{payload: adminPayload()}, purger, quiet())
	_, err := m.Login(ctx, "a", "b")
	require.NoError(t, err)

	require.Error(t, m.Logout(ctx))

	// memory still agrees with what the next start would restore
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "tok-1", m.Token())
	assert.Zero(t, purger.resets)
	token, ok, _ := st.Get(ctx, KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestInvalidate_DeleteFailureStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	st := stickyStore{store.NewMemoryStore()}
	purger := &fakePurger{}
	m := NewManager(st, &fakeAuth{payload: adminPayload()}, purger, quiet())
	_, err := m.Login(ctx, "a", "b")
	require.NoError(t, err)

	require.Error(t, m.Invalidate(ctx))
	assert.False(t, m.IsAuthenticated())
	assertConsistent(t, m)
	assert.Equal(t, 1, purger.resets)
}

func TestHydrate(t *testing.T) {
	tests := []struct {
		name      string
		entries   map[string]string
		restored  bool
		leftovers bool
	}{
		{"nothing stored", nil, false, false},
		{"both entries", map[string]string{KeyToken: "tok", KeyUser: `{"id":"u1","role":"ADMIN"}`}, true, true},
		{"token only", map[string]string{KeyToken: "tok"}, false, false},
		{"user only", map[string]string{KeyUser: `{"id":"u1"}`}, false, false},
		{"corrupt user", map[string]string{KeyToken: "tok", KeyUser: `{not json`}, false, false},
		{"null user", map[string]string{KeyToken: "tok", KeyUser: `null`}, false, false},
		{"user without id", map[string]string{KeyToken: "tok", KeyUser: `{}`}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemoryStore()
			if tt.entries != nil {
				require.NoError(t, st.Save(ctx, tt.entries))
			}
			m := NewManager(st, &fakeAuth{}, nil, quiet())

			require.NoError(t, m.Hydrate(ctx))
			assert.Equal(t, tt.restored, m.IsAuthenticated())
			assertConsistent(t, m)

			_, hasToken, _ := st.Get(ctx, KeyToken)
			_, hasUser, _ := st.Get(ctx, KeyUser)
			assert.Equal(t, tt.leftovers, hasToken)
			assert.Equal(t, tt.leftovers, hasUser)
		})
	}
}

func TestHydrate_RestoresAdmin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(ctx, map[string]string{KeyToken: "tok", KeyUser: `{"id":"u1","role":"ADMIN"}`}))
	m := NewManager(st, &fakeAuth{}, nil, quiet())
	require.NoError(t, m.Hydrate(ctx))
	assert.True(t, m.IsAdmin())
	assert.Equal(t, "tok", m.Token())
}

func TestExpiresAt(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	payload := adminPayload()
	payload.Token = signed
	m := NewManager(store.NewMemoryStore(), &fakeAuth{payload: payload}, nil, quiet())

	_, err = m.ExpiresAt()
	require.ErrorIs(t, err, ErrNoExpiry)

	_, err = m.Login(ctx, "a", "b")
	require.NoError(t, err)
	got, err := m.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestExpiresAt_OpaqueToken(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), &fakeAuth{payload: adminPayload()}, nil, quiet())
	_, err := m.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	_, err = m.ExpiresAt()
	assert.ErrorIs(t, err, ErrNoExpiry)
}
