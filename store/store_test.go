package store

import (
	"context"
	"os"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SessionStoreSuite runs the same contract against every backend.
type SessionStoreSuite struct {
	suite.Suite
	newStore func() SessionStore
	store    SessionStore
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *SessionStoreSuite) TearDownTest() {
	s.store.Close()
}

func (s *SessionStoreSuite) TestMissingKey() {
	v, ok, err := s.store.Get(context.Background(), "tms_token")
	s.Require().NoError(err)
	s.False(ok)
	s.Empty(v)
}

func (s *SessionStoreSuite) TestSaveGetDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, map[string]string{
		"tms_token": "abc",
		"tms_user":  `{"id":"u1"}`,
	}))

	v, ok, err := s.store.Get(ctx, "tms_token")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("abc", v)

	s.Require().NoError(s.store.Delete(ctx, "tms_token", "tms_user"))
	_, ok, err = s.store.Get(ctx, "tms_user")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SessionStoreSuite) TestDeleteMissingKeyIsNoop() {
	s.NoError(s.store.Delete(context.Background(), "nope"))
}

func (s *SessionStoreSuite) TestOverwrite() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, map[string]string{"k": "1"}))
	s.Require().NoError(s.store.Save(ctx, map[string]string{"k": "2"}))
	v, _, err := s.store.Get(ctx, "k")
	s.Require().NoError(err)
	s.Equal("2", v)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &SessionStoreSuite{newStore: func() SessionStore { return NewMemoryStore() }})
}

func TestBadgerStore(t *testing.T) {
	suite.Run(t, &SessionStoreSuite{newStore: func() SessionStore {
		db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
		require.NoError(t, err)
		return NewBadgerStoreWithDB(db)
	}})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TMS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TMS_TEST_DATABASE_URL not set")
	}
	suite.Run(t, &SessionStoreSuite{newStore: func() SessionStore {
		st, err := NewPostgresStore(dsn, "test")
		require.NoError(t, err)
		require.NoError(t, st.Delete(context.Background(), "tms_token", "tms_user", "k"))
		return st
	}})
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, map[string]string{"tms_token": "abc"}))
	require.NoError(t, st.Close())

	st, err = NewBadgerStore(dir)
	require.NoError(t, err)
	defer st.Close()
	v, ok, err := st.Get(ctx, "tms_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewMemoryStore().Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}
