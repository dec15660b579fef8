package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rvasani/lenden/internal/api"
	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/keystore"
	"github.com/rvasani/lenden/internal/logging"
	"github.com/rvasani/lenden/internal/models"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := keystore.Open(context.Background(), filepath.Join(t.TempDir(), "ks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storeToken(t *testing.T, db *sql.DB, token string) {
	t.Helper()
	require.NoError(t, keystore.NewSQLiteStore(db).Set(context.Background(), keystore.KeyToken, []byte(token)))
}

func storedToken(t *testing.T, db *sql.DB) (string, bool) {
	t.Helper()
	v, err := keystore.NewSQLiteStore(db).Get(context.Background(), keystore.KeyToken)
	if errors.Is(err, common.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func okEnvelope(t *testing.T, data any) *api.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &api.Envelope{Success: true, Data: raw}
}

// ---- fake gateway ----

type stub struct {
	env *api.Envelope
	err error
}

type fakeGateway struct {
	stubs map[string]stub
	calls []string
}

func (f *fakeGateway) Do(ctx context.Context, spec api.Spec, body any) (*api.Envelope, error) {
	f.calls = append(f.calls, spec.Path)
	s, ok := f.stubs[spec.Path]
	if !ok {
		return nil, errors.New("unexpected call: " + spec.Path)
	}
	return s.env, s.err
}

func newManager(t *testing.T, db *sql.DB, gw Gateway) *Manager {
	t.Helper()
	return NewManager(db, gw, logging.NewTextLogger(io.Discard, "error"))
}

// ---- tests ----

func TestRestore_NoStoredCredential(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{}
	m := newManager(t, db, gw)

	m.Restore(context.Background())

	s := m.Current()
	assert.Equal(t, StatusUnauthenticated, s.Status)
	assert.Empty(t, s.Credential)
	assert.Nil(t, s.Identity)
	assert.Empty(t, gw.calls, "no network call without a stored credential")
}

func TestRestore_ValidCredential(t *testing.T) {
	db := setupDB(t)
	storeToken(t, db, "t1")
	gw := &fakeGateway{stubs: map[string]stub{
		api.Profile.Path: {env: okEnvelope(t, models.User{Username: "bob"})},
	}}
	m := newManager(t, db, gw)

	m.Restore(context.Background())

	s := m.Current()
	require.Equal(t, StatusAuthenticated, s.Status)
	assert.Equal(t, "t1", s.Credential)
	require.NotNil(t, s.Identity)
	assert.Equal(t, "bob", s.Identity.Username)

	tok, ok := storedToken(t, db)
	require.True(t, ok)
	assert.Equal(t, "t1", tok)
}

func TestRestore_InvalidCredentialPurges(t *testing.T) {
	tests := []struct {
		name string
		stub stub
	}{
		{"application failure", stub{env: &api.Envelope{Success: false, Message: "invalid token"}}},
		{"error flag set", stub{env: &api.Envelope{Success: true, Error: true}}},
		{"transport failure", stub{err: common.ErrUnavailable}},
		{"malformed payload", stub{env: okEnvelope(t, map[string]string{"unexpected": "shape"})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			storeToken(t, db, "stale")
			gw := &fakeGateway{stubs: map[string]stub{api.Profile.Path: tt.stub}}
			m := newManager(t, db, gw)

			m.Restore(context.Background())

			s := m.Current()
			assert.Equal(t, StatusUnauthenticated, s.Status)
			assert.Empty(t, s.Credential)
			assert.Nil(t, s.Identity)

			_, ok := storedToken(t, db)
			assert.False(t, ok, "stored credential must be purged")
		})
	}
}

func TestRestore_KeystoreReadErrorFailsClosed(t *testing.T) {
	db := setupDB(t)
	storeToken(t, db, "t1")
	_, err := db.Exec("DROP TABLE keystore")
	require.NoError(t, err)
	gw := &fakeGateway{}
	m := newManager(t, db, gw)

	m.Restore(context.Background())

	s := m.Current()
	assert.Equal(t, StatusUnauthenticated, s.Status)
	assert.Empty(t, s.Credential)
	assert.Nil(t, s.Identity)
	assert.Empty(t, gw.calls, "unreadable keystore must not reach the network")
}

func TestRestore_ExpiredJWTSkipsNetwork(t *testing.T) {
	db := setupDB(t)
	storeToken(t, db, signedJWT(t, time.Now().Add(-time.Hour)))
	gw := &fakeGateway{}
	m := newManager(t, db, gw)

	m.Restore(context.Background())

	assert.Equal(t, StatusUnauthenticated, m.Current().Status)
	assert.Empty(t, gw.calls, "locally expired token must not hit the network")
	_, ok := storedToken(t, db)
	assert.False(t, ok)
}

func TestRestore_UnexpiredJWTValidatesOnline(t *testing.T) {
	db := setupDB(t)
	storeToken(t, db, signedJWT(t, time.Now().Add(time.Hour)))
	gw := &fakeGateway{stubs: map[string]stub{
		api.Profile.Path: {env: okEnvelope(t, models.User{Username: "bob"})},
	}}
	m := newManager(t, db, gw)

	m.Restore(context.Background())

	assert.Equal(t, StatusAuthenticated, m.Current().Status)
	assert.Equal(t, []string{api.Profile.Path}, gw.calls)
}

func TestLogin_Success(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Login.Path: {env: okEnvelope(t, loginPayload{
			Token: "t1",
			User:  &models.User{Username: "bob"},
		})},
	}}
	m := newManager(t, db, gw)

	res := m.Login(context.Background(), "bob", "x")

	require.True(t, res.OK)
	s := m.Current()
	assert.Equal(t, StatusAuthenticated, s.Status)
	assert.Equal(t, "t1", s.Credential)
	require.NotNil(t, s.Identity)
	assert.Equal(t, "bob", s.Identity.Username)

	tok, ok := storedToken(t, db)
	require.True(t, ok)
	assert.Equal(t, "t1", tok)
}

func TestLogin_SuccessFlagWithoutToken(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Login.Path: {env: okEnvelope(t, map[string]any{"user": map[string]string{"username": "bob"}})},
	}}
	m := newManager(t, db, gw)

	res := m.Login(context.Background(), "bob", "x")

	assert.False(t, res.OK)
	assert.Equal(t, StatusUnknown, m.Current().Status, "session unchanged")
	_, ok := storedToken(t, db)
	assert.False(t, ok, "no partial credential stored")
}

func TestLogin_TokenWithoutIdentity(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{"user absent", map[string]any{"token": "t1"}},
		{"user null", map[string]any{"token": "t1", "user": nil}},
		{"user without username", map[string]any{"token": "t1", "user": map[string]string{"name": "Bob"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			gw := &fakeGateway{stubs: map[string]stub{
				api.Login.Path: {env: okEnvelope(t, tt.data)},
			}}
			m := newManager(t, db, gw)

			res := m.Login(context.Background(), "bob", "x")

			assert.False(t, res.OK)
			assert.Equal(t, "Login failed. Please try again.", res.Message)
			s := m.Current()
			assert.Equal(t, StatusUnknown, s.Status, "session unchanged")
			assert.Nil(t, s.Identity)
			assert.Empty(t, m.Token(), "no credential held without an identity")
			_, ok := storedToken(t, db)
			assert.False(t, ok, "no partial credential stored")
		})
	}
}

func TestLogin_ApplicationFailure(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Login.Path: {env: &api.Envelope{Success: false, Message: "wrong password"}},
	}}
	m := newManager(t, db, gw)

	res := m.Login(context.Background(), "bob", "bad")

	assert.False(t, res.OK)
	assert.Equal(t, "wrong password", res.Message)
	assert.Equal(t, StatusUnknown, m.Current().Status)
}

func TestLogin_TransportFailure(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Login.Path: {err: common.ErrUnavailable},
	}}
	m := newManager(t, db, gw)

	res := m.Login(context.Background(), "bob", "x")

	assert.False(t, res.OK)
	assert.Equal(t, "Login failed. Please try again.", res.Message)
	assert.Equal(t, StatusUnknown, m.Current().Status)
}

func TestLogout_AlwaysSucceedsLocally(t *testing.T) {
	db := setupDB(t)
	storeToken(t, db, "t1")
	gw := &fakeGateway{stubs: map[string]stub{
		api.Profile.Path: {env: okEnvelope(t, models.User{Username: "bob"})},
		api.Logout.Path:  {err: common.ErrUnavailable},
	}}
	m := newManager(t, db, gw)
	m.Restore(context.Background())
	require.Equal(t, StatusAuthenticated, m.Current().Status)

	m.Logout(context.Background())

	s := m.Current()
	assert.Equal(t, StatusUnauthenticated, s.Status)
	assert.Empty(t, s.Credential)
	assert.Nil(t, s.Identity)
	_, ok := storedToken(t, db)
	assert.False(t, ok)
}

func TestRegister_NeverMutatesSession(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Register.Path: {env: &api.Envelope{Success: true, Message: "Registration successful"}},
	}}
	m := newManager(t, db, gw)

	res := m.Register(context.Background(), "bob", "x")

	assert.True(t, res.OK)
	assert.Equal(t, "Registration successful", res.Message)
	assert.Equal(t, StatusUnknown, m.Current().Status)
	_, ok := storedToken(t, db)
	assert.False(t, ok)
}

func TestRegister_Failure(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Register.Path: {env: &api.Envelope{Success: false, Message: "username taken"}},
	}}
	m := newManager(t, db, gw)

	res := m.Register(context.Background(), "bob", "x")

	assert.False(t, res.OK)
	assert.Equal(t, "username taken", res.Message)
}

func TestToken_ReflectsCredential(t *testing.T) {
	db := setupDB(t)
	gw := &fakeGateway{stubs: map[string]stub{
		api.Login.Path: {env: okEnvelope(t, loginPayload{Token: "t9", User: &models.User{Username: "bob"}})},
	}}
	m := newManager(t, db, gw)

	assert.Empty(t, m.Token())
	m.Login(context.Background(), "bob", "x")
	assert.Equal(t, "t9", m.Token())
}
