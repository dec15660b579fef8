package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rvasani/lenden/internal/api"
	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/dbx"
	"github.com/rvasani/lenden/internal/keystore"
	"github.com/rvasani/lenden/internal/logging"
	"github.com/rvasani/lenden/internal/models"
)

// Gateway is the slice of the request gateway the manager needs.
// *api.Client satisfies it.
type Gateway interface {
	Do(ctx context.Context, spec api.Spec, body any) (*api.Envelope, error)
}

// Manager owns the session. All mutation goes through Restore, Login and
// Logout; Register is a stateless pass-through.
type Manager struct {
	mu      sync.RWMutex
	session Session

	db  *sql.DB
	gw  Gateway
	log logging.Logger
}

// NewManager builds a manager over the keystore database and the gateway.
// The session starts in StatusUnknown until Restore resolves it.
func NewManager(db *sql.DB, gw Gateway, log logging.Logger) *Manager {
	return &Manager{
		session: Session{Status: StatusUnknown},
		db:      db,
		gw:      gw,
		log:     log.With("component", "session"),
	}
}

func (m *Manager) store() keystore.Store {
	return keystore.NewSQLiteStore(m.db)
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token returns the current credential, or "". It satisfies api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Credential
}

func (m *Manager) set(s Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

// loginPayload is the data half of a successful login envelope.
type loginPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Restore resolves a stored credential at startup. A valid profile response
// moves the session to authenticated and re-persists credential and
// identity; any failure (no stored credential, expired token, transport
// error, application failure, malformed payload) fails closed: the session
// becomes unauthenticated and the stored state is purged.
func (m *Manager) Restore(ctx context.Context) {
	token, err := m.store().Get(ctx, keystore.KeyToken)
	if err != nil || len(token) == 0 {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			m.log.Warn(ctx, "keystore read failed, purging", "err", err)
			m.purge(ctx)
			return
		}
		m.set(Session{Status: StatusUnauthenticated})
		return
	}

	m.set(Session{Status: StatusAuthenticating, Credential: string(token)})

	// A token that is already expired locally cannot validate; skip the
	// round-trip. Opaque (non-JWT) tokens fall through to the network check.
	if tokenExpired(string(token), time.Now()) {
		m.log.Info(ctx, "stored credential expired, purging")
		m.purge(ctx)
		return
	}

	env, err := m.gw.Do(ctx, api.Profile, nil)
	if err != nil || !env.OK() {
		m.log.Info(ctx, "session restore failed, purging", "err", err)
		m.purge(ctx)
		return
	}

	var user models.User
	if err := env.Decode(&user); err != nil || user.Username == "" {
		m.log.Warn(ctx, "malformed profile payload, purging")
		m.purge(ctx)
		return
	}

	if err := m.persist(ctx, string(token), &user); err != nil {
		m.log.Warn(ctx, "persisting restored session failed", "err", err)
	}
	m.set(Session{Status: StatusAuthenticated, Credential: string(token), Identity: &user})
	m.log.Info(ctx, "session restored", "user", user.Username)
}

// Login authenticates against the server. Success requires an application
// success AND a returned token AND a returned identity; anything else
// leaves the session unchanged and reports a user-facing message. A
// credential is never stored without its identity.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	env, err := m.gw.Do(ctx, api.Login, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		m.log.Warn(ctx, "login transport failure", "err", err)
		return Result{Message: "Login failed. Please try again."}
	}
	if !env.OK() {
		return Result{Message: env.FailureMessage("Invalid credentials")}
	}

	var payload loginPayload
	if err := env.Decode(&payload); err != nil || payload.Token == "" {
		return Result{Message: "Login failed. Please try again."}
	}
	if payload.User == nil || payload.User.Username == "" {
		m.log.Warn(ctx, "login response carried no identity")
		return Result{Message: "Login failed. Please try again."}
	}

	if err := m.persist(ctx, payload.Token, payload.User); err != nil {
		m.log.Error(ctx, "persisting session failed", "err", err)
		return Result{Message: "Login failed. Please try again."}
	}

	m.set(Session{Status: StatusAuthenticated, Credential: payload.Token, Identity: payload.User})
	m.log.Info(ctx, "logged in", "user", username)
	return Result{OK: true, Message: env.FailureMessage("Login successful")}
}

// Logout notifies the server on a best-effort basis, then unconditionally
// purges the stored credential and identity. Logout always succeeds locally.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.gw.Do(ctx, api.Logout, nil); err != nil {
		m.log.Debug(ctx, "logout call failed, ignoring", "err", err)
	}
	m.purge(ctx)
	m.log.Info(ctx, "logged out")
}

// Register creates a user on the server. It never mutates the session.
func (m *Manager) Register(ctx context.Context, username, password string) Result {
	env, err := m.gw.Do(ctx, api.Register, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return Result{Message: "Registration failed. Please try again."}
	}
	if !env.OK() {
		return Result{Message: env.FailureMessage("Registration failed")}
	}
	return Result{OK: true, Message: env.FailureMessage("Registration successful")}
}

// persist writes credential and identity in a single transaction so the
// keystore never holds one without the other.
func (m *Manager) persist(ctx context.Context, token string, user *models.User) error {
	return dbx.InTx(ctx, m.db, func(ctx context.Context, tx dbx.Querier) error {
		s := keystore.NewSQLiteStore(tx)
		if err := s.Set(ctx, keystore.KeyToken, []byte(token)); err != nil {
			return err
		}
		payload, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return s.Set(ctx, keystore.KeyUser, payload)
	})
}

func (m *Manager) purge(ctx context.Context) {
	if err := m.store().Clear(ctx); err != nil {
		m.log.Warn(ctx, "keystore purge failed", "err", err)
	}
	m.set(Session{Status: StatusUnauthenticated})
}

// tokenExpired reports whether token is a JWT whose exp claim lies before
// now. Tokens that do not parse as JWTs or carry no exp claim are not
// considered expired here; the server decides.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
