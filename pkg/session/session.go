// Package session owns the authenticated identity for the client
// process: the bearer credential and user handle, their durable
// persistence, and teardown on logout or credential rejection.
//
// A Manager is either Anonymous or Authenticated. It becomes
// Authenticated only through a successful sign-in (or a restore of a
// previously persisted credential, which is trusted until the first
// remote call rejects it) and returns to Anonymous through SignOut or
// Invalidate. There is no refresh path: expiry is discovered reactively
// when a remote call fails.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/notemanager/notesync/pkg/client"
	"github.com/notemanager/notesync/pkg/keystore"
	"github.com/notemanager/notesync/pkg/models"
)

// Fixed keystore keys for the persisted credential and user handle.
const (
	keyToken = "token"
	keyEmail = "userEmail"
)

// Manager holds the single session for this process.
type Manager struct {
	api   *client.Client
	store *keystore.Store
	log   zerolog.Logger

	epoch atomic.Uint64

	mu      sync.Mutex
	token   string
	email   string
	onClear []func()
}

// New creates an Anonymous manager. Call Restore or SignIn to activate
// a session.
func New(api *client.Client, store *keystore.Store, log zerolog.Logger) *Manager {
	return &Manager{api: api, store: store, log: log}
}

// OnClear registers a hook invoked whenever the session is torn down,
// by SignOut or Invalidate. The note store registers its reset here so
// notes are never retained across sessions.
func (m *Manager) OnClear(fn func()) {
	m.mu.Lock()
	m.onClear = append(m.onClear, fn)
	m.mu.Unlock()
}

// Restore activates a session from a previously persisted credential,
// if one exists. The credential is not revalidated against the remote
// store; a stale one is discovered on the first failing request.
func (m *Manager) Restore(ctx context.Context) bool {
	token, ok, err := m.store.Get(ctx, keyToken)
	if err != nil || !ok {
		if err != nil {
			m.log.Warn().Err(err).Msg("could not read persisted credential")
		}
		return false
	}
	email, ok, err := m.store.Get(ctx, keyEmail)
	if err != nil || !ok {
		if err != nil {
			m.log.Warn().Err(err).Msg("could not read persisted user handle")
		}
		return false
	}

	m.activate(models.Session{Token: token, Email: email})
	return true
}

// SignIn authenticates against the remote auth API and, on success,
// persists the credential and activates the session.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	sess, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	if err := m.store.Put(ctx, keyToken, sess.Token); err != nil {
		m.log.Error().Err(err).Msg("could not persist credential")
	}
	if err := m.store.Put(ctx, keyEmail, sess.Email); err != nil {
		m.log.Error().Err(err).Msg("could not persist user handle")
	}

	m.activate(*sess)
	return nil
}

// SignUp creates the account and then signs in with the same
// credentials, so a successful signup always ends Authenticated.
func (m *Manager) SignUp(ctx context.Context, email, password string) error {
	if err := m.api.SignUp(ctx, email, password); err != nil {
		return err
	}
	return m.SignIn(ctx, email, password)
}

// SignOut clears the in-memory and durable session state
// unconditionally and fires the OnClear hooks.
func (m *Manager) SignOut() {
	m.clear("signed out")
}

// Invalidate tears the session down after a remote call reported the
// credential as invalid or expired. Identical in effect to SignOut;
// this is the only automatic teardown path.
func (m *Manager) Invalidate() {
	m.clear("credential rejected by remote store")
}

// Active reports whether a session is currently held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// Token returns the current bearer credential, or "" when Anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Email returns the current user handle, or "" when Anonymous.
func (m *Manager) Email() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

// Epoch returns a counter that increases on every session transition.
// Background completion handlers capture it at dispatch and drop their
// result if it changed, so a response from a previous session can never
// touch the current one.
func (m *Manager) Epoch() uint64 {
	return m.epoch.Load()
}

func (m *Manager) activate(sess models.Session) {
	m.mu.Lock()
	m.token = sess.Token
	m.email = sess.Email
	m.mu.Unlock()

	m.api.SetToken(sess.Token)
	m.epoch.Add(1)

	m.log.Info().Str("user", sess.Email).Msg("session active")
}

func (m *Manager) clear(reason string) {
	m.mu.Lock()
	email := m.email
	m.token = ""
	m.email = ""
	hooks := make([]func(), len(m.onClear))
	copy(hooks, m.onClear)
	m.mu.Unlock()

	m.api.SetToken("")
	m.epoch.Add(1)

	if err := m.store.Delete(context.Background(), keyToken, keyEmail); err != nil {
		m.log.Error().Err(err).Msg("could not clear persisted session")
	}

	for _, fn := range hooks {
		fn()
	}

	if email != "" {
		m.log.Info().Str("user", email).Msg("session cleared: " + reason)
	}
}
