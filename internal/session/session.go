// Package session owns the authenticated/unauthenticated state of a
// storefront user and brokers the transitions between them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/api"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/kv"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/merge"
)

type State string

const (
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateResolving       State = "RESOLVING"
	StateAuthenticated   State = "AUTHENTICATED"
)

// ErrSessionInvalid marks a credential the core no longer accepts; the
// mirror has already been reset when this is returned.
var ErrSessionInvalid = errors.New("session credential invalid")

// Session pairs a credential with its resolved profile. A token without a
// user is the transient Resolving state, not an authenticated one.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

func (s *Session) State() State {
	switch {
	case s == nil || s.Token == "":
		return StateUnauthenticated
	case s.User == nil:
		return StateResolving
	}
	return StateAuthenticated
}

// Manager brokers login, registration, profile resolution and logout, and
// keeps the durable session mirror. The mirror is advisory cache: the
// remote profile fetch is authoritative and overwrites it.
type Manager struct {
	auth  api.AuthClient
	merge *merge.Protocol
	kv    kv.Store
	log   *logrus.Logger
	sfg   singleflight.Group
}

func NewManager(auth api.AuthClient, mergeProto *merge.Protocol, store kv.Store, log *logrus.Logger) *Manager {
	return &Manager{
		auth:  auth,
		merge: mergeProto,
		kv:    store,
		log:   log,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Login authenticates against the core. On success the credential and
// profile are mirrored first, then the guest cart merge runs; a merge
// failure is logged and discarded so it can never fail the login itself.
func (m *Manager) Login(ctx context.Context, guestID, phone, password string) (*Session, error) {
	token, user, err := m.auth.Login(ctx, phone, password)
	if err != nil {
		return nil, err
	}
	return m.established(ctx, guestID, token, user), nil
}

// Register is the same contract as Login; the role is fixed at creation.
func (m *Manager) Register(ctx context.Context, guestID, phone, password string, role domain.Role) (*Session, error) {
	token, user, err := m.auth.Register(ctx, phone, password, role)
	if err != nil {
		return nil, err
	}
	return m.established(ctx, guestID, token, user), nil
}

func (m *Manager) established(ctx context.Context, guestID, token string, user *domain.User) *Session {
	sess := &Session{Token: token, User: user}
	m.persist(ctx, sess)

	// credential is stored and the profile resolved; only now may the
	// guest cart merge run
	if err := m.merge.Run(ctx, guestID, token); err != nil {
		m.log.WithError(err).Warn("guest cart merge failed, leaving guest cart for retry on next login")
	}
	return sess
}

// Resolve is the authoritative profile fetch for a stored credential.
// Concurrent resolutions of the same token are deduplicated. A credential
// the core rejects hard-resets the mirror and reports ErrSessionInvalid.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	v, err, _ := m.sfg.Do(token, func() (interface{}, error) {
		user, err := m.auth.Profile(ctx, token)
		if err != nil {
			var coreErr *api.CoreError
			if errors.Is(err, api.ErrUnauthorized) || errors.As(err, &coreErr) {
				m.reset(ctx, token)
				return nil, ErrSessionInvalid
			}
			return nil, err
		}

		sess := &Session{Token: token, User: user}
		m.persist(ctx, sess)
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Cached returns the mirrored session without touching the network. Absent
// or corrupt mirrors come back as a bare Resolving session.
func (m *Manager) Cached(ctx context.Context, token string) *Session {
	data, err := m.kv.Get(ctx, sessionKey(token))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			m.log.WithError(err).Warn("session mirror read failed")
		}
		return &Session{Token: token}
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		m.log.WithError(err).Warn("session mirror corrupt, ignoring")
		return &Session{Token: token}
	}
	sess.Token = token
	return &sess
}

// Logout clears the mirror. The guest cart is untouched: a fresh guest
// cart simply starts accumulating.
func (m *Manager) Logout(ctx context.Context, token string) {
	m.reset(ctx, token)
}

func (m *Manager) persist(ctx context.Context, sess *Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		m.log.WithError(err).Warn("session mirror marshal failed")
		return
	}
	if err := m.kv.Set(ctx, sessionKey(sess.Token), data); err != nil {
		m.log.WithError(err).Warn("session mirror persist failed, continuing")
	}
}

func (m *Manager) reset(ctx context.Context, token string) {
	if err := m.kv.Delete(ctx, sessionKey(token)); err != nil {
		m.log.WithError(err).Warn("session mirror reset failed")
	}
}
