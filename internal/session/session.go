// Package session keeps server-side login state: a store mapping session
// ids to identities, and a signed cookie codec carrying the id.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"regenx/internal/models"

	"github.com/google/uuid"
)

// Store associates a session id with the identity of a logged-in user.
type Store interface {
	Set(ctx context.Context, sid string, id models.Identity) error
	// Get returns (nil, nil) for unknown or expired sessions.
	Get(ctx context.Context, sid string) (*models.Identity, error)
	Destroy(ctx context.Context, sid string) error
}

// ErrNoSession is returned by Resolve when the cookie does not map to a live session.
var ErrNoSession = errors.New("no session")

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store Store
	codec *CookieCodec
}

func NewManager(store Store, codec *CookieCodec) *Manager {
	return &Manager{store: store, codec: codec}
}

// Issue creates a new session for id and returns the signed cookie value.
func (m *Manager) Issue(ctx context.Context, id models.Identity) (string, error) {
	sid := uuid.NewString()
	if err := m.store.Set(ctx, sid, id); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	value, err := m.codec.Encode(sid)
	if err != nil {
		_ = m.store.Destroy(ctx, sid)
		return "", err
	}
	return value, nil
}

// Resolve maps a cookie value to the identity it was issued for.
func (m *Manager) Resolve(ctx context.Context, cookie string) (*models.Identity, error) {
	if cookie == "" {
		return nil, ErrNoSession
	}
	sid, err := m.codec.Decode(cookie)
	if err != nil {
		return nil, ErrNoSession
	}
	id, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if id == nil {
		return nil, ErrNoSession
	}
	return id, nil
}

// Revoke destroys the session behind cookie. Unknown or tampered cookies are ignored.
func (m *Manager) Revoke(ctx context.Context, cookie string) error {
	sid, err := m.codec.Decode(cookie)
	if err != nil {
		return nil
	}
	return m.store.Destroy(ctx, sid)
}

// TTL is how long issued cookies stay valid.
func (m *Manager) TTL() time.Duration {
	return m.codec.ttl
}
