package consent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
)

// Key is the storage key holding the saved preferences.
const Key = "cookie-consent"

// Preferences are the cookie categories the user agreed to. Necessary is
// always on.
type Preferences struct {
	Necessary  bool `json:"necessary"`
	Functional bool `json:"functional"`
	Analytics  bool `json:"analytics"`
	Marketing  bool `json:"marketing"`
}

func Minimal() Preferences {
	return Preferences{Necessary: true}
}

func All() Preferences {
	return Preferences{Necessary: true, Functional: true, Analytics: true, Marketing: true}
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load returns the saved preferences and whether the user has chosen yet.
// Without a saved choice it returns Minimal.
func (m *Manager) Load(ctx context.Context) (Preferences, bool, error) {
	raw, ok, err := m.store.Get(ctx, Key)
	if err != nil {
		return Minimal(), false, err
	}
	if !ok {
		return Minimal(), false, nil
	}

	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		slog.Warn("consent: ignoring unreadable preferences", "error", err)
		return Minimal(), false, nil
	}
	p.Necessary = true
	return p, true, nil
}

func (m *Manager) Save(ctx context.Context, p Preferences) (Preferences, error) {
	p.Necessary = true
	raw, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("encode preferences: %w", err)
	}
	if err := m.store.Set(ctx, Key, string(raw)); err != nil {
		return p, err
	}
	return p, nil
}

func (m *Manager) AcceptAll(ctx context.Context) (Preferences, error) {
	return m.Save(ctx, All())
}

func (m *Manager) RejectAll(ctx context.Context) (Preferences, error) {
	return m.Save(ctx, Minimal())
}
