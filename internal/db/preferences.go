package db

import (
	"log/slog"
	"strconv"
)

// Preference keys used by the UI
const (
	KeyProjectTab          = "project-tab/selected-tab"
	KeyMeetingUpcomingOnly = "project-tab/meeting-upcoming-only"
	KeyActionOpenOnly      = "project-tab/action-open-only"
	KeyLastProjectID       = "app/last-project-id"
)

// Store is the persistence behind Preferences
type Store interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
}

// Preferences persists small UI choices across sessions. Read failures fall
// back to the caller's default; write failures are logged and dropped,
// since losing a preference never blocks the UI.
type Preferences struct {
	store  Store
	logger *slog.Logger
}

// NewPreferences wraps a settings store
func NewPreferences(store Store, logger *slog.Logger) *Preferences {
	return &Preferences{store: store, logger: logger}
}

// String returns the stored value for key, or def when unset
func (p *Preferences) String(key, def string) string {
	value, ok, err := p.store.GetSetting(key)
	if err != nil {
		p.logger.Warn("read preference", "key", key, "err", err)
		return def
	}
	if !ok {
		return def
	}
	return value
}

// Bool returns the stored boolean for key, or def when unset or malformed
func (p *Preferences) Bool(key string, def bool) bool {
	value := p.String(key, "")
	if value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

// SetString stores value under key
func (p *Preferences) SetString(key, value string) {
	if err := p.store.SetSetting(key, value); err != nil {
		p.logger.Warn("write preference", "key", key, "err", err)
	}
}

// SetBool stores a boolean under key
func (p *Preferences) SetBool(key string, value bool) {
	p.SetString(key, strconv.FormatBool(value))
}
