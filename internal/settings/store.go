package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/store"
)

// stateKey is the fixed app_state key holding the settings JSON blob.
const stateKey = "user_settings"

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	EmailTone            *model.Tone
	Theme                *model.Theme
	Language             *model.Language
	NotificationsEnabled *bool
	NotificationSound    *bool
	CheckIntervalSeconds *int
	IsConfigured         *bool
	FirstLaunch          *bool
}

// Store owns the process-wide user settings. All reads go through Get
// and all writes through Update/Reset; every successful write persists
// the full settings blob to the backing store.
type Store struct {
	mu      sync.Mutex
	db      store.Store
	logger  *slog.Logger
	current model.UserSettings
}

// New creates a settings store seeded with defaults and rehydrated from
// the persisted blob when one exists. A malformed blob is logged and
// ignored; defaults are kept.
func New(db store.Store, logger *slog.Logger) *Store {
	s := &Store{
		db:      db,
		logger:  logger,
		current: model.DefaultSettings(),
	}
	s.rehydrate()
	return s
}

// rehydrate overlays the persisted settings blob onto the defaults.
func (s *Store) rehydrate() {
	raw, ok, err := s.db.GetState(context.Background(), stateKey)
	if err != nil {
		s.logger.Warn("reading persisted settings failed, using defaults",
			"error", err)
		return
	}
	if !ok {
		return
	}

	// Unmarshal into the current defaults so fields absent from the
	// blob keep their default values.
	loaded := s.current
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.logger.Warn("persisted settings are malformed, using defaults",
			"error", err)
		return
	}

	loaded.CheckIntervalSeconds = model.ClampCheckInterval(loaded.CheckIntervalSeconds)
	s.current = loaded
}

// Get returns a copy of the current settings.
func (s *Store) Get() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies a partial update, persists the result, and returns the
// new settings. The check interval is clamped to its allowed range.
func (s *Store) Update(p Patch) model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.EmailTone != nil {
		s.current.EmailTone = *p.EmailTone
	}
	if p.Theme != nil {
		s.current.Theme = *p.Theme
	}
	if p.Language != nil {
		s.current.Language = *p.Language
	}
	if p.NotificationsEnabled != nil {
		s.current.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.NotificationSound != nil {
		s.current.NotificationSound = *p.NotificationSound
	}
	if p.CheckIntervalSeconds != nil {
		s.current.CheckIntervalSeconds = model.ClampCheckInterval(*p.CheckIntervalSeconds)
	}
	if p.IsConfigured != nil {
		s.current.IsConfigured = *p.IsConfigured
	}
	if p.FirstLaunch != nil {
		s.current.FirstLaunch = *p.FirstLaunch
	}

	s.persistLocked()
	return s.current
}

// Reset restores the documented defaults and drops the persisted blob;
// rehydration starts from defaults, so a missing blob and a defaults
// blob are equivalent.
func (s *Store) Reset() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = model.DefaultSettings()
	if err := s.db.DeleteState(context.Background(), stateKey); err != nil {
		s.logger.Error("clearing persisted settings failed", "error", err)
	}
	return s.current
}

// persistLocked writes the full settings blob. A persistence failure is
// logged, not propagated: the in-memory state is already updated and
// the next successful write rewrites the whole blob anyway.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Error("marshaling settings failed", "error", err)
		return
	}
	if err := s.db.SetState(context.Background(), stateKey, string(data)); err != nil {
		s.logger.Error("persisting settings failed", "error", err)
	}
}
