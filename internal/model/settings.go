package model

// Tone is the stylistic parameter passed to reply generation.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
)

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Language selects the UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// Check interval bounds in seconds. Values outside this range are
// clamped by the settings store before they are applied or persisted.
const (
	MinCheckIntervalSec = 30
	MaxCheckIntervalSec = 300
)

// UserSettings holds the user-facing preferences. A single instance is
// owned by the settings store, persisted as one JSON blob, and
// rehydrated at startup.
type UserSettings struct {
	EmailTone            Tone     `json:"emailTone"`
	Theme                Theme    `json:"theme"`
	Language             Language `json:"language"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	NotificationSound    bool     `json:"notificationSound"`
	CheckIntervalSeconds int      `json:"checkIntervalSeconds"`
	IsConfigured         bool     `json:"isConfigured"`
	FirstLaunch          bool     `json:"firstLaunch"`
}

// DefaultSettings returns the documented defaults applied on first
// launch and by reset.
func DefaultSettings() UserSettings {
	return UserSettings{
		EmailTone:            ToneProfessional,
		Theme:                ThemeLight,
		Language:             LanguageEnglish,
		NotificationsEnabled: true,
		NotificationSound:    true,
		CheckIntervalSeconds: 60,
		IsConfigured:         false,
		FirstLaunch:          true,
	}
}

// ClampCheckInterval bounds an interval to the allowed range.
func ClampCheckInterval(seconds int) int {
	if seconds < MinCheckIntervalSec {
		return MinCheckIntervalSec
	}
	if seconds > MaxCheckIntervalSec {
		return MaxCheckIntervalSec
	}
	return seconds
}
