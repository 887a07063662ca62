package settingsview

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/settings"
	"github.com/nhle/mail-assistant/internal/theme"
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the settings that were just persisted.
type SavedMsg struct {
	Settings model.UserSettings
}

// Model renders the settings form backed by the settings store.
type Model struct {
	store *settings.Store
	form  *huh.Form

	// Form field values (huh binds to these).
	formTone     string
	formTheme    string
	formLanguage string
	formNotify   bool
	formSound    bool
	formInterval string

	statusMsg     string
	width, height int
}

// New creates the settings view model.
func New(s *settings.Store, width, height int) Model {
	return Model{
		store:  s,
		width:  width,
		height: height,
	}
}

// Init builds the form from the current settings.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open seeds the form fields from the store and builds a fresh form.
func (m *Model) Open() tea.Cmd {
	cur := m.store.Get()
	m.formTone = string(cur.EmailTone)
	m.formTheme = string(cur.Theme)
	m.formLanguage = string(cur.Language)
	m.formNotify = cur.NotificationsEnabled
	m.formSound = cur.NotificationSound
	m.formInterval = strconv.Itoa(cur.CheckIntervalSeconds)
	m.statusMsg = ""
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reply Tone").
				Description("Default tone for generated replies").
				Options(
					huh.NewOption("Professional", string(model.ToneProfessional)),
					huh.NewOption("Formal", string(model.ToneFormal)),
					huh.NewOption("Friendly", string(model.ToneFriendly)),
					huh.NewOption("Casual", string(model.ToneCasual)),
				).
				Value(&m.formTone),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Light", string(model.ThemeLight)),
					huh.NewOption("Dark", string(model.ThemeDark)),
				).
				Value(&m.formTheme),
			huh.NewSelect[string]().
				Title("Language").
				Options(
					huh.NewOption("English", string(model.LanguageEnglish)),
					huh.NewOption("Spanish", string(model.LanguageSpanish)),
				).
				Value(&m.formLanguage),
			huh.NewConfirm().
				Title("Email Notifications").
				Description("Watch the inbox and show popups for new mail").
				Affirmative("On").
				Negative("Off").
				Value(&m.formNotify),
			huh.NewConfirm().
				Title("Notification Sound").
				Affirmative("On").
				Negative("Off").
				Value(&m.formSound),
			huh.NewInput().
				Title("Check Interval (seconds)").
				Description(fmt.Sprintf("Between %d and %d",
					model.MinCheckIntervalSec, model.MaxCheckIntervalSec)).
				Value(&m.formInterval).
				Validate(validateInterval),
		),
	).WithWidth(m.formWidth())
}

// Update drives the form and handles completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+r" {
		saved := m.store.Reset()
		m.statusMsg = "Settings restored to defaults"
		cmd := m.Open()
		return m, tea.Batch(cmd,
			func() tea.Msg { return SavedMsg{Settings: saved} })
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.save()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// save applies the form values to the store and closes the view.
func (m Model) save() (Model, tea.Cmd) {
	tone := model.Tone(m.formTone)
	th := model.Theme(m.formTheme)
	lang := model.Language(m.formLanguage)
	interval, err := strconv.Atoi(strings.TrimSpace(m.formInterval))
	if err != nil {
		interval = model.MinCheckIntervalSec
	}

	// Completing the form counts as configuring the app: the first-run
	// flags flip so the monitor can start on the next launch too.
	configured := true
	firstLaunch := false

	saved := m.store.Update(settings.Patch{
		EmailTone:            &tone,
		Theme:                &th,
		Language:             &lang,
		NotificationsEnabled: &m.formNotify,
		NotificationSound:    &m.formSound,
		CheckIntervalSeconds: &interval,
		IsConfigured:         &configured,
		FirstLaunch:          &firstLaunch,
	})

	return m, tea.Batch(
		func() tea.Msg { return SavedMsg{Settings: saved} },
		func() tea.Msg { return DoneMsg{} },
	)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("ctrl+r restore defaults | esc back"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("interval must be a number")
	}
	if n < model.MinCheckIntervalSec || n > model.MaxCheckIntervalSec {
		return fmt.Errorf("interval must be between %d and %d seconds",
			model.MinCheckIntervalSec, model.MaxCheckIntervalSec)
	}
	return nil
}
