package inbox

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-assistant/internal/keys"
	"github.com/nhle/mail-assistant/internal/model"
	"github.com/nhle/mail-assistant/internal/preview"
	"github.com/nhle/mail-assistant/internal/theme"
)

// listLimit caps how many inbox entries are fetched per load.
const listLimit = 50

// Lister is the backend surface the inbox needs.
type Lister interface {
	ListEmails(ctx context.Context, limit int) ([]model.Email, error)
}

// EmailsLoadedMsg carries the result of an inbox load.
type EmailsLoadedMsg struct {
	Emails []model.Email
	Err    error
}

// SelectedEmailMsg signals that the user opened an email to reply to it.
type SelectedEmailMsg struct {
	Email model.Email
}

// Model is the inbox list view.
type Model struct {
	backend  Lister
	keys     *keys.KeyMap
	emails   []model.Email
	selected int
	loading  bool
	loadErr  error
	width    int
	height   int
}

// New creates an inbox list model.
func New(backend Lister, k *keys.KeyMap, width, height int) Model {
	return Model{
		backend: backend,
		keys:    k,
		loading: true,
		width:   width,
		height:  height,
	}
}

// Init triggers the initial inbox load.
func (m Model) Init() tea.Cmd {
	return m.LoadEmails()
}

// LoadEmails returns a command that fetches unread mail from the backend.
func (m Model) LoadEmails() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		emails, err := backend.ListEmails(context.Background(), listLimit)
		return EmailsLoadedMsg{Emails: emails, Err: err}
	}
}

// Update handles messages for the inbox list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.emails = msg.Emails
			if m.selected >= len(m.emails) {
				m.selected = 0
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "j", msg.String() == "down":
			if m.selected < len(m.emails)-1 {
				m.selected++
			}
		case msg.String() == "k", msg.String() == "up":
			if m.selected > 0 {
				m.selected--
			}
		case msg.String() == "enter":
			if email, ok := m.SelectedEmail(); ok {
				return m, func() tea.Msg {
					return SelectedEmailMsg{Email: email}
				}
			}
		}
	}

	return m, nil
}

// SelectedEmail returns the currently highlighted email, if any.
func (m Model) SelectedEmail() (model.Email, bool) {
	if m.selected < 0 || m.selected >= len(m.emails) {
		return model.Email{}, false
	}
	return m.emails[m.selected], true
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the inbox list.
func (m Model) View() string {
	if m.loading {
		return theme.HelpStyle.Render("Loading inbox...")
	}
	if m.loadErr != nil {
		return theme.ErrorStyle.Render(
			fmt.Sprintf("Could not load inbox: %v", m.loadErr),
		) + "\n" + theme.HelpStyle.Render("Press r to retry.")
	}
	if len(m.emails) == 0 {
		return theme.HelpStyle.Render("Inbox is empty. Nothing needs a reply.")
	}

	var b strings.Builder
	visible := m.height
	if visible <= 0 {
		visible = len(m.emails)
	}

	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}

	for i := start; i < len(m.emails) && i < start+visible; i++ {
		b.WriteString(m.renderItem(i))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderItem renders a single inbox row.
func (m Model) renderItem(i int) string {
	email := m.emails[i]

	marker := " "
	if !email.IsRead {
		marker = "●"
	}

	date := email.Date.Format("Jan 02 15:04")
	line := fmt.Sprintf("%s %s  %s  %s",
		marker, date, truncatePad(email.From, 24), email.Subject,
	)

	bodyPreview := preview.Text(email.Body, email.HTMLBody, 60)
	if bodyPreview != "" {
		line += "  | " + bodyPreview
	}

	line = clampLine(line, m.width-2)

	if i == m.selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// truncatePad cuts or pads s to exactly width runes.
func truncatePad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// clampLine trims a rendered line to the available width.
func clampLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s
}
