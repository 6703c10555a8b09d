package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	IdleView
	ArtworkView
	ReauthView
)

// Opener opens a URL outside the terminal, usually [shared.OpenBrowser].
type Opener func(url string) error

// Model is the terminal rendition of the artwork page.
type Model struct {
	view     ViewState
	loginURL string
	artURL   string
	snap     *spotify.Snapshot
	err      error
	open     Opener
	width    int
	help     help.Model
	keys     keyMap
}

// NewModel creates a model showing the login prompt. loginURL is opened by the login key.
func NewModel(loginURL string, open Opener) *Model {
	if open == nil {
		open = shared.OpenBrowser
	}
	return &Model{
		view:     LoginView,
		loginURL: loginURL,
		open:     open,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init implements [tea.Model]; the controller drives every update.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtworkShown:
		d := msg.data.(artworkData)
		m.view, m.artURL, m.snap = ArtworkView, d.url, d.snap
	case MsgArtworkHidden:
		m.view, m.artURL = IdleView, ""
		m.snap, _ = msg.data.(*spotify.Snapshot)
	case MsgLoginHidden:
		if m.view == LoginView {
			m.view = IdleView
		}
	case MsgNavigated:
		m.view, m.artURL, m.snap = ReauthView, "", nil
	case MsgOpenFailed:
		m.err, _ = msg.data.(error)
	case MsgStopped:
		if err, _ := msg.data.(error); err != nil && !errors.Is(err, shared.ErrReauthRequired) {
			m.err = err
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.open):
		if m.artURL != "" {
			return m, m.openURL(m.artURL)
		}
	case key.Matches(msg, m.keys.login):
		if (m.view == LoginView || m.view == ReauthView) && m.loginURL != "" {
			return m, m.openURL(m.loginURL)
		}
	}
	return m, nil
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openFailedMsg(fmt.Errorf("could not open %s: %w", url, err))
		}
		return nil
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case IdleView:
		body = m.renderIdle()
	case ArtworkView:
		body = m.renderArtwork()
	case ReauthView:
		body = m.renderReauth()
	}

	if m.err != nil {
		body += "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return fmt.Sprintf("%s\n\n%s\n", body, m.help.View(m.keys))
}

// Err returns the last error the model displayed.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Now Playing")
	if m.loginURL == "" {
		return title + "\nWaiting for authorization..."
	}
	return title + "\nPress l to log in with Spotify\n" + styles.help.Render(m.loginURL)
}

func (m *Model) renderIdle() string {
	title := styles.title.Render("Now Playing")
	if m.snap != nil && m.snap.HasItem {
		return title + "\n" + trackLine(m.snap) + "\n" + styles.warn.Render("No artwork for this item")
	}
	return title + "\n" + styles.help.Render("Nothing playing")
}

func (m *Model) renderArtwork() string {
	snap := m.snap
	if snap == nil {
		snap = &spotify.Snapshot{}
	}

	lines := []string{styles.ok.Render("♪ " + snap.Track)}
	if len(snap.Artists) > 0 {
		lines = append(lines, strings.Join(snap.Artists, ", "))
	}
	if snap.Album != "" {
		lines = append(lines, styles.help.Render(snap.Album))
	}
	lines = append(lines, "", m.artURL)

	frame := styles.frame
	if m.width > 4 {
		frame = frame.MaxWidth(m.width)
	}
	return styles.title.Render("Now Playing") + "\n" + frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderReauth() string {
	return styles.err.Render("Session expired") + "\nLog in again to keep watching. Press l to log in."
}

func trackLine(s *spotify.Snapshot) string {
	if len(s.Artists) == 0 {
		return s.Track
	}
	return fmt.Sprintf("%s - %s", strings.Join(s.Artists, ", "), s.Track)
}
