package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func song() *spotify.Snapshot {
	return &spotify.Snapshot{
		Playing: true,
		HasItem: true,
		Track:   "Song",
		Artists: []string{"Artist"},
		Album:   "Album",
		Images:  []spotify.Image{{URL: "https://i.scdn.co/image/abc"}},
	}
}

func TestModel(t *testing.T) {
	t.Run("Starts At Login", func(t *testing.T) {
		m := NewModel("http://127.0.0.1:3000/login", func(string) error { return nil })
		if m.view != LoginView {
			t.Errorf("expected LoginView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "log in") {
			t.Errorf("expected login prompt, got %q", m.View())
		}
	})

	t.Run("Page Flow", func(t *testing.T) {
		sender := &recordingSender{}
		page := NewProgramPage(sender)
		m := NewModel("", func(string) error { return nil })

		page.HideLogin()
		page.ShowArtwork("https://i.scdn.co/image/abc", song())
		page.HideArtwork(&spotify.Snapshot{})
		page.Navigate("/")

		want := []ViewState{IdleView, ArtworkView, IdleView, ReauthView}
		for i, msg := range sender.msgs {
			m.Update(msg)
			if m.view != want[i] {
				t.Errorf("after message %d expected view %v, got %v", i, want[i], m.view)
			}
		}
	})

	t.Run("Renders Artwork", func(t *testing.T) {
		m := NewModel("", nil)
		m.Update(artworkShownMsg("https://i.scdn.co/image/abc", song()))

		out := m.View()
		for _, want := range []string{"Song", "Artist", "Album", "https://i.scdn.co/image/abc"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in view %q", want, out)
			}
		}
	})

	t.Run("Open Artwork", func(t *testing.T) {
		var opened string
		m := NewModel("", func(u string) error { opened = u; return nil })

		if _, cmd := m.Update(keyPress("o")); cmd != nil {
			t.Error("expected no command without artwork")
		}

		m.Update(artworkShownMsg("https://i.scdn.co/image/abc", song()))
		_, cmd := m.Update(keyPress("o"))
		if cmd == nil {
			t.Fatal("expected open command")
		}
		if msg := cmd(); msg != nil {
			t.Errorf("expected no follow-up message, got %v", msg)
		}
		if opened != "https://i.scdn.co/image/abc" {
			t.Errorf("expected artwork URL opened, got %q", opened)
		}
	})

	t.Run("Open Failure Is Shown", func(t *testing.T) {
		m := NewModel("http://127.0.0.1:3000/login", func(string) error { return errors.New("no browser") })

		_, cmd := m.Update(keyPress("l"))
		if cmd == nil {
			t.Fatal("expected login command")
		}
		m.Update(cmd())

		if m.Err() == nil || !strings.Contains(m.View(), "no browser") {
			t.Errorf("expected open failure in view, got %q", m.View())
		}
	})

	t.Run("Login Key Ignored While Watching", func(t *testing.T) {
		m := NewModel("http://127.0.0.1:3000/login", func(string) error { return nil })
		m.Update(loginHiddenMsg())

		if _, cmd := m.Update(keyPress("l")); cmd != nil {
			t.Error("expected login key to do nothing once authorized")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := NewModel("", nil)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("Stopped", func(t *testing.T) {
		m := NewModel("", nil)
		_, cmd := m.Update(StoppedMsg(shared.ErrReauthRequired))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if m.Err() != nil {
			t.Errorf("re-auth is not an error to display, got %v", m.Err())
		}

		m.Update(StoppedMsg(errors.New("boom")))
		if m.Err() == nil {
			t.Error("expected error to be kept")
		}
	})

	t.Run("Toggle Help", func(t *testing.T) {
		m := NewModel("", nil)
		m.Update(keyPress("?"))
		if !m.help.ShowAll {
			t.Error("expected full help")
		}
	})
}
