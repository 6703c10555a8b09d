package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coverart/internal/spotify"
)

// Sender delivers messages to a running program. [tea.Program] implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramPage forwards page updates to a bubbletea program running a [Model].
type ProgramPage struct {
	program Sender
}

// NewProgramPage creates a [ProgramPage] for program.
func NewProgramPage(program Sender) *ProgramPage {
	return &ProgramPage{program: program}
}

func (p *ProgramPage) ShowArtwork(url string, snap *spotify.Snapshot) {
	p.program.Send(artworkShownMsg(url, snap))
}

func (p *ProgramPage) HideArtwork(snap *spotify.Snapshot) {
	p.program.Send(artworkHiddenMsg(snap))
}

func (p *ProgramPage) HideLogin() {
	p.program.Send(loginHiddenMsg())
}

func (p *ProgramPage) Navigate(path string) {
	p.program.Send(navigatedMsg(path))
}

// ConsolePage prints page updates as styled lines, one per change.
//
// Repeated polls of the same item print nothing.
type ConsolePage struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

// NewConsolePage creates a [ConsolePage] writing to w, or stdout when w is nil.
func NewConsolePage(w io.Writer) *ConsolePage {
	if w == nil {
		w = os.Stdout
	}
	return &ConsolePage{w: w}
}

func (p *ConsolePage) ShowArtwork(url string, snap *spotify.Snapshot) {
	line := styles.ok.Render("♪ ") + url
	if snap != nil && snap.Track != "" {
		line = styles.ok.Render("♪ "+trackLine(snap)) + "\n  " + url
	}
	p.print(line)
}

func (p *ConsolePage) HideArtwork(snap *spotify.Snapshot) {
	if snap != nil && snap.HasItem {
		p.print(styles.warn.Render("○ "+trackLine(snap)) + styles.help.Render(" (no artwork)"))
		return
	}
	p.print(styles.help.Render("○ nothing playing"))
}

func (p *ConsolePage) HideLogin() {
	p.print(styles.ok.Render("✓ Authorized"))
}

func (p *ConsolePage) Navigate(path string) {
	p.print(styles.err.Render(fmt.Sprintf("✗ Session expired, returning to %s. Log in again to continue.", path)))
}

func (p *ConsolePage) print(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.w, strings.TrimRight(line, "\n"))
}
