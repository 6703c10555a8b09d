package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coverart/internal/spotify"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtworkShown MsgKind = iota
	MsgArtworkHidden
	MsgLoginHidden
	MsgNavigated
	MsgStopped
	MsgOpenFailed
)

type artworkData struct {
	url  string
	snap *spotify.Snapshot
}

// artworkShownMsg is the constructor for [MsgArtworkShown]
func artworkShownMsg(url string, snap *spotify.Snapshot) Msg {
	return Msg{kind: MsgArtworkShown, data: artworkData{url: url, snap: snap}}
}

// artworkHiddenMsg is the constructor for [MsgArtworkHidden]
func artworkHiddenMsg(snap *spotify.Snapshot) Msg {
	return Msg{kind: MsgArtworkHidden, data: snap}
}

// loginHiddenMsg is the constructor for [MsgLoginHidden]
func loginHiddenMsg() Msg {
	return Msg{kind: MsgLoginHidden}
}

// navigatedMsg is the constructor for [MsgNavigated]
func navigatedMsg(path string) Msg {
	return Msg{kind: MsgNavigated, data: path}
}

// StoppedMsg tells the model the controller has returned, with its error if any.
func StoppedMsg(err error) Msg {
	return Msg{kind: MsgStopped, data: err}
}

// openFailedMsg is the constructor for [MsgOpenFailed]
func openFailedMsg(err error) Msg {
	return Msg{kind: MsgOpenFailed, data: err}
}
