// Package ui renders the artwork page in a terminal.
//
// [Model] follows bubbletea's Elm architecture: a page controller drives it through [ProgramPage], which turns
// page calls into the [Msg] union, and keys let the user open the artwork (o) or the login page (l) in a browser.
//
// [ConsolePage] is the plain alternative for non-interactive output: one styled line per change.
package ui
