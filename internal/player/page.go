package player

import "github.com/desertthunder/coverart/internal/spotify"

// RootPath is where the page navigates when it needs the user to log in again.
const RootPath = "/"

// Page is what the controller drives: the artwork image, the login control and navigation.
//
// Calls may come from scheduler goroutines.
type Page interface {
	// ShowArtwork displays url. snap is the response it came from.
	ShowArtwork(url string, snap *spotify.Snapshot)
	// HideArtwork hides the image. snap is the response that had no artwork.
	HideArtwork(snap *spotify.Snapshot)
	HideLogin()
	Navigate(path string)
}
