package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/coverart/internal/shared"
	spotifyapi "github.com/zmb3/spotify/v2"
)

// maxRetryAfterSeconds is the largest delay a [time.Duration] can hold.
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// Image is one resolution of an album cover.
type Image = spotifyapi.Image

// Snapshot is the part of the currently playing response the page displays.
type Snapshot struct {
	Playing bool
	// HasItem is false when nothing is playing (including 204 No Content).
	HasItem bool
	Track   string
	Artists []string
	Album   string
	Images  []Image
}

// ArtworkURL returns the first listed album image, conventionally the largest.
func (s *Snapshot) ArtworkURL() (string, bool) {
	if s == nil || !s.HasItem || len(s.Images) == 0 || s.Images[0].URL == "" {
		return "", false
	}
	return s.Images[0].URL, true
}

// Player reads playback state from the Web API with a caller-supplied access token.
type Player struct {
	baseURL    string
	httpClient *http.Client
}

// NewPlayer creates a Player for the Web API rooted at baseURL.
func NewPlayer(baseURL string, client *http.Client) *Player {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Player{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// CurrentlyPlaying fetches the user's currently playing item.
//
// A 2xx response without an item yields a Snapshot with HasItem false and no error.
func (p *Player) CurrentlyPlaying(ctx context.Context, accessToken string) (*Snapshot, error) {
	if accessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	rec := newResponseRecorder(p.httpClient.Transport, accessToken)
	client := spotifyapi.New(
		&http.Client{Transport: rec, Timeout: p.httpClient.Timeout},
		spotifyapi.WithBaseURL(p.baseURL+"/"),
	)

	cp, err := client.PlayerCurrentlyPlaying(ctx)

	switch {
	case rec.readErr != nil:
		return nil, fmt.Errorf("failed to read response: %w", rec.readErr)
	case rec.status == 0:
		return nil, fmt.Errorf("request failed: %w", err)
	case rec.status >= 200 && rec.status < 300:
		if err != nil {
			if len(bytes.TrimSpace(rec.body)) == 0 {
				return &Snapshot{}, nil
			}
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return snapshotFrom(cp), nil
	case rec.status == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenExpired, apiErrorMessage(rec.status, rec.body))
	case rec.status == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: ParseRetryAfter(rec.retryAfter)}
	default:
		return nil, &StatusError{StatusCode: rec.status, Message: apiErrorMessage(rec.status, rec.body)}
	}
}

func snapshotFrom(cp *spotifyapi.CurrentlyPlaying) *Snapshot {
	snap := &Snapshot{}
	if cp == nil {
		return snap
	}

	snap.Playing = cp.Playing
	if cp.Item == nil {
		return snap
	}

	snap.HasItem = true
	snap.Track = cp.Item.Name
	snap.Album = cp.Item.Album.Name
	snap.Images = cp.Item.Album.Images
	for _, a := range cp.Item.Artists {
		snap.Artists = append(snap.Artists, a.Name)
	}
	return snap
}

// responseRecorder authorizes one Web API call and keeps what the client library does not expose:
// the status, the Retry-After header and the raw body.
type responseRecorder struct {
	base       http.RoundTripper
	token      string
	status     int
	retryAfter string
	body       []byte
	readErr    error
}

func newResponseRecorder(base http.RoundTripper, token string) *responseRecorder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &responseRecorder{base: base, token: token}
}

func (r *responseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.readErr = err
		return nil, err
	}

	r.status = resp.StatusCode
	r.retryAfter = resp.Header.Get("Retry-After")
	r.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// ParseRetryAfter converts a Retry-After value in seconds to a duration.
//
// Only plain digits are accepted. Anything else, and values too large for a [time.Duration],
// yield [DefaultRetryAfter].
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" || strings.TrimLeft(v, "0123456789") != "" {
		return DefaultRetryAfter
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs > maxRetryAfterSeconds {
		return DefaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
