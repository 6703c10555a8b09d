package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
)

// PollIntervalMillis is how often the page asks for the currently playing item.
const PollIntervalMillis = 5000

const (
	LoginPath  = "/login"
	ScriptPath = "/script.js"
)

//go:embed static/index.html static/script.js
var static embed.FS

var indexTemplate = template.Must(template.ParseFS(static, "static/index.html"))

// pageData holds the public values the page script reads from the document.
// It must never carry the client secret.
type pageData struct {
	LoginPath    string
	ScriptPath   string
	ExchangePath string
	RefreshPath  string
	APIURL       string
	PollInterval int
}

// PageHandler serves the artwork page, its script and the login redirect.
type PageHandler struct {
	config *shared.Config
	script []byte
}

// NewPageHandler creates a [PageHandler] for config.
func NewPageHandler(config *shared.Config) *PageHandler {
	script, err := static.ReadFile("static/script.js")
	if err != nil {
		panic("embedded script missing: " + err.Error())
	}
	return &PageHandler{config: config, script: script}
}

// Routes returns the HTTP routes this handler serves.
func (h *PageHandler) Routes() []string {
	return []string{"/{$}", ScriptPath, LoginPath}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	switch r.URL.Path {
	case LoginPath:
		h.Login(w, r)
	case ScriptPath:
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Write(h.script)
	default:
		h.Index(w, r)
	}
}

// Index renders the page. The authorization callback lands here too, with the code in the query string.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		LoginPath:    LoginPath,
		ScriptPath:   ScriptPath,
		ExchangePath: ExchangePath,
		RefreshPath:  RefreshPath,
		APIURL:       h.apiURL(),
		PollInterval: PollIntervalMillis,
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		log.FromContext(r.Context()).Error("failed to render page", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Write(buf.Bytes())
}

// Login redirects the browser to the authorization page.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds := h.config.Credentials.Spotify
	target := spotify.AuthorizeURL(h.config.Spotify.AccountsURL, creds.ClientID, creds.RedirectURI)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *PageHandler) apiURL() string {
	if h.config.Spotify.APIURL == "" {
		return spotify.DefaultAPIURL
	}
	return h.config.Spotify.APIURL
}
