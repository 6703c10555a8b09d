package player

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"
)

// NewCookieJar creates a cookie jar that behaves like a browser's.
//
// Browsers treat http://localhost and loopback addresses as secure contexts, so the Secure refresh token
// cookie survives a local service. The stdlib jar does not; requests to loopback hosts are stored and looked
// up as https here.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &loopbackJar{jar: jar}, nil
}

type loopbackJar struct {
	jar http.CookieJar
}

func (j *loopbackJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(secureLoopback(u), cookies)
}

func (j *loopbackJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(secureLoopback(u))
}

func secureLoopback(u *url.URL) *url.URL {
	if u.Scheme != "http" || !isLoopback(u.Hostname()) {
		return u
	}
	secure := *u
	secure.Scheme = "https"
	return &secure
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
