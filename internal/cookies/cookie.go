package cookies

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Cookie is a cookie kept between runs.
type Cookie struct {
	Domain string `json:"domain"`
	Path   string `json:"path"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	// HostOnly cookies were set without a Domain attribute and are only sent
	// back to the exact host.
	HostOnly bool `json:"host_only"`
	Secure   bool `json:"secure"`
	HTTPOnly bool `json:"http_only"`
	// Expires is zero for session cookies.
	Expires   time.Time `json:"expires,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the cookie is past its expiry at now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// HTTPCookie converts c back into a cookie the standard jar accepts.
func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		Expires:  c.Expires,
	}
	if !c.HostOnly {
		hc.Domain = c.Domain
	}
	return hc
}

// SetBy reports whether a response from u may set c. The host must lie
// within c.Domain, and a Domain attribute naming a public suffix or a
// different IP address is refused, as net/http/cookiejar does.
func (c Cookie) SetBy(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "" || c.Domain == "":
		return false
	case c.Domain == host:
		return true
	case c.HostOnly || net.ParseIP(host) != nil:
		return false
	case !strings.HasSuffix(host, "."+c.Domain):
		return false
	}
	return !isPublicSuffix(c.Domain)
}

func isPublicSuffix(domain string) bool {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return suffix == domain
}

// URL returns an address the cookie would be sent to.
func (c Cookie) URL() *url.URL {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: c.Domain, Path: c.Path}
}

// FromHTTP records hc as set by a response from u.
func FromHTTP(u *url.URL, hc *http.Cookie, now time.Time) Cookie {
	c := Cookie{
		Domain:    strings.TrimPrefix(strings.ToLower(hc.Domain), "."),
		Path:      hc.Path,
		Name:      hc.Name,
		Value:     hc.Value,
		Secure:    hc.Secure,
		HTTPOnly:  hc.HttpOnly,
		Expires:   hc.Expires,
		UpdatedAt: now,
	}
	if c.Domain == "" {
		c.Domain = strings.ToLower(u.Hostname())
		c.HostOnly = true
	}
	if c.Path == "" || c.Path[0] != '/' {
		c.Path = defaultPath(u.Path)
	}

	switch {
	case hc.MaxAge > 0:
		c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
	case hc.MaxAge < 0:
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// defaultPath is the directory of the request path, per RFC 6265 5.1.4.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
