package cookies

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar is an http.CookieJar that writes every change through to a Store.
type Jar struct {
	mu    sync.Mutex
	jar   *cookiejar.Jar
	store Store
	now   func() time.Time
	errs  []error
}

// NewJar creates a jar seeded with the unexpired cookies in store.
func NewJar(ctx context.Context, store Store) (*Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	saved, err := store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	for _, c := range saved {
		if !c.HostOnly && isPublicSuffix(c.Domain) {
			continue
		}
		jar.SetCookies(c.URL(), []*http.Cookie{c.HTTPCookie()})
	}

	return &Jar{jar: jar, store: store, now: time.Now}, nil
}

// SetCookies implements http.CookieJar. Cookies the response host may not
// set are dropped before they reach the store.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	ctx := context.Background()
	now := j.now()
	for _, hc := range cookies {
		c := FromHTTP(u, hc, now)
		if !c.SetBy(u) {
			continue
		}
		if c.Expired(now) {
			j.fail(j.store.Delete(ctx, c.Domain, c.Path, c.Name))
			continue
		}
		j.fail(j.store.Save(ctx, c))
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Err returns the persistence failures seen so far. SetCookies cannot report
// them itself.
func (j *Jar) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return errors.Join(j.errs...)
}

func (j *Jar) fail(err error) {
	if err != nil {
		j.errs = append(j.errs, err)
	}
}
