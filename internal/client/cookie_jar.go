package client

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
)

// PersistentJar is an http.CookieJar whose cookies for the API origin
// can be flushed to a JSON file and restored on the next run, so a CLI
// invocation keeps the server session issued to a previous one.
type PersistentJar struct {
	inner   http.CookieJar
	baseURL *url.URL
	path    string
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func NewPersistentJar(baseURL, path string) (*PersistentJar, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	jar := &PersistentJar{inner: inner, baseURL: u, path: path}
	jar.load()
	return jar, nil
}

func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.inner.SetCookies(u, cookies)
}

func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return p.inner.Cookies(u)
}

// Save writes the current cookies for the API origin to disk. The file
// holds a live session credential, hence 0600.
func (p *PersistentJar) Save() error {
	cookies := p.inner.Cookies(p.baseURL)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o600)
}

// load restores cookies best-effort: a missing or corrupt file simply
// means starting logged out.
func (p *PersistentJar) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	p.inner.SetCookies(p.baseURL, cookies)
}
