package rainclassroom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"lessonvault/internal/catalog"
	"lessonvault/internal/fileutil"
)

const sessionCookie = "sessionid"

// CookieSession authenticates with an existing session token.
type CookieSession struct {
	Host    string
	Token   string
	Timeout time.Duration
}

var _ catalog.SessionProvider = CookieSession{}

// Authenticate builds an HTTP client whose cookie jar carries the token.
func (s CookieSession) Authenticate(context.Context) (catalog.Session, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return catalog.Session{}, errors.New("session token required")
	}
	client, origin, err := newJarClient(s.Host, s.Timeout)
	if err != nil {
		return catalog.Session{}, err
	}
	client.Jar.SetCookies(origin, []*http.Cookie{{Name: sessionCookie, Value: token, Path: "/"}})
	return catalog.Session{Client: client, Token: token}, nil
}

func newJarClient(host string, timeout time.Duration) (*http.Client, *url.URL, error) {
	base, err := BaseURL(host)
	if err != nil {
		return nil, nil, err
	}
	origin, err := url.Parse(base)
	if err != nil {
		return nil, nil, fmt.Errorf("parse host: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Jar: jar, Timeout: timeout}, origin, nil
}

// LoadToken reads a token saved by SaveToken. A missing file yields "".
func LoadToken(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken persists token with owner-only permissions.
func SaveToken(path, token string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("session file path required")
	}
	if err := fileutil.WriteFileAtomic(path, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ResolveToken picks the first non-empty token from an explicit value (flag,
// config, or environment) and the session file.
func ResolveToken(explicit, sessionFile string) (string, error) {
	if token := strings.TrimSpace(explicit); token != "" {
		return token, nil
	}
	return LoadToken(sessionFile)
}
