// Package urlutils parses and validates the repository locations testid
// accepts, and formats them for authenticated or logged use.
//
// Accepted forms:
//   - https://host/owner/repo(.git), http://host/path
//   - ssh://[user@]host[:port]/path, git://host/path
//   - user@host:path (scp-like ssh)
//   - file:///abs/path and plain local paths
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrEmptyURL indicates that no repository location was provided
	ErrEmptyURL = errors.New("empty repository URL")

	// ErrUnsupportedScheme indicates a scheme git cannot clone from
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrInvalidHost indicates that a remote URL has no host
	ErrInvalidHost = errors.New("invalid repository host")

	// ErrInvalidPath indicates that the URL path does not name a repository
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrEmptyToken indicates that an empty token was provided
	ErrEmptyToken = errors.New("empty token provided")

	scpLikeRegex = regexp.MustCompile(`^(?:([^@/\s]+)@)?([a-zA-Z0-9][a-zA-Z0-9.-]*):([^/\\].*|/.+)$`)

	supportedSchemes = map[string]bool{
		"https": true,
		"http":  true,
		"ssh":   true,
		"git":   true,
		"file":  true,
	}
)

// RepositoryURL is a parsed repository location.
type RepositoryURL struct {
	Raw    string
	Scheme string // https, http, ssh, git or file
	Host   string // empty for local repositories
	Path   string

	parsed *url.URL // nil for scp-like and local path forms
}

// IsHTTP reports whether the repository is fetched over http or https and
// can therefore carry a token.
func (r *RepositoryURL) IsHTTP() bool {
	return r.Scheme == "https" || r.Scheme == "http"
}

// IsLocal reports whether the repository lives on the local filesystem.
func (r *RepositoryURL) IsLocal() bool {
	return r.Scheme == "file"
}

// URL returns a copy of the parsed URL for scheme-qualified locations.
func (r *RepositoryURL) URL() (*url.URL, bool) {
	if r.parsed == nil {
		return nil, false
	}
	u := *r.parsed
	return &u, true
}

// String returns the location with any credentials removed.
func (r *RepositoryURL) String() string {
	return Redact(r.Raw)
}

// ParseRepositoryURL parses a repository location in any of the accepted
// forms. Values that git would read as an option are rejected.
func ParseRepositoryURL(rawURL string) (*RepositoryURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}
	if strings.HasPrefix(rawURL, "-") || strings.ContainsAny(rawURL, "\n\r\t") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, Redact(rawURL))
	}

	if strings.Contains(rawURL, "://") {
		return parseSchemeURL(rawURL)
	}

	if m := scpLikeRegex.FindStringSubmatch(rawURL); m != nil && !isWindowsDrive(rawURL) {
		return &RepositoryURL{Raw: rawURL, Scheme: "ssh", Host: m[2], Path: m[3]}, nil
	}

	return &RepositoryURL{Raw: rawURL, Scheme: "file", Path: rawURL}, nil
}

func parseSchemeURL(rawURL string) (*RepositoryURL, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, stripCredentials(err))
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if !supportedSchemes[scheme] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, parsedURL.Scheme)
	}

	path := strings.Trim(parsedURL.Path, "/")
	if scheme == "file" {
		if path == "" {
			return nil, fmt.Errorf("%w: file URL must name a directory", ErrInvalidPath)
		}
		return &RepositoryURL{Raw: rawURL, Scheme: scheme, Path: parsedURL.Path, parsed: parsedURL}, nil
	}

	if parsedURL.Hostname() == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHost, Redact(rawURL))
	}
	if path == "" {
		return nil, fmt.Errorf("%w: URL must include a repository path", ErrInvalidPath)
	}

	return &RepositoryURL{
		Raw:    rawURL,
		Scheme: scheme,
		Host:   parsedURL.Hostname(),
		Path:   path,
		parsed: parsedURL,
	}, nil
}

// ValidateURL checks that rawURL is a location git can clone from.
func ValidateURL(rawURL string) error {
	_, err := ParseRepositoryURL(rawURL)
	return err
}

// FormatTokenURL returns a copy of parsedURL carrying token as credentials.
// With an empty username the token is sent as the user name, which GitHub
// accepts. The original URL is not modified.
func FormatTokenURL(parsedURL *url.URL, username, token string) (*url.URL, error) {
	if parsedURL == nil {
		return nil, fmt.Errorf("%w: nil URL provided", ErrInvalidURL)
	}

	if token == "" {
		return nil, ErrEmptyToken
	}

	tokenURL := *parsedURL
	if username == "" {
		tokenURL.User = url.User(token)
	} else {
		tokenURL.User = url.UserPassword(username, token)
	}

	return &tokenURL, nil
}

// Redact removes credentials from a URL so it can be logged.
func Redact(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable; drop everything between the scheme and the last '@'.
		scheme, rest, _ := strings.Cut(rawURL, "://")
		if i := strings.LastIndex(rest, "@"); i >= 0 {
			rest = rest[i+1:]
		}
		return scheme + "://" + rest
	}
	u.User = nil
	return u.String()
}

func stripCredentials(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return errors.New(ue.Err.Error())
	}
	return err
}

func isWindowsDrive(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}
