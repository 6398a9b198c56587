package token

import (
	"context"
	"errors"
	"strings"
)

// Provider represents a Git provider type
type Provider string

const (
	ProviderGitHub Provider = "GITHUB"
	ProviderGitLab Provider = "GITLAB"
)

// Credentials are the basic-auth pair used for an HTTPS clone.
type Credentials struct {
	Username string
	Token    string
}

// ProviderForHost maps the public hosting services to their provider.
// Other hosts return "".
func ProviderForHost(host string) Provider {
	host = strings.ToLower(host)
	switch {
	case host == "github.com", strings.HasSuffix(host, ".github.com"):
		return ProviderGitHub
	case host == "gitlab.com":
		return ProviderGitLab
	default:
		return ""
	}
}

// Username returns the basic-auth user name the provider expects alongside
// a token.
func (p Provider) Username() string {
	switch p {
	case ProviderGitHub:
		return "x-access-token"
	case ProviderGitLab:
		return "oauth2"
	default:
		return ""
	}
}

// ForHost looks up credentials for host. Known providers are keyed by
// provider name, anything else by the host itself. It returns
// ErrTokenNotFound when nothing is configured.
func ForHost(ctx context.Context, s Storage, host string) (Credentials, error) {
	if s == nil || host == "" {
		return Credentials{}, ErrTokenNotFound
	}

	provider := ProviderForHost(host)
	key := string(provider)
	if provider == "" {
		key = host
	}

	t, err := s.Retrieve(ctx, key)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: provider.Username(), Token: t.Value}, nil
}

// IsMissing reports whether err only means no token was configured.
func IsMissing(err error) bool {
	return errors.Is(err, ErrTokenNotFound)
}
