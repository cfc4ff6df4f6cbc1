// Package urlnorm canonicalizes URLs into the Domain key that every
// classification stage compares against.
package urlnorm

import (
	"net/url"
	"strings"

	"phishguard/pkg/domain"
	"phishguard/pkg/serrors"
)

const wwwLabel = "www."

// Hostname returns the lowercase hostname of raw, without port or userinfo.
//
// raw must be an absolute URL: a scheme and a non-empty host are required.
// Anything else fails with serrors.ErrInvalidURL.
func Hostname(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", serrors.Wrap(serrors.ErrInvalidURL, err, "could not parse URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", serrors.With(serrors.ErrInvalidURL, "URL %q has no scheme or host", raw)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", serrors.With(serrors.ErrInvalidURL, "URL %q has an empty hostname", raw)
	}

	return host, nil
}

// Domain returns the canonical domain of raw:
//   - the hostname, lowercased
//   - with exactly one leading "www." label removed
//
// Two URLs whose hosts differ only by case or by that label yield the same
// Domain. Normalizing "https://" + d returns d for any normalized d that does
// not itself start with "www." (only "www.www." hosts produce such a d).
func Domain(raw string) (domain.Domain, error) {
	host, err := Hostname(raw)
	if err != nil {
		return "", err
	}

	host = StripWWW(host)
	if host == "" {
		return "", serrors.With(serrors.ErrInvalidURL, "URL %q has no domain besides www", raw)
	}

	return domain.Domain(host), nil
}

// StripWWW removes one leading "www." label, case-insensitively.
func StripWWW(host string) string {
	if len(host) >= len(wwwLabel) && strings.EqualFold(host[:len(wwwLabel)], wwwLabel) {
		return host[len(wwwLabel):]
	}

	return host
}
