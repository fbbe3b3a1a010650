package controllers

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidInput marks a malformed url or lang parameter; routes map it
// to a 400.
var ErrInvalidInput = errors.New("invalid input")

// parseTarget validates that raw is an absolute http(s) URL with a host.
func parseTarget(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing url parameter", ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: url does not parse", ErrInvalidInput)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", ErrInvalidInput)
	}
	return u, nil
}

// resolveLang validates lang against the closed supported set, falling
// back to the configured default when absent.
func resolveLang(raw, fallback string, supported map[string]struct{}) (string, error) {
	if raw == "" {
		return fallback, nil
	}
	if _, ok := supported[raw]; !ok {
		return "", fmt.Errorf("%w: unsupported target language %q", ErrInvalidInput, raw)
	}
	return raw, nil
}

func langSet(langs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		set[l] = struct{}{}
	}
	return set
}
