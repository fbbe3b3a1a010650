package hostguard

import (
	"errors"
	"net"
	"strings"
)

var (
	ErrHostBlocked    = errors.New("host is blocked")
	ErrHostNotAllowed = errors.New("host is not on the allow-list")
)

// Guard classifies hostnames by literal/string pattern only. It performs no
// DNS resolution, so it is a defense-in-depth heuristic against obvious
// SSRF targets, not a complete fix: a public name resolving to a private
// address still passes.
type Guard struct {
	allowHosts    map[string]struct{}
	allowSuffixes []string
}

// New builds a Guard whose asset-proxy allow-list is the given exact hosts
// plus suffix-matched domain patterns (e.g. ".wikipedia.org").
func New(allowHosts, allowSuffixes []string) *Guard {
	g := &Guard{
		allowHosts:    make(map[string]struct{}, len(allowHosts)),
		allowSuffixes: make([]string, 0, len(allowSuffixes)),
	}
	for _, h := range allowHosts {
		g.allowHosts[strings.ToLower(h)] = struct{}{}
	}
	for _, s := range allowSuffixes {
		g.allowSuffixes = append(g.allowSuffixes, strings.ToLower(s))
	}
	return g
}

var privateV4 = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"0.0.0.0/8",
}

var privateV6Prefixes = []string{"fc", "fd", "fe8", "fe9", "fea", "feb"}

// IsBlocked reports whether the hostname is a loopback, private or
// link-local target that must never be fetched.
func (g *Guard) IsBlocked(hostname string) bool {
	h := strings.ToLower(strings.Trim(strings.TrimSpace(hostname), "[]"))
	if h == "" || h == "localhost" || h == "::1" {
		return true
	}

	ip := net.ParseIP(h)
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		for _, cidr := range privateV4 {
			_, block, err := net.ParseCIDR(cidr)
			if err != nil {
				continue
			}
			if block.Contains(v4) {
				return true
			}
		}
		return false
	}

	// IPv6 literal: compare against link-local/unique-local prefixes with
	// the colons stripped, so "fe80::1" and "fe80:0:..." match alike.
	compact := strings.ReplaceAll(h, ":", "")
	for _, p := range privateV6Prefixes {
		if strings.HasPrefix(compact, p) {
			return true
		}
	}
	return false
}

// IsAllowed reports whether the hostname is on the asset-proxy allow-list.
// The allow-list is checked in addition to IsBlocked, never instead of it.
func (g *Guard) IsAllowed(hostname string) bool {
	h := strings.ToLower(strings.TrimSpace(hostname))
	if _, ok := g.allowHosts[h]; ok {
		return true
	}
	for _, suffix := range g.allowSuffixes {
		if strings.HasSuffix(h, suffix) || h == strings.TrimPrefix(suffix, ".") {
			return true
		}
	}
	return false
}

// Check validates a page-fetch hostname against the block-list only.
func (g *Guard) Check(hostname string) error {
	if g.IsBlocked(hostname) {
		return ErrHostBlocked
	}
	return nil
}

// CheckAsset validates an asset-proxy hostname against the block-list and
// the allow-list, returning distinct errors so callers can answer with
// distinct messages.
func (g *Guard) CheckAsset(hostname string) error {
	if g.IsBlocked(hostname) {
		return ErrHostBlocked
	}
	if !g.IsAllowed(hostname) {
		return ErrHostNotAllowed
	}
	return nil
}
