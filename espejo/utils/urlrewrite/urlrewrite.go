package urlrewrite

import (
	"net/url"
	"strings"
)

// Rewriter maps remote references onto the mirror's own endpoints: assets
// to the pass-through proxy, navigation links back into the mirror.
type Rewriter struct {
	AssetPath string // e.g. "/asset"
	PagePath  string // e.g. "/page"
}

func New(assetPath, pagePath string) *Rewriter {
	return &Rewriter{AssetPath: assetPath, PagePath: pagePath}
}

// ToAbsolute resolves a raw attribute value against base. It returns nil
// for values that must not be rewritten: empty strings, fragment-only
// references, mailto:/tel:/javascript: values and any non-http(s) scheme.
// Protocol-relative references resolve as https.
func (rw *Rewriter) ToAbsolute(base *url.URL, raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil
	}
	lower := strings.ToLower(raw)
	for _, scheme := range []string{"mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil
		}
		return u
	}
	if base == nil {
		return nil
	}
	return base.ResolveReference(u)
}

// AssetProxyURL maps an absolute URL to the pass-through endpoint, carrying
// the original as a single encoded query parameter.
func (rw *Rewriter) AssetProxyURL(abs *url.URL) string {
	return rw.AssetPath + "?url=" + url.QueryEscape(abs.String())
}

// NavigationURL maps an absolute URL to the mirrored-page endpoint,
// optionally namespaced by target language.
func (rw *Rewriter) NavigationURL(lang string, abs *url.URL) string {
	s := rw.PagePath + "?url=" + url.QueryEscape(abs.String())
	if lang != "" {
		s += "&lang=" + url.QueryEscape(lang)
	}
	return s
}

// RewriteSrcset rewrites the URL token of every comma-separated srcset
// candidate, preserving width/density descriptors. A candidate that fails
// to resolve is passed through unchanged so the srcset grammar survives.
func (rw *Rewriter) RewriteSrcset(base *url.URL, raw string) string {
	candidates := strings.Split(raw, ",")
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		abs := rw.ToAbsolute(base, fields[0])
		if abs == nil {
			out = append(out, strings.TrimSpace(c))
			continue
		}
		rewritten := rw.AssetProxyURL(abs)
		if len(fields) > 1 {
			rewritten += " " + strings.Join(fields[1:], " ")
		}
		out = append(out, rewritten)
	}
	return strings.Join(out, ", ")
}

// SameSite reports whether two hostnames belong to the same registrable
// site: equal, or one a subdomain of the other, case-insensitive, with a
// leading "www." ignored.
func SameSite(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.HasSuffix(a, "."+b) || strings.HasSuffix(b, "."+a)
}
