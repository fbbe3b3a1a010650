package urlrewrite

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	cssURLRe    = regexp.MustCompile(`url\(\s*['"]?([^'"()]+?)['"]?\s*\)`)
	cssImportRe = regexp.MustCompile(`@import\s+(['"])([^'"]+)['"]`)
)

// RewriteCSS replaces every url(...) and @import reference in a stylesheet
// with the asset-proxy equivalent. data: URIs and fragment references stay
// untouched, and a reference that fails to resolve is left as-is so a
// partial failure never corrupts the sheet.
func (rw *Rewriter) RewriteCSS(css string, base *url.URL) string {
	out := cssURLRe.ReplaceAllStringFunc(css, func(match string) string {
		ref := strings.TrimSpace(cssURLRe.FindStringSubmatch(match)[1])
		if strings.HasPrefix(strings.ToLower(ref), "data:") || strings.HasPrefix(ref, "#") {
			return match
		}
		abs := rw.ToAbsolute(base, ref)
		if abs == nil {
			return match
		}
		return `url("` + rw.AssetProxyURL(abs) + `")`
	})

	// @import "..." and @import '...' (the url() form is covered above)
	out = cssImportRe.ReplaceAllStringFunc(out, func(match string) string {
		ref := strings.TrimSpace(cssImportRe.FindStringSubmatch(match)[2])
		abs := rw.ToAbsolute(base, ref)
		if abs == nil {
			return match
		}
		return `@import "` + rw.AssetProxyURL(abs) + `"`
	})
	return out
}
