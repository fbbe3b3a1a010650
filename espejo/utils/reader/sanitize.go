package reader

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer reduces a reader fragment to an allow-listed tag/attribute set.
// Unknown tags are unwrapped (content kept, wrapper discarded); dangerous
// structural elements are dropped together with their content; on*
// handlers, non-allow-listed attributes and javascript: URLs are removed.
// Sanitizing already-sanitized markup is a no-op.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a policy from injected allow/drop lists so tests can
// substitute fixtures.
func NewSanitizer(allowedTags, allowedAttrs, dropTags []string) *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowAttrs(allowedAttrs...).Globally()
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)
	p.SkipElementsContent(dropTags...)
	return &Sanitizer{policy: p}
}

func (s *Sanitizer) Sanitize(fragmentHTML string) string {
	return s.policy.Sanitize(fragmentHTML)
}
