package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Patterns holds every allow/block list the pipeline consumes. They are
// loaded once at startup and passed into the component constructors so
// tests can substitute fixtures.
type Patterns struct {
	// Asset-proxy allow list: exact hosts plus suffix-matched domains.
	AssetAllowHosts    []string `yaml:"asset_allow_hosts"`
	AssetAllowSuffixes []string `yaml:"asset_allow_suffixes"`

	// Tags whose subtrees are never sent to the translation service.
	TranslationBlockedTags []string `yaml:"translation_blocked_tags"`

	// Reader sanitizer allow lists.
	SanitizerAllowedTags  []string `yaml:"sanitizer_allowed_tags"`
	SanitizerAllowedAttrs []string `yaml:"sanitizer_allowed_attrs"`
	SanitizerDropTags     []string `yaml:"sanitizer_drop_tags"`

	// Case-insensitive substrings that disqualify a link candidate.
	LinkExcludeTokens []string `yaml:"link_exclude_tokens"`

	// Supported target language codes.
	TargetLangs []string `yaml:"target_langs"`
}

func defaultPatterns() Patterns {
	return Patterns{
		AssetAllowHosts: []string{},
		AssetAllowSuffixes: []string{
			".wikipedia.org", ".wikimedia.org", ".wikinews.org",
			".gstatic.com", ".googleapis.com", ".googleusercontent.com",
			".cloudfront.net", ".akamaized.net", ".fastly.net",
			".jsdelivr.net", ".unpkg.com", ".cloudflare.com",
			".twimg.com", ".medium.com", ".substack.com",
			".guim.co.uk", ".nyt.com", ".bbci.co.uk", ".elpais.com",
		},
		TranslationBlockedTags: []string{
			"script", "style", "noscript", "code", "pre", "kbd", "samp",
		},
		SanitizerAllowedTags: []string{
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr", "blockquote", "q", "cite",
			"ul", "ol", "li", "dl", "dt", "dd",
			"b", "i", "strong", "em", "u", "s", "del", "ins",
			"sub", "sup", "small", "mark", "abbr", "span",
			"a", "img", "figure", "figcaption", "picture", "source",
			"table", "caption", "thead", "tbody", "tfoot", "tr", "th", "td",
			"pre", "code", "kbd", "samp", "time", "address",
		},
		SanitizerAllowedAttrs: []string{
			"href", "src", "alt", "title", "width", "height",
			"colspan", "rowspan", "scope", "datetime",
		},
		SanitizerDropTags: []string{
			"script", "style", "iframe", "object", "embed", "form",
			"button", "input", "textarea", "select", "link", "meta", "base",
		},
		LinkExcludeTokens: []string{
			"login", "log in", "sign in", "sign up", "signin", "signup",
			"subscribe", "suscr", "register", "account", "newsletter",
			"facebook", "twitter", "instagram", "linkedin", "whatsapp",
			"telegram", "youtube", "tiktok", "pinterest", "reddit",
			"share", "compartir", "privacy", "cookie", "terms",
			"advertis", "contact", "about us",
		},
		TargetLangs: []string{
			"es", "en", "fr", "de", "it", "pt", "nl", "pl", "ru", "ja", "zh",
		},
	}
}

// LoadPatterns returns the compiled defaults, overlaid with any lists set
// in the given YAML file. An empty path means defaults only.
func LoadPatterns(path string) (Patterns, error) {
	p := defaultPatterns()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	var override Patterns
	if err := yaml.Unmarshal(data, &override); err != nil {
		return p, err
	}
	merge(&p.AssetAllowHosts, override.AssetAllowHosts)
	merge(&p.AssetAllowSuffixes, override.AssetAllowSuffixes)
	merge(&p.TranslationBlockedTags, override.TranslationBlockedTags)
	merge(&p.SanitizerAllowedTags, override.SanitizerAllowedTags)
	merge(&p.SanitizerAllowedAttrs, override.SanitizerAllowedAttrs)
	merge(&p.SanitizerDropTags, override.SanitizerDropTags)
	merge(&p.LinkExcludeTokens, override.LinkExcludeTokens)
	merge(&p.TargetLangs, override.TargetLangs)
	return p, nil
}

func merge(dst *[]string, override []string) {
	if len(override) > 0 {
		*dst = override
	}
}
