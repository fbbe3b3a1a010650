package reader

import (
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors is the fixed priority list of structural selectors that
// usually wrap the article body.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	"#content", ".content",
	"#main-content", ".main-content",
	".post-content", ".entry-content",
	".article-content", ".article-body",
	".post-body", ".story-body",
}

const (
	maxFallbackParagraphs = 50
	maxFallbackChars      = 15000
	emptyBodyPlaceholder  = "<p>No readable content was found on this page.</p>"
)

// Extract picks the subtree most likely to be the article body. The
// relevance proxy is raw visible-text length, which is deliberately
// simpler than a full readability algorithm: a long comment section can
// outscore a short article, and that tradeoff is accepted.
//
// Fallback order: best structural selector match, then up to 50 paragraph
// texts from a de-boilerplated body, then the first 15000 characters of
// collapsed body text, then a placeholder. ContentHTML is never empty.
func Extract(htmlStr string, origin *url.URL) (title, contentHTML string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return hostTitle(origin), emptyBodyPlaceholder
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = hostTitle(origin)
	}

	var bestHTML string
	var bestLen int
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			textLen := len(collapse(s.Text()))
			if textLen > bestLen {
				if h, err := goquery.OuterHtml(s); err == nil {
					bestLen = textLen
					bestHTML = h
				}
			}
		})
	}
	if bestLen > 0 {
		return title, bestHTML
	}

	// Paragraph fallback: strip the obvious boilerplate subtrees and
	// synthesize markup from what remains.
	body := doc.Find("body").Clone()
	body.Find("nav, aside, header, footer, script, style, noscript, form").Remove()

	var paras []string
	body.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if txt := collapse(s.Text()); txt != "" {
			paras = append(paras, "<p>"+html.EscapeString(txt)+"</p>")
		}
		return len(paras) < maxFallbackParagraphs
	})
	if len(paras) > 0 {
		return title, strings.Join(paras, "\n")
	}

	if txt := collapse(body.Text()); txt != "" {
		runes := []rune(txt)
		if len(runes) > maxFallbackChars {
			runes = runes[:maxFallbackChars]
		}
		return title, "<p>" + html.EscapeString(string(runes)) + "</p>"
	}

	return title, emptyBodyPlaceholder
}

func hostTitle(origin *url.URL) string {
	if origin == nil {
		return ""
	}
	return origin.Hostname()
}

// collapse trims and squeezes all whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
