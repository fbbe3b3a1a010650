package reader

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"espejo/espejo/utils/urlrewrite"
)

const (
	minLinkTitleLen = 25
	maxLinks        = 15
	maxTitleScore   = 180
)

// LinkCandidate is a ranked same-site anchor, used when a page yields no
// reader content.
type LinkCandidate struct {
	Title string
	URL   string
	Score int
}

// LinkScorer extracts and ranks same-site article links.
type LinkScorer struct {
	rewriter      *urlrewrite.Rewriter
	excludeTokens []string
}

// NewLinkScorer takes the excluded-token block-list as injected
// configuration.
func NewLinkScorer(rw *urlrewrite.Rewriter, excludeTokens []string) *LinkScorer {
	lowered := make([]string, 0, len(excludeTokens))
	for _, t := range excludeTokens {
		lowered = append(lowered, strings.ToLower(t))
	}
	return &LinkScorer{rewriter: rw, excludeTokens: lowered}
}

// Rank returns up to 15 candidates sorted by descending score,
// deduplicated by normalized URL keeping the highest-scoring occurrence.
func (ls *LinkScorer) Rank(htmlStr string, base *url.URL) []LinkCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil || base == nil {
		return nil
	}

	best := make(map[string]LinkCandidate)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := ls.rewriter.ToAbsolute(base, href)
		if abs == nil {
			return
		}
		if !urlrewrite.SameSite(abs.Hostname(), base.Hostname()) {
			return
		}
		title := collapse(s.Text())
		if len(title) < minLinkTitleLen {
			return
		}
		if ls.excluded(strings.ToLower(title)) || ls.excluded(strings.ToLower(abs.String())) {
			return
		}

		cand := LinkCandidate{
			Title: title,
			URL:   abs.String(),
			Score: scoreLink(s, title),
		}
		key := normalizeURL(abs)
		if prev, ok := best[key]; !ok || cand.Score > prev.Score {
			best[key] = cand
		}
	})

	out := make([]LinkCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > maxLinks {
		out = out[:maxLinks]
	}
	return out
}

func (ls *LinkScorer) excluded(s string) bool {
	for _, token := range ls.excludeTokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func scoreLink(s *goquery.Selection, title string) int {
	score := len(title)
	if score > maxTitleScore {
		score = maxTitleScore
	}
	if looksLikeHeadline(title) {
		score += 25
	}
	if s.Closest("h1, h2, h3, h4, h5, h6").Length() > 0 {
		score += 50
	}
	if s.Closest("article").Length() > 0 {
		score += 45
	}
	if s.Closest(".content, #content, .post, .post-content, .entry-content, .article-content, .story-body").Length() > 0 {
		score += 40
	}
	if s.Closest("main").Length() > 0 {
		score += 35
	}
	return score
}

// looksLikeHeadline is a cheap check for a capitalized long-form sentence
// fragment.
func looksLikeHeadline(title string) bool {
	runes := []rune(title)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	return len(strings.Fields(title)) >= 5
}

func normalizeURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.Host = strings.ToLower(c.Host)
	return strings.TrimSuffix(c.String(), "/")
}
