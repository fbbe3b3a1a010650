package controllers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"espejo/espejo/config"
	"espejo/espejo/services/translate"
	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/logging"
	"espejo/espejo/utils/reader"
	"espejo/espejo/utils/types"
	"espejo/espejo/utils/urlrewrite"
)

// ReaderController serves reader mode (extracted article content) and the
// links fallback for pages with no readable body.
type ReaderController struct {
	cfg        config.Config
	guard      *hostguard.Guard
	fetcher    *fetcher.Fetcher
	rewriter   *urlrewrite.Rewriter
	translator *translate.Orchestrator
	sanitizer  *reader.Sanitizer
	scorer     *reader.LinkScorer
	langs      map[string]struct{}
}

func NewReaderController(cfg config.Config, pats config.Patterns, guard *hostguard.Guard,
	f *fetcher.Fetcher, rw *urlrewrite.Rewriter, tr *translate.Orchestrator,
	san *reader.Sanitizer, scorer *reader.LinkScorer) *ReaderController {
	return &ReaderController{
		cfg:        cfg,
		guard:      guard,
		fetcher:    f,
		rewriter:   rw,
		translator: tr,
		sanitizer:  san,
		scorer:     scorer,
		langs:      langSet(pats.TargetLangs),
	}
}

func (c *ReaderController) fetchTimeout() time.Duration {
	return time.Duration(c.cfg.FetchTimeoutSecs) * time.Second
}

// Reader extracts, rewrites, translates and sanitizes the article body of
// the target page.
func (c *ReaderController) Reader(ctx context.Context, rawURL, rawLang string) (*types.ReaderResult, error) {
	defer logging.LogDuration(ctx, "reader")()

	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	lang, err := resolveLang(rawLang, c.cfg.DefaultTargetLang, c.langs)
	if err != nil {
		return nil, err
	}
	if err := c.guard.Check(target.Hostname()); err != nil {
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, target.String(), fetcher.Limits{
		MaxBytes: c.cfg.PageMaxBytes,
		Timeout:  c.fetchTimeout(),
	})
	if err != nil {
		return nil, err
	}

	title, contentHTML := reader.Extract(string(resp.Body), target)

	fragment, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err == nil {
		c.rewriteFragment(fragment, target)
		if body := fragment.Find("body"); body.Length() > 0 {
			if err := c.translator.TranslateTree(ctx, body.Nodes[0], lang); err != nil {
				return nil, err
			}
			if inner, err := body.Html(); err == nil {
				contentHTML = inner
			}
		}
	}

	title, err = c.translator.TranslateSingle(ctx, title, lang)
	if err != nil {
		return nil, err
	}

	return &types.ReaderResult{
		Title:       title,
		SourceURL:   target.String(),
		ContentHTML: c.sanitizer.Sanitize(contentHTML),
	}, nil
}

// Links ranks same-site anchors for pages that cannot be rendered as
// reader content. An empty list is a valid success, never an error.
func (c *ReaderController) Links(ctx context.Context, rawURL string) (*types.LinksResult, error) {
	defer logging.LogDuration(ctx, "links")()

	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.guard.Check(target.Hostname()); err != nil {
		return nil, err
	}

	resp, err := c.fetcher.Fetch(ctx, target.String(), fetcher.Limits{
		MaxBytes: c.cfg.PageMaxBytes,
		Timeout:  c.fetchTimeout(),
	})
	if err != nil {
		return nil, err
	}

	candidates := c.scorer.Rank(string(resp.Body), target)
	links := make([]types.Link, 0, len(candidates))
	for _, cand := range candidates {
		links = append(links, types.Link{Title: cand.Title, URL: cand.URL})
	}
	return &types.LinksResult{SourceURL: target.String(), Links: links}, nil
}

// rewriteFragment keeps reader output self-contained: asset references go
// through the proxy, navigation hrefs become plain absolute URLs.
func (c *ReaderController) rewriteFragment(fragment *goquery.Document, base *url.URL) {
	rw := c.rewriter

	fragment.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs := rw.ToAbsolute(base, src); abs != nil {
			s.SetAttr("src", rw.AssetProxyURL(abs))
		}
	})
	fragment.Find("[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		s.SetAttr("srcset", rw.RewriteSrcset(base, srcset))
	})
	fragment.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := rw.ToAbsolute(base, href); abs != nil {
			s.SetAttr("href", abs.String())
		}
	})
}
