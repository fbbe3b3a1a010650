package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"espejo/espejo/config"
	"espejo/espejo/services/translate"
	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/logging"
	"espejo/espejo/utils/urlrewrite"
)

// PageController serves full-page mode: the whole upstream document,
// rewritten so every reference loads through the mirror, with its visible
// text translated in place.
type PageController struct {
	cfg        config.Config
	guard      *hostguard.Guard
	fetcher    *fetcher.Fetcher
	rewriter   *urlrewrite.Rewriter
	translator *translate.Orchestrator
	langs      map[string]struct{}
}

func NewPageController(cfg config.Config, pats config.Patterns, guard *hostguard.Guard,
	f *fetcher.Fetcher, rw *urlrewrite.Rewriter, tr *translate.Orchestrator) *PageController {
	return &PageController{
		cfg:        cfg,
		guard:      guard,
		fetcher:    f,
		rewriter:   rw,
		translator: tr,
		langs:      langSet(pats.TargetLangs),
	}
}

func (c *PageController) fetchTimeout() time.Duration {
	return time.Duration(c.cfg.FetchTimeoutSecs) * time.Second
}

// FullPage runs the whole pipeline for one document and returns the
// serialized result.
func (c *PageController) FullPage(ctx context.Context, rawURL, rawLang string) (string, error) {
	defer logging.LogDuration(ctx, "full_page")()

	target, err := parseTarget(rawURL)
	if err != nil {
		return "", err
	}
	lang, err := resolveLang(rawLang, c.cfg.DefaultTargetLang, c.langs)
	if err != nil {
		return "", err
	}
	if err := c.guard.Check(target.Hostname()); err != nil {
		return "", err
	}

	resp, err := c.fetcher.Fetch(ctx, target.String(), fetcher.Limits{
		MaxBytes: c.cfg.PageMaxBytes,
		Timeout:  c.fetchTimeout(),
	})
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("%w: unparseable document", fetcher.ErrUpstreamUnreachable)
	}

	base := documentBase(doc, target, c.rewriter)
	c.rewriteDocument(doc, base, lang)

	if body := doc.Find("body"); body.Length() > 0 {
		if err := c.translator.TranslateTree(ctx, body.Nodes[0], lang); err != nil {
			return "", err
		}
	}

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n" + out, nil
}

// rewriteDocument redirects every reference in the tree through the
// mirror: navigation to /page, assets to /asset, stylesheets through the
// CSS rewriter. The same tree is mutated again by translation and finally
// serialized; no copy is kept.
func (c *PageController) rewriteDocument(doc *goquery.Document, base *url.URL, lang string) {
	rw := c.rewriter

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := rw.ToAbsolute(base, href); abs != nil {
			s.SetAttr("href", rw.NavigationURL(lang, abs))
		}
	})

	doc.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if abs := rw.ToAbsolute(base, src); abs != nil {
			s.SetAttr("src", rw.AssetProxyURL(abs))
		}
	})

	doc.Find("[srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		s.SetAttr("srcset", rw.RewriteSrcset(base, srcset))
	})

	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := rw.ToAbsolute(base, href); abs != nil {
			s.SetAttr("href", rw.AssetProxyURL(abs))
		}
	})

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		s.SetText(rw.RewriteCSS(s.Text(), base))
	})

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		s.SetAttr("style", rw.RewriteCSS(style, base))
	})
}

// documentBase honors a <base href> for relative resolution, then drops
// the element so the mirrored page resolves against the proxy instead.
func documentBase(doc *goquery.Document, target *url.URL, rw *urlrewrite.Rewriter) *url.URL {
	base := target
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if abs := rw.ToAbsolute(target, href); abs != nil {
			base = abs
		}
	}
	doc.Find("base").Remove()
	return base
}
