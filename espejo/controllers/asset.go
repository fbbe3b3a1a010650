package controllers

import (
	"context"
	"strings"
	"time"

	"espejo/espejo/config"
	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/urlrewrite"
)

// AssetResult is an upstream resource ready to re-serve from the mirror's
// origin: status, content type and body pass through verbatim, except CSS
// which is rewritten in place.
type AssetResult struct {
	Status      int
	ContentType string
	Body        []byte
}

// AssetController is the pass-through proxy for third-party page assets.
// Unlike page fetches it requires the host to be on an explicit
// allow-list, in addition to the block-list, to prevent open-proxy abuse.
type AssetController struct {
	cfg      config.Config
	guard    *hostguard.Guard
	fetcher  *fetcher.Fetcher
	rewriter *urlrewrite.Rewriter
}

func NewAssetController(cfg config.Config, guard *hostguard.Guard,
	f *fetcher.Fetcher, rw *urlrewrite.Rewriter) *AssetController {
	return &AssetController{cfg: cfg, guard: guard, fetcher: f, rewriter: rw}
}

func (c *AssetController) Asset(ctx context.Context, rawURL string) (*AssetResult, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.guard.CheckAsset(target.Hostname()); err != nil {
		return nil, err
	}

	// FetchAny: upstream status, content type and body pass through
	// verbatim in asset mode, error statuses included.
	resp, err := c.fetcher.FetchAny(ctx, target.String(), fetcher.Limits{
		MaxBytes: c.cfg.AssetMaxBytes,
		Timeout:  time.Duration(c.cfg.FetchTimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	body := resp.Body
	if strings.Contains(strings.ToLower(contentType), "text/css") {
		body = []byte(c.rewriter.RewriteCSS(string(body), target))
	}

	return &AssetResult{
		Status:      resp.Status,
		ContentType: contentType,
		Body:        body,
	}, nil
}
