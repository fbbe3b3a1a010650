package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	pdflib "github.com/ledongthuc/pdf"

	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/types"
)

// MaxTextChars caps the extracted text; anything longer is truncated and
// flagged.
const MaxTextChars = 60000

// ErrDecode means the downloaded bytes could not be read as a PDF. A PDF
// with no extractable glyphs is NOT this error: empty text is a valid
// result that callers must render as its own state.
var ErrDecode = errors.New("could not decode pdf")

// Extractor downloads a bounded byte stream and decodes it to plain text.
type Extractor struct {
	fetcher  *fetcher.Fetcher
	maxBytes int64
	timeout  time.Duration
}

func NewExtractor(f *fetcher.Fetcher, maxBytes int64, timeout time.Duration) *Extractor {
	return &Extractor{fetcher: f, maxBytes: maxBytes, timeout: timeout}
}

// LooksLikePDF is the extension heuristic, used when the HEAD probe is
// unavailable.
func LooksLikePDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// IsPDFResource probes the resource's content type with a HEAD request,
// falling back to the extension heuristic on any fetch failure.
func (e *Extractor) IsPDFResource(ctx context.Context, rawURL string) bool {
	header, err := e.fetcher.Head(ctx, rawURL, e.timeout)
	if err != nil {
		return LooksLikePDF(rawURL)
	}
	ct := strings.ToLower(header.Get("Content-Type"))
	if ct == "" {
		return LooksLikePDF(rawURL)
	}
	return strings.Contains(ct, "application/pdf")
}

// Extract downloads the resource under the PDF byte ceiling and returns
// its plain text, normalized and truncated to MaxTextChars.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*types.PdfResult, error) {
	resp, err := e.fetcher.Fetch(ctx, rawURL, fetcher.Limits{
		MaxBytes: e.maxBytes,
		Timeout:  e.timeout,
	})
	if err != nil {
		return nil, err
	}

	text, err := decodeText(resp.Body)
	if err != nil {
		return nil, ErrDecode
	}

	text = normalizeNewlines(text)
	truncated := false
	if runes := []rune(text); len(runes) > MaxTextChars {
		text = string(runes[:MaxTextChars])
		truncated = true
	}

	return &types.PdfResult{
		Text:      text,
		Truncated: truncated,
		Bytes:     int64(len(resp.Body)),
	}, nil
}

func decodeText(data []byte) (string, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", err
	}
	return b.String(), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
