package controllers

import (
	"context"

	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/logging"
	"espejo/espejo/utils/pdf"
	"espejo/espejo/utils/types"
)

// PdfController serves the alternate content path for PDF resources.
type PdfController struct {
	guard     *hostguard.Guard
	extractor *pdf.Extractor
}

func NewPdfController(guard *hostguard.Guard, extractor *pdf.Extractor) *PdfController {
	return &PdfController{guard: guard, extractor: extractor}
}

func (c *PdfController) Extract(ctx context.Context, rawURL string) (*types.PdfResult, error) {
	defer logging.LogDuration(ctx, "pdf_extract")()

	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.guard.Check(target.Hostname()); err != nil {
		return nil, err
	}
	return c.extractor.Extract(ctx, target.String())
}

// IsPdf reports whether the target should take the PDF path at all; used
// by callers that dispatch between page and PDF mode.
func (c *PdfController) IsPdf(ctx context.Context, rawURL string) bool {
	target, err := parseTarget(rawURL)
	if err != nil || c.guard.IsBlocked(target.Hostname()) {
		return false
	}
	return c.extractor.IsPDFResource(ctx, target.String())
}
