package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"espejo/espejo/utils/fetcher"
)

// buildPDF synthesizes a minimal valid one-page document around the given
// content stream, with a correct xref table.
func buildPDF(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 6)
	obj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	obj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	obj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func servePDF(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(payload)
	}))
}

func testExtractor(maxBytes int64) *Extractor {
	return NewExtractor(fetcher.New("test-agent"), maxBytes, time.Second)
}

func TestLooksLikePDF(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/doc.pdf", true},
		{"https://example.com/DOC.PDF", true},
		{"https://example.com/doc.pdf?dl=1", true},
		{"https://example.com/doc.html", false},
		{"https://example.com/pdf", false},
		{"://bad", false},
	}
	for _, c := range cases {
		if got := LooksLikePDF(c.url); got != c.want {
			t.Errorf("LooksLikePDF(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestIsPDFResourceUsesHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	}))
	defer srv.Close()

	e := testExtractor(1024)
	if !e.IsPDFResource(context.Background(), srv.URL+"/paper") {
		t.Error("expected content-type probe to report pdf")
	}

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer html.Close()
	if e.IsPDFResource(context.Background(), html.URL+"/page.pdf") {
		t.Error("content-type probe must win over the extension")
	}
}

func TestIsPDFResourceFallsBackToExtension(t *testing.T) {
	e := testExtractor(1024)
	// Unreachable host: the HEAD probe fails, the extension decides.
	if !e.IsPDFResource(context.Background(), "http://127.0.0.1:1/doc.pdf") {
		t.Error("expected extension fallback to report pdf")
	}
	if e.IsPDFResource(context.Background(), "http://127.0.0.1:1/doc.html") {
		t.Error("expected extension fallback to reject html")
	}
}

func TestExtractFailsFastOnDeclaredLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "2048")
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	e := testExtractor(1024)
	_, err := e.Extract(context.Background(), srv.URL+"/big.pdf")
	var exceeded *fetcher.ResourceExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ResourceExceededError, got %v", err)
	}
}

func TestExtractRejectsNonPDFBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not a pdf</html>"))
	}))
	defer srv.Close()

	e := testExtractor(1024)
	_, err := e.Extract(context.Background(), srv.URL+"/fake.pdf")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestExtractEmptyPDFIsSuccess(t *testing.T) {
	// A decodable document with no glyphs is a valid empty-text result,
	// not a decode error.
	payload := buildPDF(t, "")
	srv := servePDF(t, payload)
	defer srv.Close()

	e := testExtractor(int64(len(payload)) + 1024)
	got, err := e.Extract(context.Background(), srv.URL+"/blank.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "" {
		t.Errorf("expected empty text, got %q", got.Text)
	}
	if got.Truncated {
		t.Error("empty document must not be flagged truncated")
	}
	if got.Bytes != int64(len(payload)) {
		t.Errorf("bytes = %d, want %d", got.Bytes, len(payload))
	}
}

func TestExtractTruncatesLongText(t *testing.T) {
	content := "BT /F1 12 Tf (" + strings.Repeat("x", MaxTextChars+10) + ") Tj ET"
	payload := buildPDF(t, content)
	srv := servePDF(t, payload)
	defer srv.Close()

	e := testExtractor(int64(len(payload)) + 1024)
	got, err := e.Extract(context.Background(), srv.URL+"/long.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Truncated {
		t.Error("expected the truncation flag")
	}
	if n := utf8.RuneCountInString(got.Text); n != MaxTextChars {
		t.Errorf("text length = %d, want %d", n, MaxTextChars)
	}
	if !strings.HasPrefix(got.Text, "xxxx") {
		t.Errorf("unexpected text prefix %q", got.Text[:16])
	}
	if got.Bytes != int64(len(payload)) {
		t.Errorf("bytes = %d, want %d", got.Bytes, len(payload))
	}
}

func TestNormalizeNewlines(t *testing.T) {
	got := normalizeNewlines("a\r\nb\rc\nd")
	if got != "a\nb\nc\nd" {
		t.Errorf("got %q", got)
	}
}
