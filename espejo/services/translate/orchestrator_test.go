package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"espejo/espejo/utils/logging"
)

func TestMain(m *testing.M) {
	logging.InitTestLogger()
	os.Exit(m.Run())
}

var testBlockedTags = []string{"script", "style", "noscript", "code", "pre", "kbd", "samp"}

// newStubService prefixes every input with "[xx] ". A negative skew makes
// it return that many fewer results than requested.
func newStubService(t *testing.T, skew int) (*httptest.Server, *[][]string) {
	t.Helper()
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "DeepL-Auth-Key test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		var req struct {
			Text       []string `json:"text"`
			TargetLang string   `json:"target_lang"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		batches = append(batches, req.Text)

		n := len(req.Text) + skew
		if n < 0 {
			n = 0
		}
		type tr struct {
			Text string `json:"text"`
		}
		out := struct {
			Translations []tr `json:"translations"`
		}{}
		for i := 0; i < n && i < len(req.Text); i++ {
			out.Translations = append(out.Translations, tr{Text: "[xx] " + req.Text[i]})
		}
		json.NewEncoder(w).Encode(out)
	}))
	return srv, &batches
}

func parseHTML(t *testing.T, s string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return node
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestTranslateTreePreservesWhitespace(t *testing.T) {
	srv, _ := newStubService(t, 0)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	root := parseHTML(t, "<html><body><p>  Hello world  </p></body></html>")
	if err := o.TranslateTree(context.Background(), root, "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := render(t, root)
	if !strings.Contains(got, "<p>  [xx] Hello world  </p>") {
		t.Errorf("whitespace not preserved: %q", got)
	}
}

func TestTranslateTreeSkipsBlockedSubtrees(t *testing.T) {
	srv, batches := newStubService(t, 0)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	root := parseHTML(t, `<html><body>
<p>Readable text</p>
<script>var x = "never";</script>
<pre>untouchable <em>even nested</em></pre>
<code>x := 1</code>
</body></html>`)
	if err := o.TranslateTree(context.Background(), root, "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent []string
	for _, b := range *batches {
		sent = append(sent, b...)
	}
	if len(sent) != 1 || sent[0] != "Readable text" {
		t.Errorf("expected only the paragraph to be sent, got %v", sent)
	}
	got := render(t, root)
	if !strings.Contains(got, `var x = "never";`) || !strings.Contains(got, "untouchable <em>even nested</em>") {
		t.Errorf("blocked subtree mutated: %q", got)
	}
}

func TestTranslateTreeSkipsURLLikeText(t *testing.T) {
	srv, batches := newStubService(t, 0)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	root := parseHTML(t, `<html><body>
<p>https://example.com/page</p>
<p>www.example.com</p>
<p>mailto:someone@example.com</p>
<p>Actual prose here</p>
</body></html>`)
	if err := o.TranslateTree(context.Background(), root, "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*batches) != 1 || len((*batches)[0]) != 1 || (*batches)[0][0] != "Actual prose here" {
		t.Errorf("expected only prose to be sent, got %v", *batches)
	}
}

func TestTranslateTreeBatchesOfThirty(t *testing.T) {
	srv, batches := newStubService(t, 0)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 65; i++ {
		b.WriteString("<p>paragraph number ")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")

	root := parseHTML(t, b.String())
	if err := o.TranslateTree(context.Background(), root, "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(*batches))
	}
	if got := len((*batches)[0]); got != 30 {
		t.Errorf("first batch size = %d, want 30", got)
	}
	if got := len((*batches)[2]); got != 5 {
		t.Errorf("last batch size = %d, want 5", got)
	}
}

func TestTranslateTreeShapeMismatch(t *testing.T) {
	srv, _ := newStubService(t, -1)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	root := parseHTML(t, "<html><body><p>One</p><p>Two paragraphs</p></body></html>")
	before := render(t, root)

	err := o.TranslateTree(context.Background(), root, "es")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if got := render(t, root); got != before {
		t.Errorf("failed batch must not mutate nodes: %q", got)
	}
}

func TestTranslateTreeEmptyResultLeavesNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text []string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		type tr struct {
			Text string `json:"text"`
		}
		out := struct {
			Translations []tr `json:"translations"`
		}{}
		for range req.Text {
			out.Translations = append(out.Translations, tr{Text: "   "})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	root := parseHTML(t, "<html><body><p>Keep me</p></body></html>")
	if err := o.TranslateTree(context.Background(), root, "es"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := render(t, root); !strings.Contains(got, "<p>Keep me</p>") {
		t.Errorf("blank translation must not blank the node: %q", got)
	}
}

func TestTranslateMissingCredential(t *testing.T) {
	o := NewOrchestrator(NewClient("", "http://unused.invalid"), testBlockedTags)
	root := parseHTML(t, "<html><body><p>Some text</p></body></html>")
	if err := o.TranslateTree(context.Background(), root, "es"); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}

func TestTranslateServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.Translate(context.Background(), []string{"hello"}, "es")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", serviceErr.Status)
	}
	if !strings.Contains(serviceErr.Detail, "quota exceeded") {
		t.Errorf("expected upstream detail, got %q", serviceErr.Detail)
	}
}

func TestTranslateSingle(t *testing.T) {
	srv, _ := newStubService(t, 0)
	defer srv.Close()
	o := NewOrchestrator(NewClient("test-key", srv.URL), testBlockedTags)

	got, err := o.TranslateSingle(context.Background(), "A headline", "es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[xx] A headline" {
		t.Errorf("got %q", got)
	}

	// URL-looking and blank input comes back untouched, no service call.
	if got, _ := o.TranslateSingle(context.Background(), "https://example.com", "es"); got != "https://example.com" {
		t.Errorf("url-like input must pass through, got %q", got)
	}
	if got, _ := o.TranslateSingle(context.Background(), "   ", "es"); got != "   " {
		t.Errorf("blank input must pass through, got %q", got)
	}
}
