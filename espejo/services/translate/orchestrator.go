package translate

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"espejo/espejo/utils/logging"
)

// MaxBatchSize caps how many text runs go into one service call.
const MaxBatchSize = 30

// urlLikeRe matches text that is really an address, not prose. Addresses
// must never be sent to the translation service.
var urlLikeRe = regexp.MustCompile(`(?i)^(https?://|www\.|mailto:|tel:|ftp://)`)

// textRun is one translatable leaf: the owning node plus its text split
// into surrounding whitespace and core. Node references are only valid for
// the duration of the walk/translate/write-back sequence.
type textRun struct {
	node     *html.Node
	leading  string
	core     string
	trailing string
}

// Orchestrator walks a parse tree, batches its translatable text to the
// service and writes results back in place. Batches run sequentially: the
// service's response mapping is positional, and concurrent fan-out against
// a rate-limited API is not worth the latency win.
type Orchestrator struct {
	client      *Client
	blockedTags map[string]struct{}
}

func NewOrchestrator(client *Client, blockedTags []string) *Orchestrator {
	blocked := make(map[string]struct{}, len(blockedTags))
	for _, t := range blockedTags {
		blocked[strings.ToLower(t)] = struct{}{}
	}
	return &Orchestrator{client: client, blockedTags: blocked}
}

// TranslateTree mutates every translatable text node under root. A failed
// batch aborts the rest of the request; batches already written stay
// written (best-effort, no rollback).
func (o *Orchestrator) TranslateTree(ctx context.Context, root *html.Node, targetLang string) error {
	defer logging.LogDuration(ctx, "translate_tree")()

	runs := o.collect(root)
	for start := 0; start < len(runs); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(runs) {
			end = len(runs)
		}
		batch := runs[start:end]

		texts := make([]string, len(batch))
		for i, run := range batch {
			texts[i] = run.core
		}
		translated, err := o.client.Translate(ctx, texts, targetLang)
		if err != nil {
			return err
		}
		for i, run := range batch {
			t := strings.TrimSpace(translated[i])
			if t == "" {
				// A blank result never blanks the page.
				continue
			}
			run.node.Data = run.leading + t + run.trailing
		}
	}
	return nil
}

// TranslateSingle translates one standalone string, e.g. a document title.
func (o *Orchestrator) TranslateSingle(ctx context.Context, text, targetLang string) (string, error) {
	core := strings.TrimSpace(text)
	if core == "" || urlLikeRe.MatchString(core) {
		return text, nil
	}
	out, err := o.client.Translate(ctx, []string{core}, targetLang)
	if err != nil {
		return "", err
	}
	if t := strings.TrimSpace(out[0]); t != "" {
		return t, nil
	}
	return text, nil
}

// collect gathers text runs depth-first. A subtree rooted at a blocked tag
// is skipped entirely, descendants included.
func (o *Orchestrator) collect(root *html.Node) []*textRun {
	var runs []*textRun
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, blocked := o.blockedTags[strings.ToLower(n.Data)]; blocked {
				return
			}
		}
		if n.Type == html.TextNode {
			if run := splitRun(n); run != nil {
				runs = append(runs, run)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return runs
}

// splitRun splits a text node into (leading whitespace, core, trailing
// whitespace), returning nil for blank or URL-looking text.
func splitRun(n *html.Node) *textRun {
	s := n.Data
	trimmedLeft := strings.TrimLeftFunc(s, unicode.IsSpace)
	core := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	if core == "" || urlLikeRe.MatchString(core) {
		return nil
	}
	return &textRun{
		node:     n,
		leading:  s[:len(s)-len(trimmedLeft)],
		core:     core,
		trailing: trimmedLeft[len(core):],
	}
}
