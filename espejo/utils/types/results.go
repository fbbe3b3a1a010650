package types

// ReaderResult is the terminal payload of reader mode. It is returned once
// and never cached.
type ReaderResult struct {
	Title       string `json:"title"`
	SourceURL   string `json:"sourceUrl"`
	ContentHTML string `json:"contentHtml"`
}

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type LinksResult struct {
	SourceURL string `json:"sourceUrl"`
	Links     []Link `json:"links"`
}

type PdfResult struct {
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
	Bytes     int64  `json:"bytes"`
}
