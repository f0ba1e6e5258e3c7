package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrRateLimited signals the search endpoint refused the request; callers are
// expected to degrade to an empty result set instead of failing the round.
var ErrRateLimited = errors.New("search: rate limited")

// Result is one search hit.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Transport executes one query against a web-search backend.
type Transport interface {
	Search(ctx context.Context, query string, topK int) ([]Result, error)
}

const (
	ddgURL    = "https://duckduckgo.com/html/"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Agent/1.0"
)

// DuckDuckGo scrapes the HTML results endpoint.
type DuckDuckGo struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{HTTPClient: &http.Client{Timeout: searchTimeout()}}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = 5
	}
	base := d.BaseURL
	if base == "" {
		base = ddgURL
	}
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	ua := d.UserAgent
	if ua == "" {
		ua = userAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := d.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: searchTimeout()}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	// DDG answers 429 or a 202 challenge page when scraped too hard.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusAccepted {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("search: status " + resp.Status)
	}
	lr := io.LimitedReader{R: resp.Body, N: 2 << 20}
	return parseResults(&lr, topK)
}

// parseResults walks the result page and pairs result__a anchors with
// result__snippet nodes by position.
func parseResults(r io.Reader, topK int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var links []Result
	var snippets []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				links = append(links, Result{URL: attr(n, "href"), Title: nodeText(n)})
			case hasClass(n, "result__snippet"):
				snippets = append(snippets, nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	results := make([]Result, 0, topK)
	for i, link := range links {
		if len(results) >= topK {
			break
		}
		if i < len(snippets) {
			link.Snippet = snippets[i]
		}
		results = append(results, link)
	}
	return results, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func searchTimeout() time.Duration {
	if v := os.Getenv("SEARCH_TIMEOUT_MS"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			return ms
		}
	}
	return 12 * time.Second
}
