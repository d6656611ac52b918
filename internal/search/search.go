// Package search finds public LinkedIn profiles and postings through a web
// search engine ("X-Ray" search), without a LinkedIn API.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Result is one search hit
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher runs a text query and returns up to limit results.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// DefaultInterval is the minimum gap between two outgoing searches.
const DefaultInterval = 300 * time.Millisecond

// DefaultEndpoint is DuckDuckGo's JavaScript-free results page.
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DuckDuckGo implements Searcher against the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	Endpoint  string
	Client    *http.Client
	UserAgent string
	limiter   *rate.Limiter
}

// NewDuckDuckGo creates a searcher that waits at least interval between requests.
func NewDuckDuckGo(interval time.Duration) *DuckDuckGo {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &DuckDuckGo{
		Endpoint:  DefaultEndpoint,
		Client:    &http.Client{Timeout: 20 * time.Second},
		UserAgent: defaultUserAgent,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Search implements Searcher
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint+"?"+form.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	return parseResults(doc, limit), nil
}

func parseResults(doc *goquery.Document, limit int) []Result {
	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(results) >= limit {
			return false
		}
		a := s.Find(".result__a").First()
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		link := unwrapRedirect(href)
		if link == "" {
			return true
		}
		results = append(results, Result{
			Title:   cleanText(a.Text()),
			URL:     link,
			Snippet: cleanText(s.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return results
}

// unwrapRedirect turns DuckDuckGo's /l/?uddg=<target> links into the target.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		u.Scheme = "https"
		return u.String()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
