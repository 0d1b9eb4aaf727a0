package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultArxivBaseURL is the public arXiv Atom query endpoint.
const DefaultArxivBaseURL = "http://export.arxiv.org/api/query"

// ArxivClient is a Searcher backed by the arXiv Atom API.
type ArxivClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewArxivClient creates an arXiv search client. An empty baseURL uses the
// public arXiv endpoint.
func NewArxivClient(baseURL string, logger *zap.Logger) *ArxivClient {
	if baseURL == "" {
		baseURL = DefaultArxivBaseURL
	}
	return &ArxivClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// atom feed shapes for the arXiv response; only the fields the gateway
// renders into context are decoded.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Links      []atomLink     `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// Search queries arXiv across title, abstract and category fields, sorted by
// relevance. Results are capped at maxResults.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	fielded := fmt.Sprintf("ti:%s OR abs:%s OR cat:%s", query, query, query)

	params := url.Values{}
	params.Set("search_query", fielded)
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	results := make([]Result, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, entryToResult(entry))
	}

	c.logger.Debug("arxiv search complete",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	return results, nil
}

func entryToResult(entry atomEntry) Result {
	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		categories = append(categories, cat.Term)
	}

	var pdfURL string
	for _, link := range entry.Links {
		if link.Title == "pdf" {
			pdfURL = link.Href
			break
		}
	}

	return Result{
		Title:      collapseWhitespace(entry.Title),
		Authors:    authors,
		Abstract:   strings.TrimSpace(entry.Summary),
		Published:  atomDate(entry.Published),
		Updated:    atomDate(entry.Updated),
		Categories: categories,
		URL:        entry.ID,
		PDFURL:     pdfURL,
	}
}

// atomDate reduces an Atom timestamp to a YYYY-MM-DD date. Unparseable
// values pass through unchanged.
func atomDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}

// collapseWhitespace normalizes the line-wrapped titles arXiv produces into a
// single-line string.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
