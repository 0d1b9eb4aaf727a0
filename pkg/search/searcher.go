// Package search provides the academic paper search collaborator used by the
// augmentation pipeline: a Searcher interface, an arXiv-backed implementation,
// and a deterministic renderer that turns results into an LLM context block.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single paper returned by a search.
type Result struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Abstract   string   `json:"abstract"`
	Published  string   `json:"published"` // YYYY-MM-DD
	Updated    string   `json:"updated"`   // YYYY-MM-DD
	Categories []string `json:"categories"`
	URL        string   `json:"url"`
	PDFURL     string   `json:"pdf_url"`
}

// Searcher finds papers for a query, returning at most maxResults entries
// ranked by relevance.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// FormatResults renders search results into a context block for the LLM.
// The rendering is deterministic for identical inputs.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No academic papers found for this query."
	}

	var b strings.Builder
	b.WriteString("=== Academic Research Papers from arXiv ===\n")

	for i, paper := range results {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, paper.Title)
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(paper.Authors, ", "))
		fmt.Fprintf(&b, "Published: %s\n", paper.Published)
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(paper.Categories, ", "))
		fmt.Fprintf(&b, "URL: %s\n", paper.URL)
		fmt.Fprintf(&b, "\nAbstract:\n%s\n", paper.Abstract)
		b.WriteString("\n" + strings.Repeat("-", 80) + "\n")
	}

	b.WriteString("\n=== End of Academic Research Papers ===\n")

	return b.String()
}
