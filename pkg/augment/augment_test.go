package augment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/augment"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/search"
)

// fakeSearcher records queries and returns canned results or an error.
type fakeSearcher struct {
	results []search.Result
	err     error

	queries []string
	limits  []int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, maxResults)
	return f.results, f.err
}

func somePapers() []search.Result {
	return []search.Result{
		{
			Title:      "Quantum Computing Advances",
			Authors:    []string{"A. Author"},
			Abstract:   "Recent results.",
			Published:  "2024-03-01",
			Categories: []string{"quant-ph"},
			URL:        "http://arxiv.org/abs/2403.00001v1",
		},
	}
}

func userTurn(content string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are helpful."},
		{Role: llm.RoleUser, Content: content},
	}
}

func TestApplyInjectsContextAndPreservesOriginal(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(true, "", searcher, zap.NewNop())

	original := "academic_search: quantum computing"
	out := p.Apply(context.Background(), userTurn(original))

	require.Len(t, out, 2)
	last := out[1]
	assert.Equal(t, llm.RoleUser, last.Role)

	// The extracted query drives the search; the full original content
	// survives verbatim after the context block.
	require.Equal(t, []string{"quantum computing"}, searcher.queries)
	require.Equal(t, []int{5}, searcher.limits)
	assert.True(t, strings.HasSuffix(last.Content, "\n\nUser Query: "+original))
	assert.Contains(t, last.Content, "=== Academic Research Papers from arXiv ===")
	assert.Contains(t, last.Content, "Quantum Computing Advances")

	// Earlier messages are untouched.
	assert.Equal(t, "You are helpful.", out[0].Content)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(true, "", searcher, zap.NewNop())

	in := userTurn("academic_search: quantum computing")
	p.Apply(context.Background(), in)

	assert.Equal(t, "academic_search: quantum computing", in[1].Content)
}

func TestApplyWithoutTriggerIsIdentity(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(true, "", searcher, zap.NewNop())

	in := userTurn("tell me about quantum computing")
	out := p.Apply(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Empty(t, searcher.queries)
}

func TestApplyDisabledIsIdentity(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(false, "", searcher, zap.NewNop())

	in := userTurn("academic_search: quantum computing")
	out := p.Apply(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Empty(t, searcher.queries)
}

func TestApplySkipsNonUserLastMessage(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(true, "", searcher, zap.NewNop())

	in := []llm.Message{
		{Role: llm.RoleUser, Content: "academic_search: quantum computing"},
		{Role: llm.RoleAssistant, Content: "academic_search is a keyword"},
	}
	out := p.Apply(context.Background(), in)

	assert.Equal(t, in, out)
	assert.Empty(t, searcher.queries)
}

func TestApplyFailsOpenOnSearchError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("search backend down")}
	p := augment.New(true, "", searcher, zap.NewNop())

	in := userTurn("academic_search: quantum computing")
	out := p.Apply(context.Background(), in)

	assert.Equal(t, in, out)
}

func TestApplyFailsOpenOnEmptyResults(t *testing.T) {
	searcher := &fakeSearcher{}
	p := augment.New(true, "", searcher, zap.NewNop())

	in := userTurn("academic_search: quantum computing")
	out := p.Apply(context.Background(), in)

	assert.Equal(t, in, out)
}

func TestApplyEmptyConversationIsIdentity(t *testing.T) {
	p := augment.New(true, "", &fakeSearcher{}, zap.NewNop())

	out := p.Apply(context.Background(), nil)

	assert.Nil(t, out)
}

func TestApplyCustomTrigger(t *testing.T) {
	searcher := &fakeSearcher{results: somePapers()}
	p := augment.New(true, "paper_lookup", searcher, zap.NewNop())

	p.Apply(context.Background(), userTurn("paper_lookup: sparse attention"))

	require.Equal(t, []string{"sparse attention"}, searcher.queries)
}
