// Package augment implements the context augmentation pipeline: when the
// last user message carries the trigger token, the extracted query is sent to
// the search collaborator and the results are injected ahead of the user's
// original text. The pipeline fails open - search errors and empty results
// forward the conversation unchanged.
package augment

import (
	"context"

	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/search"
)

// DefaultTrigger is the token that activates augmentation.
const DefaultTrigger = "academic_search"

// maxResults caps how many papers are requested per query.
const maxResults = 5

// Pipeline rewrites the trailing user message of a conversation with
// retrieved context. A disabled Pipeline is the identity transform.
type Pipeline struct {
	enabled  bool
	trigger  string
	searcher search.Searcher
	logger   *zap.Logger
}

// New creates a Pipeline. An empty trigger uses DefaultTrigger.
func New(enabled bool, trigger string, searcher search.Searcher, logger *zap.Logger) *Pipeline {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	return &Pipeline{
		enabled:  enabled,
		trigger:  trigger,
		searcher: searcher,
		logger:   logger,
	}
}

// Apply returns the conversation to forward upstream. Only the last message
// is ever rewritten, and only when its role is "user" and its content carries
// the trigger token. The rewritten message keeps the original content intact
// after the injected context block; earlier messages are shared with the
// input slice, not copied.
func (p *Pipeline) Apply(ctx context.Context, messages []llm.Message) []llm.Message {
	if !p.enabled || len(messages) == 0 {
		return messages
	}

	last := messages[len(messages)-1]
	if last.Role != llm.RoleUser {
		return messages
	}

	query, ok := ExtractQuery(last.Content, p.trigger)
	if !ok {
		return messages
	}

	results, err := p.searcher.Search(ctx, query, maxResults)
	if err != nil {
		p.logger.Warn("search failed, forwarding without augmentation",
			zap.String("query", query),
			zap.Error(err),
		)
		return messages
	}
	if len(results) == 0 {
		p.logger.Debug("search returned no results, forwarding without augmentation",
			zap.String("query", query),
		)
		return messages
	}

	p.logger.Info("augmenting conversation with search context",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	out := make([]llm.Message, len(messages))
	copy(out, messages)
	out[len(out)-1] = llm.Message{
		Role:    last.Role,
		Content: search.FormatResults(results) + "\n\nUser Query: " + last.Content,
	}
	return out
}
