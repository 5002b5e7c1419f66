// Package summarize generates short article summaries through a hosted
// language model. Two backends are wired: a synchronous Gemini client and an
// asynchronous hosted inference endpoint.
package summarize

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daniela/corpus-insights/internal/types"
)

// DefaultMaxWords bounds the requested summary length.
const DefaultMaxWords = 80

// DefaultConcurrency bounds the summarization fan-out.
const DefaultConcurrency = 4

// Summarizer produces a summary for one article body.
type Summarizer interface {
	Summarize(ctx context.Context, article types.Article, text string) (*types.Summary, error)
	Close() error
}

// TextReader loads the body of an article from the staging directory.
type TextReader func(article types.Article) (string, error)

// BatchOptions configures SummarizeAll.
type BatchOptions struct {
	Concurrency int
	// OnSummary, when set, is called as each summary lands. Calls may be
	// concurrent with each other.
	OnSummary func(s types.Summary)
}

// SummarizeAll summarizes every article, fanning out up to Concurrency
// workers. Results come back in article order. The first error cancels the
// remaining work.
func SummarizeAll(ctx context.Context, s Summarizer, articles []types.Article, readText TextReader, opts BatchOptions) ([]types.Summary, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]types.Summary, len(articles))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, article := range articles {
		g.Go(func() error {
			text, err := readText(article)
			if err != nil {
				return fmt.Errorf("reading article %s: %w", article.ID, err)
			}

			summary, err := s.Summarize(gCtx, article, text)
			if err != nil {
				return fmt.Errorf("summarizing article %s: %w", article.ID, err)
			}

			results[i] = *summary
			if opts.OnSummary != nil {
				opts.OnSummary(*summary)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// newSummary stamps a freshly generated summary.
func newSummary(articleID, model, text string) *types.Summary {
	return &types.Summary{
		ArticleID:   articleID,
		Model:       model,
		Text:        text,
		GeneratedAt: time.Now().UTC(),
	}
}
