package summarize

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/daniela/corpus-insights/internal/llm"
	"github.com/daniela/corpus-insights/internal/prompts"
	"github.com/daniela/corpus-insights/internal/types"
)

// summaryInputLimit caps how much article text goes into a single request.
// Full papers routinely exceed the useful context for a short summary.
const summaryInputLimit = 20000

// truncateInput cuts text to at most limit bytes without splitting a rune.
func truncateInput(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// Gemini summarizes articles with the synchronous Gemini API.
type Gemini struct {
	client   llm.Client
	maxWords int
}

// NewGemini creates a Gemini-backed summarizer.
func NewGemini(ctx context.Context, apiKey string, maxWords int) (*Gemini, error) {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, &APICallError{Message: "failed to create LLM client", Cause: err}
	}

	return &Gemini{client: client, maxWords: maxWords}, nil
}

// NewGeminiWithClient creates a Gemini summarizer over an existing client.
// Used by tests.
func NewGeminiWithClient(client llm.Client, maxWords int) *Gemini {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &Gemini{client: client, maxWords: maxWords}
}

// Summarize generates a short summary for one article.
func (g *Gemini) Summarize(ctx context.Context, article types.Article, text string) (*types.Summary, error) {
	prompt := buildSummaryPrompt(article.Title, text, g.maxWords)

	responseText, err := g.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate summary", Cause: err}
	}

	summary := strings.TrimSpace(responseText)
	if summary == "" {
		return nil, &ParseError{Message: "model returned an empty summary"}
	}

	return newSummary(article.ID, g.client.GetModel(llm.TierLite), summary), nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// buildSummaryPrompt constructs the summarization prompt for one article.
func buildSummaryPrompt(title, text string, maxWords int) string {
	text = truncateInput(text, summaryInputLimit)

	template := prompts.MustGet("summarize.json", "summarize-article")
	return prompts.Format(template, map[string]string{
		"Title":       title,
		"MaxWords":    strconv.Itoa(maxWords),
		"ArticleText": text,
	})
}
