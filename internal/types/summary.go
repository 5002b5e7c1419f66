package types

import "time"

// Summary is a short model-generated summary of one article.
type Summary struct {
	ArticleID   string    `json:"article_id"`
	Model       string    `json:"model"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}
