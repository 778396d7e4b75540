package model

import (
	"errors"
	"time"
)

// PlatformStats are the engagement counters for one platform of one
// published post.
type PlatformStats struct {
	Platform    string `json:"platform"`
	Likes       int    `json:"likes"`
	Comments    int    `json:"comments"`
	Shares      int    `json:"shares"`
	Impressions int    `json:"impressions"`
}

// PostAnalytics are the stats of a single published draft.
type PostAnalytics struct {
	DraftID   int64           `json:"draft_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Platforms []PlatformStats `json:"platforms"`
}

// Engagements sums likes, comments, and shares across platforms.
func (a *PostAnalytics) Engagements() int {
	total := 0
	for _, p := range a.Platforms {
		total += p.Likes + p.Comments + p.Shares
	}
	return total
}

// AnalyticsSummary aggregates per-platform totals across published posts.
type AnalyticsSummary struct {
	PostCount int                      `json:"post_count"`
	Totals    map[string]PlatformStats `json:"totals"`
	FetchedAt time.Time                `json:"fetched_at"`
}

var ErrNotPublished = errors.New("draft has not been published")
