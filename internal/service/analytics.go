package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"postdeck/internal/ayrshare"
	"postdeck/internal/cache"
	"postdeck/internal/model"
	"postdeck/internal/repository"
)

// AnalyticsAPI is the slice of the Ayrshare client analytics needs.
type AnalyticsAPI interface {
	PostAnalytics(ctx context.Context, id string) (*ayrshare.AnalyticsResponse, error)
}

// AnalyticsService serves engagement stats for published posts. Stats are
// cached with a short TTL; Ayrshare is only hit on a cold entry.
type AnalyticsService struct {
	draftRepo repository.DraftRepository
	cache     cache.AnalyticsCache
	api       AnalyticsAPI
}

func NewAnalyticsService(draftRepo repository.DraftRepository, statsCache cache.AnalyticsCache, api AnalyticsAPI) *AnalyticsService {
	return &AnalyticsService{
		draftRepo: draftRepo,
		cache:     statsCache,
		api:       api,
	}
}

// PostStats returns per-platform engagement counters for one published draft.
func (s *AnalyticsService) PostStats(ctx context.Context, draftID, userID int64) (*model.PostAnalytics, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, model.ErrNotDraftOwner
	}
	if draft.Status != model.StatusPublished || draft.ExternalPostID == nil {
		return nil, model.ErrNotPublished
	}

	if stats, ok, err := s.cache.Get(ctx, draftID); err == nil && ok {
		return stats, nil
	} else if err != nil {
		log.Printf("[AnalyticsService] Cache get failed for draft %d: %v", draftID, err)
	}

	resp, err := s.api.PostAnalytics(ctx, *draft.ExternalPostID)
	if err != nil {
		return nil, fmt.Errorf("fetch analytics: %w", err)
	}

	stats := &model.PostAnalytics{
		DraftID:   draftID,
		FetchedAt: time.Now(),
		Platforms: make([]model.PlatformStats, 0, len(resp.Platforms)),
	}
	for platform, counters := range resp.Platforms {
		stats.Platforms = append(stats.Platforms, model.PlatformStats{
			Platform:    platform,
			Likes:       counters.Likes,
			Comments:    counters.Comments,
			Shares:      counters.Shares,
			Impressions: counters.Impressions,
		})
	}
	sort.Slice(stats.Platforms, func(i, j int) bool {
		return stats.Platforms[i].Platform < stats.Platforms[j].Platform
	})

	if err := s.cache.Set(ctx, draftID, stats); err != nil {
		log.Printf("[AnalyticsService] Cache set failed for draft %d: %v", draftID, err)
	}
	return stats, nil
}

// Summary aggregates per-platform totals over the user's recently published
// posts. Each post's stats go through the same cache as PostStats.
func (s *AnalyticsService) Summary(ctx context.Context, userID int64, limit int) (*model.AnalyticsSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	status := model.StatusPublished
	drafts, _, err := s.draftRepo.List(ctx, userID, &status, nil, limit)
	if err != nil {
		return nil, err
	}

	summary := &model.AnalyticsSummary{
		Totals:    make(map[string]model.PlatformStats),
		FetchedAt: time.Now(),
	}
	for _, d := range drafts {
		stats, err := s.PostStats(ctx, d.ID, userID)
		if err != nil {
			log.Printf("[AnalyticsService] Skipping draft %d in summary: %v", d.ID, err)
			continue
		}
		summary.PostCount++
		for _, p := range stats.Platforms {
			total := summary.Totals[p.Platform]
			total.Platform = p.Platform
			total.Likes += p.Likes
			total.Comments += p.Comments
			total.Shares += p.Shares
			total.Impressions += p.Impressions
			summary.Totals[p.Platform] = total
		}
	}
	return summary, nil
}
