package service

import (
	"context"
	"log"
	"time"

	"postdeck/internal/cache"
	"postdeck/internal/engagement"
	"postdeck/internal/model"
	"postdeck/internal/queue"
	"postdeck/internal/repository"
)

// ScheduleService puts approved drafts on the publishing calendar. Calendar
// reads are cache-first: a per-user sorted set scored by publish time, warmed
// from the database on miss.
type ScheduleService struct {
	draftRepo     repository.DraftRepository
	calendarCache cache.CalendarCache
	publisher     queue.Publisher
}

func NewScheduleService(draftRepo repository.DraftRepository, calendarCache cache.CalendarCache, publisher queue.Publisher) *ScheduleService {
	return &ScheduleService{
		draftRepo:     draftRepo,
		calendarCache: calendarCache,
		publisher:     publisher,
	}
}

// Schedule places an approved draft on the calendar at a future time.
func (s *ScheduleService) Schedule(ctx context.Context, draftID, userID int64, req *model.ScheduleRequest) (*model.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, model.ErrNotDraftOwner
	}
	if draft.Status != model.StatusApproved && draft.Status != model.StatusScheduled {
		return nil, model.ErrNotApproved
	}
	if !req.ScheduledAt.After(time.Now()) {
		return nil, model.ErrScheduleInPast
	}

	platforms := []string(draft.Platforms)
	if len(req.Platforms) > 0 {
		platforms = req.Platforms
	}
	if len(platforms) == 0 {
		return nil, model.ErrNoPlatformsChosen
	}
	for _, p := range platforms {
		if !engagement.KnownPlatform(p) {
			return nil, model.ErrUnknownPlatform
		}
	}

	// Rescheduling an already-scheduled draft just moves the time.
	err = s.draftRepo.SetSchedule(ctx, draftID, req.ScheduledAt, req.Platforms,
		[]string{model.StatusApproved, model.StatusScheduled})
	if err != nil {
		return nil, err
	}

	if err := s.calendarCache.Add(ctx, userID, draftID, req.ScheduledAt.Unix()); err != nil {
		log.Printf("[ScheduleService] Calendar cache add failed for draft %d: %v", draftID, err)
	}
	s.publish(ctx, queue.NewPostScheduledEvent(draftID, userID, req.ScheduledAt))

	return s.draftRepo.GetByID(ctx, draftID)
}

// Unschedule pulls a scheduled draft off the calendar; it returns to
// approved status.
func (s *ScheduleService) Unschedule(ctx context.Context, draftID, userID int64) (*model.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, model.ErrNotDraftOwner
	}
	if draft.Status != model.StatusScheduled {
		return nil, model.ErrNotScheduled
	}

	if err := s.draftRepo.ClearSchedule(ctx, draftID); err != nil {
		return nil, err
	}

	if err := s.calendarCache.Remove(ctx, userID, draftID); err != nil {
		log.Printf("[ScheduleService] Calendar cache remove failed for draft %d: %v", draftID, err)
	}
	s.publish(ctx, queue.NewPostUnscheduledEvent(draftID, userID))

	return s.draftRepo.GetByID(ctx, draftID)
}

// Calendar returns scheduled posts in [from, to]. The cache is consulted
// first; a cold cache falls back to the database and warms the cache for
// next time.
func (s *ScheduleService) Calendar(ctx context.Context, userID int64, from, to time.Time) (*model.CalendarResponse, error) {
	exists, err := s.calendarCache.Exists(ctx, userID)
	if err != nil {
		log.Printf("[ScheduleService] Calendar cache check failed for user %d: %v", userID, err)
	}

	if err == nil && exists {
		draftIDs, times, err := s.calendarCache.Range(ctx, userID, from.Unix(), to.Unix())
		if err == nil {
			return s.hydrate(ctx, draftIDs, times)
		}
		log.Printf("[ScheduleService] Calendar cache range failed for user %d: %v", userID, err)
	}

	drafts, err := s.draftRepo.ListScheduledRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]model.CalendarEntry, 0, len(drafts))
	for i := range drafts {
		entries = append(entries, model.CalendarEntry{
			DraftID:     drafts[i].ID,
			ScheduledAt: *drafts[i].ScheduledAt,
			Draft:       &drafts[i],
		})
	}

	go s.warm(userID)

	return &model.CalendarResponse{Entries: entries}, nil
}

// BestTimes returns the default posting windows per platform.
func (s *ScheduleService) BestTimes(platforms []string) (*model.BestTimesResponse, error) {
	if len(platforms) == 0 {
		platforms = engagement.Platforms()
	}
	out := make(map[string][]string, len(platforms))
	for _, p := range platforms {
		if !engagement.KnownPlatform(p) {
			return nil, model.ErrUnknownPlatform
		}
		out[p] = engagement.BestTimes(p)
	}
	return &model.BestTimesResponse{BestTimes: out}, nil
}

func (s *ScheduleService) hydrate(ctx context.Context, draftIDs, times []int64) (*model.CalendarResponse, error) {
	drafts, err := s.draftRepo.GetByIDs(ctx, draftIDs)
	if err != nil {
		return nil, err
	}
	draftByID := make(map[int64]*model.Draft, len(drafts))
	for i := range drafts {
		draftByID[drafts[i].ID] = &drafts[i]
	}

	entries := make([]model.CalendarEntry, 0, len(draftIDs))
	for i, id := range draftIDs {
		entry := model.CalendarEntry{
			DraftID:     id,
			ScheduledAt: time.Unix(times[i], 0),
		}
		// Stale cache members (published or deleted drafts) are skipped.
		draft, ok := draftByID[id]
		if !ok || draft.Status != model.StatusScheduled {
			continue
		}
		entry.Draft = draft
		entries = append(entries, entry)
	}
	return &model.CalendarResponse{Entries: entries}, nil
}

func (s *ScheduleService) warm(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	posts, err := s.draftRepo.ScheduledForWarm(ctx, userID, cache.CalendarCacheCap)
	if err != nil {
		log.Printf("[ScheduleService] Calendar warm query failed for user %d: %v", userID, err)
		return
	}
	if err := s.calendarCache.Warm(ctx, userID, posts); err != nil {
		log.Printf("[ScheduleService] Calendar warm failed for user %d: %v", userID, err)
	}
}

func (s *ScheduleService) publish(ctx context.Context, event queue.PublishEvent) {
	if _, err := s.publisher.Publish(ctx, queue.StreamPublish, event); err != nil {
		log.Printf("[ScheduleService] Failed to publish %s event: %v", event.Type, err)
	}
}
