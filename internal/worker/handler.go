package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"postdeck/internal/ayrshare"
	"postdeck/internal/cache"
	"postdeck/internal/model"
	"postdeck/internal/notify"
	"postdeck/internal/queue"
)

// DraftStore is the slice of the draft repository workers need. Abstracting
// it keeps worker tests free of a database.
type DraftStore interface {
	GetByID(ctx context.Context, draftID int64) (*model.Draft, error)
	MarkPublished(ctx context.Context, draftID int64, externalPostID string) error
	MarkFailed(ctx context.Context, draftID int64, reason string) error
}

// UserProvider resolves user ids to accounts for notification text.
type UserProvider interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Delivery pushes a finished post out to the platforms.
type Delivery interface {
	CreatePost(ctx context.Context, req ayrshare.PostRequest) (*ayrshare.PostResponse, error)
}

// InboxSyncer pulls new direct messages for one user and platform.
type InboxSyncer interface {
	Sync(ctx context.Context, userID int64, platform string) (int, error)
}

// Handler processes publish-stream events.
type Handler struct {
	drafts        DraftStore
	users         UserProvider
	calendarCache cache.CalendarCache
	delivery      Delivery
	notifier      notify.Notifier
	inbox         InboxSyncer // Can be nil if inbox sync not wired
}

// NewHandler creates a new event handler.
func NewHandler(drafts DraftStore, users UserProvider, calendarCache cache.CalendarCache, delivery Delivery, notifier notify.Notifier) *Handler {
	return &Handler{
		drafts:        drafts,
		users:         users,
		calendarCache: calendarCache,
		delivery:      delivery,
		notifier:      notifier,
	}
}

// SetInboxSyncer sets the inbox syncer (optional, for inbox_sync_due events).
func (h *Handler) SetInboxSyncer(s InboxSyncer) {
	h.inbox = s
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.PublishEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventDraftSubmitted:
		err = h.handleDraftSubmitted(ctx, event)
	case queue.EventDraftApproved:
		err = h.handleDraftDecided(ctx, event, "approved")
	case queue.EventDraftRejected:
		err = h.handleDraftDecided(ctx, event, "rejected")
	case queue.EventPostScheduled:
		err = h.handlePostScheduled(ctx, event)
	case queue.EventPostUnscheduled:
		err = h.handlePostUnscheduled(ctx, event)
	case queue.EventPublishDue:
		err = h.handlePublishDue(ctx, event)
	case queue.EventInboxSyncDue:
		err = h.handleInboxSyncDue(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handleDraftSubmitted announces the new review in the Slack channel.
func (h *Handler) handleDraftSubmitted(ctx context.Context, event queue.PublishEvent) error {
	log.Printf("[Worker] DraftSubmitted: draft=%d user=%d review=%d",
		event.DraftID, event.UserID, event.ReviewID)

	draft, err := h.drafts.GetByID(ctx, event.DraftID)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}

	author := fmt.Sprintf("user %d", event.UserID)
	if u, err := h.users.GetByID(ctx, event.UserID); err == nil {
		author = u.Username
	}

	if err := h.notifier.DraftSubmitted(draft.ID, author, draft.Text, draft.Platforms); err != nil {
		return fmt.Errorf("notify submitted: %w", err)
	}
	return nil
}

// handleDraftDecided announces the decision.
func (h *Handler) handleDraftDecided(ctx context.Context, event queue.PublishEvent, decision string) error {
	log.Printf("[Worker] DraftDecided: draft=%d reviewer=%d decision=%s",
		event.DraftID, event.ReviewerID, decision)

	reviewer := fmt.Sprintf("user %d", event.ReviewerID)
	if u, err := h.users.GetByID(ctx, event.ReviewerID); err == nil {
		reviewer = u.Username
	}

	if err := h.notifier.DraftDecided(event.DraftID, reviewer, decision, event.Note); err != nil {
		return fmt.Errorf("notify decided: %w", err)
	}
	return nil
}

// handlePostScheduled mirrors the schedule into the calendar cache. The
// service already wrote it on the request path; this repairs the cache if
// that write was lost.
func (h *Handler) handlePostScheduled(ctx context.Context, event queue.PublishEvent) error {
	log.Printf("[Worker] PostScheduled: draft=%d user=%d at=%d",
		event.DraftID, event.UserID, event.ScheduledAt)

	if err := h.calendarCache.Add(ctx, event.UserID, event.DraftID, event.ScheduledAt); err != nil {
		return fmt.Errorf("calendar add: %w", err)
	}
	return nil
}

// handlePostUnscheduled drops the entry from the calendar cache.
func (h *Handler) handlePostUnscheduled(ctx context.Context, event queue.PublishEvent) error {
	log.Printf("[Worker] PostUnscheduled: draft=%d user=%d", event.DraftID, event.UserID)

	if err := h.calendarCache.Remove(ctx, event.UserID, event.DraftID); err != nil {
		return fmt.Errorf("calendar remove: %w", err)
	}
	return nil
}

// handlePublishDue delivers a claimed draft to the platforms and settles it
// as published or failed. The dispatcher already flipped the row to
// publishing, so a redelivered event finds the draft out of that status and
// becomes a no-op.
func (h *Handler) handlePublishDue(ctx context.Context, event queue.PublishEvent) error {
	log.Printf("[Worker] PublishDue: draft=%d user=%d", event.DraftID, event.UserID)

	draft, err := h.drafts.GetByID(ctx, event.DraftID)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if draft.Status != model.StatusPublishing {
		log.Printf("[Worker] PublishDue: draft=%d status=%s, skipping", draft.ID, draft.Status)
		return nil
	}

	mediaURLs := make([]string, 0, len(draft.Media))
	for _, m := range draft.Media {
		mediaURLs = append(mediaURLs, m.MediaURL)
	}

	resp, err := h.delivery.CreatePost(ctx, ayrshare.PostRequest{
		Post:      draft.Text,
		Platforms: draft.Platforms,
		MediaURLs: mediaURLs,
	})
	if err != nil {
		if markErr := h.drafts.MarkFailed(ctx, draft.ID, err.Error()); markErr != nil {
			return fmt.Errorf("mark failed: %w", markErr)
		}
		log.Printf("[Worker] PublishDue: draft=%d delivery failed: %v", draft.ID, err)
		return nil
	}

	if err := h.drafts.MarkPublished(ctx, draft.ID, resp.ID); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	// Published posts leave the calendar.
	if err := h.calendarCache.Remove(ctx, event.UserID, draft.ID); err != nil {
		log.Printf("[Worker] PublishDue: calendar remove failed for draft=%d: %v", draft.ID, err)
	}

	log.Printf("[Worker] PublishDue DONE: draft=%d external=%s", draft.ID, resp.ID)
	return nil
}

// handleInboxSyncDue pulls new direct messages for one user and platform.
func (h *Handler) handleInboxSyncDue(ctx context.Context, event queue.PublishEvent) error {
	if h.inbox == nil {
		log.Printf("[Worker] InboxSyncDue: inbox syncer not set, skipping")
		return nil
	}

	inserted, err := h.inbox.Sync(ctx, event.UserID, event.Platform)
	if err != nil {
		return fmt.Errorf("inbox sync: %w", err)
	}

	log.Printf("[Worker] InboxSyncDue DONE: user=%d platform=%s new=%d",
		event.UserID, event.Platform, inserted)
	return nil
}
