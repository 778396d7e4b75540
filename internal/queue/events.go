package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the publish stream.
const (
	EventDraftSubmitted  = "draft_submitted"
	EventDraftApproved   = "draft_approved"
	EventDraftRejected   = "draft_rejected"
	EventPostScheduled   = "post_scheduled"
	EventPostUnscheduled = "post_unscheduled"
	EventPublishDue      = "publish_due"
	EventInboxSyncDue    = "inbox_sync_due"
)

// Stream names
const (
	StreamPublish = "stream:publish"
)

// Consumer group name for publish workers
const (
	ConsumerGroupPublish = "publish_workers"
)

// PublishEvent is the single event shape flowing through the publish
// stream. Fields are populated per event type.
type PublishEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the event occurred

	// Draft events
	DraftID int64 `json:"draft_id,omitempty"`
	UserID  int64 `json:"user_id,omitempty"`

	// Review events
	ReviewID   int64  `json:"review_id,omitempty"`
	ReviewerID int64  `json:"reviewer_id,omitempty"`
	Note       string `json:"note,omitempty"`

	// Scheduling events
	ScheduledAt int64 `json:"scheduled_at,omitempty"`

	// Inbox sync
	Platform string `json:"platform,omitempty"`
}

// NewDraftSubmittedEvent fires when a draft enters review. The worker
// notifies the review channel.
func NewDraftSubmittedEvent(draftID, userID, reviewID int64) PublishEvent {
	return PublishEvent{
		Type:      EventDraftSubmitted,
		Timestamp: time.Now().Unix(),
		DraftID:   draftID,
		UserID:    userID,
		ReviewID:  reviewID,
	}
}

// NewDraftApprovedEvent fires when a reviewer approves a draft.
func NewDraftApprovedEvent(draftID, userID, reviewerID int64, note string) PublishEvent {
	return PublishEvent{
		Type:       EventDraftApproved,
		Timestamp:  time.Now().Unix(),
		DraftID:    draftID,
		UserID:     userID,
		ReviewerID: reviewerID,
		Note:       note,
	}
}

// NewDraftRejectedEvent fires when a reviewer rejects a draft.
func NewDraftRejectedEvent(draftID, userID, reviewerID int64, note string) PublishEvent {
	return PublishEvent{
		Type:       EventDraftRejected,
		Timestamp:  time.Now().Unix(),
		DraftID:    draftID,
		UserID:     userID,
		ReviewerID: reviewerID,
		Note:       note,
	}
}

// NewPostScheduledEvent fires when a draft lands on the calendar. The
// worker updates the calendar cache.
func NewPostScheduledEvent(draftID, userID int64, scheduledAt time.Time) PublishEvent {
	return PublishEvent{
		Type:        EventPostScheduled,
		Timestamp:   time.Now().Unix(),
		DraftID:     draftID,
		UserID:      userID,
		ScheduledAt: scheduledAt.Unix(),
	}
}

// NewPostUnscheduledEvent fires when a scheduled draft is pulled back.
func NewPostUnscheduledEvent(draftID, userID int64) PublishEvent {
	return PublishEvent{
		Type:      EventPostUnscheduled,
		Timestamp: time.Now().Unix(),
		DraftID:   draftID,
		UserID:    userID,
	}
}

// NewPublishDueEvent fires when the dispatcher finds a scheduled draft
// whose time has come. The worker delivers it to the publishing API.
func NewPublishDueEvent(draftID, userID int64) PublishEvent {
	return PublishEvent{
		Type:      EventPublishDue,
		Timestamp: time.Now().Unix(),
		DraftID:   draftID,
		UserID:    userID,
	}
}

// NewInboxSyncDueEvent fires periodically per user and platform. The
// worker pulls new direct messages.
func NewInboxSyncDueEvent(userID int64, platform string) PublishEvent {
	return PublishEvent{
		Type:      EventInboxSyncDue,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Platform:  platform,
	}
}

// ToMap converts the event for Redis XADD. Streams store field-value
// pairs, so the payload is JSON in a "data" field.
func (e PublishEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParsePublishEvent parses a PublishEvent from Redis stream message values.
func ParsePublishEvent(values map[string]interface{}) (PublishEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return PublishEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event PublishEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return PublishEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
