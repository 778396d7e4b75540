package model

import (
	"errors"
	"time"
)

// ScheduleRequest is the body for POST /drafts/{id}/schedule.
type ScheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	// Platforms optionally overrides the draft's platform set at schedule
	// time. Empty means keep the draft's own selection.
	Platforms []string `json:"platforms"`
}

// CalendarEntry is one scheduled post in a calendar range response.
type CalendarEntry struct {
	DraftID     int64     `json:"draft_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Draft       *Draft    `json:"draft,omitempty"`
}

// CalendarResponse is the calendar range query result.
type CalendarResponse struct {
	Entries []CalendarEntry `json:"entries"`
}

// BestTimesResponse maps platform id to its default posting times.
type BestTimesResponse struct {
	BestTimes map[string][]string `json:"best_times"`
}

var (
	ErrNotApproved       = errors.New("draft must be approved before scheduling")
	ErrScheduleInPast    = errors.New("scheduled time is in the past")
	ErrNotScheduled      = errors.New("draft is not scheduled")
	ErrNoPlatformsChosen = errors.New("at least one platform is required")
)
