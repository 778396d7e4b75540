package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"postdeck/internal/cache"
	"postdeck/internal/model"
)

// errAnyValidation marks cases where any validation error is acceptable.
var errAnyValidation = errors.New("any validation error")

// mockDraftRepository implements repository.DraftRepository with per-test
// function fields, so tests run without a database.
type mockDraftRepository struct {
	createFn             func(ctx context.Context, userID int64, text string, platforms []string, media []model.MediaInput) (*model.Draft, error)
	getByIDFn            func(ctx context.Context, draftID int64) (*model.Draft, error)
	getByIDsFn           func(ctx context.Context, draftIDs []int64) ([]model.Draft, error)
	updateFn             func(ctx context.Context, draftID int64, text *string, platforms *[]string, media *[]model.MediaInput) (*model.Draft, error)
	deleteFn             func(ctx context.Context, draftID, userID int64) error
	listFn               func(ctx context.Context, userID int64, status *string, cursor *string, limit int) ([]model.Draft, *string, error)
	updateStatusFn       func(ctx context.Context, draftID int64, from []string, to string) error
	setScheduleFn        func(ctx context.Context, draftID int64, scheduledAt time.Time, platforms []string, from []string) error
	clearScheduleFn      func(ctx context.Context, draftID int64) error
	claimDueFn           func(ctx context.Context, now time.Time, limit int) ([]model.Draft, error)
	markPublishedFn      func(ctx context.Context, draftID int64, externalPostID string) error
	markFailedFn         func(ctx context.Context, draftID int64, reason string) error
	setLastScoreFn       func(ctx context.Context, draftID int64, score int) error
	listScheduledRangeFn func(ctx context.Context, userID int64, from, to time.Time) ([]model.Draft, error)
	scheduledForWarmFn   func(ctx context.Context, userID int64, limit int) ([]cache.ScheduledPost, error)

	lastScores map[int64]int
}

func (m *mockDraftRepository) Create(ctx context.Context, userID int64, text string, platforms []string, media []model.MediaInput) (*model.Draft, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, text, platforms, media)
	}
	return &model.Draft{ID: 1, UserID: userID, Text: text, Platforms: platforms, Status: model.StatusDraft}, nil
}

func (m *mockDraftRepository) GetByID(ctx context.Context, draftID int64) (*model.Draft, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, draftID)
	}
	return nil, model.ErrDraftNotFound
}

func (m *mockDraftRepository) GetByIDs(ctx context.Context, draftIDs []int64) ([]model.Draft, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, draftIDs)
	}
	return []model.Draft{}, nil
}

func (m *mockDraftRepository) Update(ctx context.Context, draftID int64, text *string, platforms *[]string, media *[]model.MediaInput) (*model.Draft, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, draftID, text, platforms, media)
	}
	return nil, model.ErrDraftNotFound
}

func (m *mockDraftRepository) Delete(ctx context.Context, draftID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, draftID, userID)
	}
	return nil
}

func (m *mockDraftRepository) List(ctx context.Context, userID int64, status *string, cursor *string, limit int) ([]model.Draft, *string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, status, cursor, limit)
	}
	return []model.Draft{}, nil, nil
}

func (m *mockDraftRepository) UpdateStatus(ctx context.Context, draftID int64, from []string, to string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, draftID, from, to)
	}
	return nil
}

func (m *mockDraftRepository) SetSchedule(ctx context.Context, draftID int64, scheduledAt time.Time, platforms []string, from []string) error {
	if m.setScheduleFn != nil {
		return m.setScheduleFn(ctx, draftID, scheduledAt, platforms, from)
	}
	return nil
}

func (m *mockDraftRepository) ClearSchedule(ctx context.Context, draftID int64) error {
	if m.clearScheduleFn != nil {
		return m.clearScheduleFn(ctx, draftID)
	}
	return nil
}

func (m *mockDraftRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.Draft, error) {
	if m.claimDueFn != nil {
		return m.claimDueFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockDraftRepository) MarkPublished(ctx context.Context, draftID int64, externalPostID string) error {
	if m.markPublishedFn != nil {
		return m.markPublishedFn(ctx, draftID, externalPostID)
	}
	return nil
}

func (m *mockDraftRepository) MarkFailed(ctx context.Context, draftID int64, reason string) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, draftID, reason)
	}
	return nil
}

func (m *mockDraftRepository) SetLastScore(ctx context.Context, draftID int64, score int) error {
	if m.lastScores == nil {
		m.lastScores = make(map[int64]int)
	}
	m.lastScores[draftID] = score
	if m.setLastScoreFn != nil {
		return m.setLastScoreFn(ctx, draftID, score)
	}
	return nil
}

func (m *mockDraftRepository) ListScheduledRange(ctx context.Context, userID int64, from, to time.Time) ([]model.Draft, error) {
	if m.listScheduledRangeFn != nil {
		return m.listScheduledRangeFn(ctx, userID, from, to)
	}
	return nil, nil
}

func (m *mockDraftRepository) ScheduledForWarm(ctx context.Context, userID int64, limit int) ([]cache.ScheduledPost, error) {
	if m.scheduledForWarmFn != nil {
		return m.scheduledForWarmFn(ctx, userID, limit)
	}
	return nil, nil
}

func TestDraftService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateDraftRequest
		wantErr error
	}{
		{
			name: "valid text-only draft",
			req:  model.CreateDraftRequest{Text: "hello world", Platforms: []string{"instagram"}},
		},
		{
			name:    "empty draft",
			req:     model.CreateDraftRequest{Text: "   "},
			wantErr: errAnyValidation,
		},
		{
			name:    "text too long",
			req:     model.CreateDraftRequest{Text: strings.Repeat("a", model.MaxDraftTextLength+1)},
			wantErr: model.ErrTextTooLong,
		},
		{
			name: "too many media",
			req: model.CreateDraftRequest{
				Text:  "x",
				Media: make([]model.MediaInput, model.MaxDraftMediaCount+1),
			},
			wantErr: model.ErrTooManyMedia,
		},
		{
			name: "bad media type",
			req: model.CreateDraftRequest{
				Text:  "x",
				Media: []model.MediaInput{{URL: "https://cdn.example.com/a.gif", Type: "gif"}},
			},
			wantErr: model.ErrInvalidMediaType,
		},
		{
			name:    "unknown platform",
			req:     model.CreateDraftRequest{Text: "x", Platforms: []string{"myspace"}},
			wantErr: model.ErrUnknownPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDraftService(&mockDraftRepository{})
			draft, err := svc.Create(context.Background(), 1, &tt.req)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if draft == nil {
					t.Fatal("expected draft, got nil")
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != errAnyValidation && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDraftService_Update_RequiresEditableStatus(t *testing.T) {
	repo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Text: "locked", Status: model.StatusScheduled}, nil
		},
	}
	svc := NewDraftService(repo)

	text := "new text"
	_, err := svc.Update(context.Background(), 1, 7, &model.UpdateDraftRequest{Text: &text})
	if !errors.Is(err, model.ErrDraftNotEditable) {
		t.Errorf("error = %v, want %v", err, model.ErrDraftNotEditable)
	}
}

func TestDraftService_Update_NotOwner(t *testing.T) {
	repo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Status: model.StatusDraft}, nil
		},
	}
	svc := NewDraftService(repo)

	text := "new text"
	_, err := svc.Update(context.Background(), 1, 8, &model.UpdateDraftRequest{Text: &text})
	if !errors.Is(err, model.ErrNotDraftOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotDraftOwner)
	}
}

func TestDraftService_Predict_RecordsScore(t *testing.T) {
	repo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{
				ID:        draftID,
				UserID:    7,
				Text:      "Check out our new release! What do you think?",
				Platforms: []string{"instagram", "twitter"},
				Status:    model.StatusDraft,
				Media:     []model.DraftMedia{{MediaURL: "https://cdn.example.com/a.jpg", MediaType: "image"}},
			}, nil
		},
	}
	svc := NewDraftService(repo)

	resp, err := svc.Predict(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.EngagementScore < 0 || resp.EngagementScore > 100 {
		t.Errorf("score = %d, want 0..100", resp.EngagementScore)
	}
	if resp.EngagementScore != resp.Breakdown.Total() {
		t.Errorf("score %d does not match breakdown total %d",
			resp.EngagementScore, resp.Breakdown.Total())
	}
	if got, ok := repo.lastScores[42]; !ok || got != resp.EngagementScore {
		t.Errorf("recorded score = %d (ok=%v), want %d", got, ok, resp.EngagementScore)
	}
	if len(resp.Suggestions) > 5 {
		t.Errorf("got %d suggestions, want at most 5", len(resp.Suggestions))
	}
}

func TestDraftService_AdhocScore(t *testing.T) {
	svc := NewDraftService(&mockDraftRepository{})

	resp, err := svc.AdhocScore(context.Background(), &model.AdhocScoreRequest{
		Text:      "How to grow your audience? Click the link in bio today!",
		Platforms: []string{"instagram"},
		Media:     []model.MediaInput{{URL: "https://cdn.example.com/v.mp4", Type: "video"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.EngagementScore <= 0 {
		t.Errorf("score = %d, want > 0", resp.EngagementScore)
	}

	_, err = svc.AdhocScore(context.Background(), &model.AdhocScoreRequest{
		Text: strings.Repeat("a", model.MaxDraftTextLength+1),
	})
	if !errors.Is(err, model.ErrTextTooLong) {
		t.Errorf("error = %v, want %v", err, model.ErrTextTooLong)
	}
}

func TestDraftService_List_DefaultsLimit(t *testing.T) {
	var gotLimit int
	repo := &mockDraftRepository{
		listFn: func(ctx context.Context, userID int64, status *string, cursor *string, limit int) ([]model.Draft, *string, error) {
			gotLimit = limit
			next := "5:1700000000"
			return []model.Draft{{ID: 9}}, &next, nil
		},
	}
	svc := NewDraftService(repo)

	resp, err := svc.List(context.Background(), 1, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 20 {
		t.Errorf("limit = %d, want 20", gotLimit)
	}
	if !resp.HasMore || resp.NextCursor == nil {
		t.Error("expected HasMore with a next cursor")
	}
}
