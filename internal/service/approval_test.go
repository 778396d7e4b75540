package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"postdeck/internal/model"
	"postdeck/internal/queue"
)

type mockReviewRepository struct {
	createFn      func(ctx context.Context, draftID, requestedBy int64) (*model.Review, error)
	getByIDFn     func(ctx context.Context, reviewID int64) (*model.Review, error)
	decideFn      func(ctx context.Context, reviewID, reviewerID int64, status string, note *string) (*model.Review, error)
	listPendingFn func(ctx context.Context, limit int) ([]model.Review, error)
}

func (m *mockReviewRepository) Create(ctx context.Context, draftID, requestedBy int64) (*model.Review, error) {
	if m.createFn != nil {
		return m.createFn(ctx, draftID, requestedBy)
	}
	return &model.Review{ID: 1, DraftID: draftID, RequestedBy: requestedBy, Status: model.ReviewPending}, nil
}

func (m *mockReviewRepository) GetByID(ctx context.Context, reviewID int64) (*model.Review, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, reviewID)
	}
	return nil, model.ErrReviewNotFound
}

func (m *mockReviewRepository) Decide(ctx context.Context, reviewID, reviewerID int64, status string, note *string) (*model.Review, error) {
	if m.decideFn != nil {
		return m.decideFn(ctx, reviewID, reviewerID, status, note)
	}
	return nil, model.ErrReviewNotFound
}

func (m *mockReviewRepository) ListPending(ctx context.Context, limit int) ([]model.Review, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, limit)
	}
	return []model.Review{}, nil
}

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL, avatarKey string) error {
	return nil
}

func (m *mockUserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return nil, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []queue.PublishEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.PublishEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}

func TestApprovalService_Submit(t *testing.T) {
	var transitions []string
	draftRepo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Text: "ready", Status: model.StatusDraft}, nil
		},
		updateStatusFn: func(ctx context.Context, draftID int64, from []string, to string) error {
			transitions = append(transitions, to)
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewApprovalService(draftRepo, &mockReviewRepository{}, &mockUserRepository{}, publisher)

	review, err := svc.Submit(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.Status != model.ReviewPending {
		t.Errorf("review status = %q, want %q", review.Status, model.ReviewPending)
	}
	if len(transitions) != 1 || transitions[0] != model.StatusPendingApproval {
		t.Errorf("transitions = %v, want [%s]", transitions, model.StatusPendingApproval)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != queue.EventDraftSubmitted {
		t.Errorf("events = %v, want one draft_submitted", publisher.events)
	}
}

func TestApprovalService_Submit_NotOwner(t *testing.T) {
	draftRepo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Status: model.StatusDraft}, nil
		},
	}
	svc := NewApprovalService(draftRepo, &mockReviewRepository{}, &mockUserRepository{}, &mockPublisher{})

	_, err := svc.Submit(context.Background(), 3, 8)
	if !errors.Is(err, model.ErrNotDraftOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotDraftOwner)
	}
}

func TestApprovalService_Submit_WrongStatus(t *testing.T) {
	draftRepo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Status: model.StatusPublished}, nil
		},
	}
	svc := NewApprovalService(draftRepo, &mockReviewRepository{}, &mockUserRepository{}, &mockPublisher{})

	_, err := svc.Submit(context.Background(), 3, 7)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidTransition)
	}
}

func TestApprovalService_Submit_RollsBackOnReviewConflict(t *testing.T) {
	var transitions [][2]string
	draftRepo := &mockDraftRepository{
		getByIDFn: func(ctx context.Context, draftID int64) (*model.Draft, error) {
			return &model.Draft{ID: draftID, UserID: 7, Status: model.StatusDraft}, nil
		},
		updateStatusFn: func(ctx context.Context, draftID int64, from []string, to string) error {
			transitions = append(transitions, [2]string{from[0], to})
			return nil
		},
	}
	reviewRepo := &mockReviewRepository{
		createFn: func(ctx context.Context, draftID, requestedBy int64) (*model.Review, error) {
			return nil, model.ErrReviewPendingExists
		},
	}
	svc := NewApprovalService(draftRepo, reviewRepo, &mockUserRepository{}, &mockPublisher{})

	_, err := svc.Submit(context.Background(), 3, 7)
	if !errors.Is(err, model.ErrReviewPendingExists) {
		t.Fatalf("error = %v, want %v", err, model.ErrReviewPendingExists)
	}
	if len(transitions) != 2 {
		t.Fatalf("got %d transitions, want forward + rollback", len(transitions))
	}
	if transitions[1][1] != model.StatusDraft {
		t.Errorf("rollback moved draft to %q, want %q", transitions[1][1], model.StatusDraft)
	}
}

func TestApprovalService_Decide(t *testing.T) {
	reviewer := &model.User{ID: 2, Username: "rev", Role: model.RoleReviewer}
	editor := &model.User{ID: 3, Username: "ed", Role: model.RoleEditor}

	tests := []struct {
		name       string
		reviewer   *model.User
		reject     bool
		wantErr    error
		wantStatus string
		wantEvent  string
	}{
		{
			name:       "approve",
			reviewer:   reviewer,
			wantStatus: model.StatusApproved,
			wantEvent:  queue.EventDraftApproved,
		},
		{
			name:       "reject",
			reviewer:   reviewer,
			reject:     true,
			wantStatus: model.StatusRejected,
			wantEvent:  queue.EventDraftRejected,
		},
		{
			name:     "editor cannot decide",
			reviewer: editor,
			wantErr:  model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotStatus string
			draftRepo := &mockDraftRepository{
				updateStatusFn: func(ctx context.Context, draftID int64, from []string, to string) error {
					gotStatus = to
					return nil
				},
			}
			reviewRepo := &mockReviewRepository{
				decideFn: func(ctx context.Context, reviewID, reviewerID int64, status string, note *string) (*model.Review, error) {
					now := time.Now()
					return &model.Review{
						ID: reviewID, DraftID: 3, RequestedBy: 7,
						ReviewedBy: &reviewerID, Status: status, DecidedAt: &now,
					}, nil
				},
			}
			publisher := &mockPublisher{}
			svc := NewApprovalService(draftRepo, reviewRepo, &mockUserRepository{}, publisher)

			var err error
			if tt.reject {
				_, err = svc.Reject(context.Background(), 1, tt.reviewer, "needs work")
			} else {
				_, err = svc.Approve(context.Background(), 1, tt.reviewer, "")
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotStatus != tt.wantStatus {
				t.Errorf("draft moved to %q, want %q", gotStatus, tt.wantStatus)
			}
			if len(publisher.events) != 1 || publisher.events[0].Type != tt.wantEvent {
				t.Errorf("events = %v, want one %s", publisher.events, tt.wantEvent)
			}
		})
	}
}

func TestApprovalService_ListPending_EnrichesDrafts(t *testing.T) {
	admin := &model.User{ID: 1, Username: "boss", Role: model.RoleAdmin}

	reviewRepo := &mockReviewRepository{
		listPendingFn: func(ctx context.Context, limit int) ([]model.Review, error) {
			return []model.Review{{ID: 10, DraftID: 3, RequestedBy: 7, Status: model.ReviewPending}}, nil
		},
	}
	draftRepo := &mockDraftRepository{
		getByIDsFn: func(ctx context.Context, draftIDs []int64) ([]model.Draft, error) {
			return []model.Draft{{ID: 3, UserID: 7, Text: "hello"}}, nil
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "author"}, nil
		},
	}
	svc := NewApprovalService(draftRepo, reviewRepo, userRepo, &mockPublisher{})

	reviews, err := svc.ListPending(context.Background(), admin, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(reviews))
	}
	if reviews[0].Draft == nil || reviews[0].Draft.ID != 3 {
		t.Error("review should carry its draft")
	}
	if reviews[0].Requester == nil || reviews[0].Requester.Username != "author" {
		t.Error("review should carry its requester")
	}
}
