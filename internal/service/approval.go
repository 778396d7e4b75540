package service

import (
	"context"
	"log"

	"postdeck/internal/model"
	"postdeck/internal/queue"
	"postdeck/internal/repository"
)

// ApprovalService runs the review workflow: submit for approval, approve,
// reject. Side effects (Slack notifications) ride the publish stream so a
// slow channel never blocks the request path.
type ApprovalService struct {
	draftRepo  repository.DraftRepository
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewApprovalService(draftRepo repository.DraftRepository, reviewRepo repository.ReviewRepository, userRepo repository.UserRepository, publisher queue.Publisher) *ApprovalService {
	return &ApprovalService{
		draftRepo:  draftRepo,
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Submit moves an editable draft into pending approval and opens a review.
func (s *ApprovalService) Submit(ctx context.Context, draftID, userID int64) (*model.Review, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, model.ErrNotDraftOwner
	}
	if !draft.Editable() {
		return nil, model.ErrInvalidTransition
	}

	if err := s.draftRepo.UpdateStatus(ctx, draftID,
		[]string{model.StatusDraft, model.StatusRejected}, model.StatusPendingApproval); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.Create(ctx, draftID, userID)
	if err != nil {
		// Roll the status back so the draft stays editable.
		if rbErr := s.draftRepo.UpdateStatus(ctx, draftID,
			[]string{model.StatusPendingApproval}, draft.Status); rbErr != nil {
			log.Printf("[ApprovalService] Rollback failed for draft %d: %v", draftID, rbErr)
		}
		return nil, err
	}

	s.publish(ctx, queue.NewDraftSubmittedEvent(draftID, userID, review.ID))
	return review, nil
}

// Approve settles a pending review in favor of the draft.
func (s *ApprovalService) Approve(ctx context.Context, reviewID int64, reviewer *model.User, note string) (*model.Review, error) {
	return s.decide(ctx, reviewID, reviewer, model.ReviewApproved, note)
}

// Reject settles a pending review against the draft; it goes back to editing.
func (s *ApprovalService) Reject(ctx context.Context, reviewID int64, reviewer *model.User, note string) (*model.Review, error) {
	return s.decide(ctx, reviewID, reviewer, model.ReviewRejected, note)
}

func (s *ApprovalService) decide(ctx context.Context, reviewID int64, reviewer *model.User, status, note string) (*model.Review, error) {
	if !reviewer.CanReview() {
		return nil, model.ErrForbidden
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	review, err := s.reviewRepo.Decide(ctx, reviewID, reviewer.ID, status, notePtr)
	if err != nil {
		return nil, err
	}

	draftStatus := model.StatusApproved
	event := queue.NewDraftApprovedEvent(review.DraftID, review.RequestedBy, reviewer.ID, note)
	if status == model.ReviewRejected {
		draftStatus = model.StatusRejected
		event = queue.NewDraftRejectedEvent(review.DraftID, review.RequestedBy, reviewer.ID, note)
	}

	if err := s.draftRepo.UpdateStatus(ctx, review.DraftID,
		[]string{model.StatusPendingApproval}, draftStatus); err != nil {
		return nil, err
	}

	s.publish(ctx, event)
	return review, nil
}

// ListPending returns the review queue enriched with drafts and requesters,
// for reviewers.
func (s *ApprovalService) ListPending(ctx context.Context, user *model.User, limit int) ([]model.Review, error) {
	if !user.CanReview() {
		return nil, model.ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	reviews, err := s.reviewRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	draftIDs := make([]int64, len(reviews))
	for i, r := range reviews {
		draftIDs[i] = r.DraftID
	}
	drafts, err := s.draftRepo.GetByIDs(ctx, draftIDs)
	if err != nil {
		return nil, err
	}
	draftByID := make(map[int64]model.Draft, len(drafts))
	for _, d := range drafts {
		draftByID[d.ID] = d
	}

	for i := range reviews {
		if d, ok := draftByID[reviews[i].DraftID]; ok {
			draft := d
			reviews[i].Draft = &draft
			if author, err := s.userRepo.GetByID(ctx, d.UserID); err == nil {
				reviews[i].Requester = &model.UserSummary{
					ID:          author.ID,
					Username:    author.Username,
					DisplayName: author.DisplayName,
					AvatarURL:   author.AvatarURL,
				}
			}
		}
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

func (s *ApprovalService) publish(ctx context.Context, event queue.PublishEvent) {
	if _, err := s.publisher.Publish(ctx, queue.StreamPublish, event); err != nil {
		log.Printf("[ApprovalService] Failed to publish %s event: %v", event.Type, err)
	}
}
