package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"postdeck/internal/engagement"
	"postdeck/internal/model"
	"postdeck/internal/repository"
)

// DraftService handles draft CRUD and engagement prediction.
type DraftService struct {
	repo repository.DraftRepository
}

func NewDraftService(repo repository.DraftRepository) *DraftService {
	return &DraftService{repo: repo}
}

// Create validates and stores a new draft in draft status.
func (s *DraftService) Create(ctx context.Context, userID int64, req *model.CreateDraftRequest) (*model.Draft, error) {
	if err := validateContent(req.Text, req.Platforms, req.Media); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userID, req.Text, req.Platforms, req.Media)
}

// Get fetches a draft, enforcing ownership.
func (s *DraftService) Get(ctx context.Context, draftID, userID int64) (*model.Draft, error) {
	draft, err := s.repo.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, model.ErrNotDraftOwner
	}
	return draft, nil
}

// Update modifies an editable draft. Only draft and rejected statuses may be
// edited; everything later in the lifecycle is frozen.
func (s *DraftService) Update(ctx context.Context, draftID, userID int64, req *model.UpdateDraftRequest) (*model.Draft, error) {
	draft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, model.ErrDraftNotEditable
	}

	text := draft.Text
	if req.Text != nil {
		text = *req.Text
	}
	platforms := []string(draft.Platforms)
	if req.Platforms != nil {
		platforms = *req.Platforms
	}
	media := mediaInputs(draft.Media)
	if req.Media != nil {
		media = *req.Media
	}
	if err := validateContent(text, platforms, media); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, draftID, req.Text, req.Platforms, req.Media)
	if err != nil {
		return nil, err
	}

	// Editing a rejected draft puts it back into the editing pool.
	if draft.Status == model.StatusRejected {
		if err := s.repo.UpdateStatus(ctx, draftID, []string{model.StatusRejected}, model.StatusDraft); err == nil {
			updated.Status = model.StatusDraft
		}
	}
	return updated, nil
}

func (s *DraftService) Delete(ctx context.Context, draftID, userID int64) error {
	return s.repo.Delete(ctx, draftID, userID)
}

// List returns the user's drafts with cursor pagination.
func (s *DraftService) List(ctx context.Context, userID int64, status *string, cursor *string, limit int) (*model.DraftListResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	drafts, nextCursor, err := s.repo.List(ctx, userID, status, cursor, limit)
	if err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []model.Draft{}
	}
	return &model.DraftListResponse{
		Drafts:     drafts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// Predict scores a stored draft and records the score on the row so listings
// can show it without re-scoring.
func (s *DraftService) Predict(ctx context.Context, draftID, userID int64) (*model.PredictionResponse, error) {
	draft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	result := engagement.Score(draft.Text, draft.MediaItems(), draft.Platforms)
	if err := s.repo.SetLastScore(ctx, draftID, result.Score); err != nil {
		log.Printf("[DraftService] Failed to record score for draft %d: %v", draftID, err)
	}

	return &model.PredictionResponse{
		EngagementScore: result.Score,
		Breakdown:       result.Breakdown,
		Suggestions:     engagement.Suggest(&result.Breakdown),
	}, nil
}

// AdhocScore scores arbitrary content without a stored draft, for the
// composer's as-you-type feedback.
func (s *DraftService) AdhocScore(_ context.Context, req *model.AdhocScoreRequest) (*model.PredictionResponse, error) {
	if utf8.RuneCountInString(req.Text) > model.MaxDraftTextLength {
		return nil, model.ErrTextTooLong
	}

	media := make([]engagement.MediaItem, len(req.Media))
	for i, m := range req.Media {
		media[i] = engagement.MediaItem{Type: m.Type}
	}

	result := engagement.Score(req.Text, media, req.Platforms)
	return &model.PredictionResponse{
		EngagementScore: result.Score,
		Breakdown:       result.Breakdown,
		Suggestions:     engagement.Suggest(&result.Breakdown),
	}, nil
}

func validateContent(text string, platforms []string, media []model.MediaInput) error {
	if strings.TrimSpace(text) == "" && len(media) == 0 {
		return fmt.Errorf("draft needs text or media")
	}
	if utf8.RuneCountInString(text) > model.MaxDraftTextLength {
		return model.ErrTextTooLong
	}
	if len(media) > model.MaxDraftMediaCount {
		return model.ErrTooManyMedia
	}
	for _, m := range media {
		if m.Type != engagement.MediaTypeImage && m.Type != engagement.MediaTypeVideo {
			return model.ErrInvalidMediaType
		}
		if strings.TrimSpace(m.URL) == "" {
			return fmt.Errorf("media url is required")
		}
	}
	for _, p := range platforms {
		if !engagement.KnownPlatform(p) {
			return fmt.Errorf("%w: %s", model.ErrUnknownPlatform, p)
		}
	}
	return nil
}

func mediaInputs(media []model.DraftMedia) []model.MediaInput {
	out := make([]model.MediaInput, len(media))
	for i, m := range media {
		out[i] = model.MediaInput{URL: m.MediaURL, Type: m.MediaType}
	}
	return out
}
