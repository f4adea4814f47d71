package professor

import (
	"context"
	"errors"
	"time"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/review"
)

type Detail struct {
	ID       uint         `json:"id"`
	Name     string       `json:"name"`
	Subjects []SubjectRef `json:"subjects"`
}

type ReviewPage struct {
	Page          int         `json:"page"`
	PageSize      int         `json:"pageSize"`
	TotalElements int64       `json:"totalElements"`
	Items         []ReviewRow `json:"items"`
}

// ReviewRequest is the body of POST and PUT /prof. UserID is only honoured by
// PUT and defaults to the caller.
type ReviewRequest struct {
	ProfessorID uint   `json:"prof_id" binding:"required"`
	Message     string `json:"message"`
	Rating      *int   `json:"rating" binding:"required"`
	UserID      *uint  `json:"user_id"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Detail(ctx context.Context, id uint) (*Detail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	subjects, err := s.repo.Subjects(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{ID: p.ID, Name: p.FullName(), Subjects: subjects}, nil
}

func (s *Service) Reviews(ctx context.Context, id uint, page httpx.Page) (*ReviewPage, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, mapError(err)
	}
	items, total, err := s.repo.Reviews(ctx, id, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Page: page.Page, PageSize: page.Size, TotalElements: total, Items: items}, nil
}

// CreateReview validates input, then checks the professor exists, then that
// the caller has not reviewed them yet.
func (s *Service) CreateReview(ctx context.Context, caller *models.User, req ReviewRequest) (*models.ProfessorReview, error) {
	if err := review.Validate(req.Message, review.Score{Name: "rating", Value: *req.Rating}); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, req.ProfessorID); err != nil {
		return nil, mapError(err)
	}

	_, err := s.repo.GetReview(ctx, req.ProfessorID, caller.ID)
	switch {
	case err == nil:
		return nil, mapError(ErrDuplicateReview)
	case !errors.Is(err, ErrReviewNotFound):
		return nil, err
	}

	rev := &models.ProfessorReview{
		ProfessorID: req.ProfessorID,
		UserID:      caller.ID,
		Message:     req.Message,
		Rating:      *req.Rating,
		ReviewDate:  s.now().UTC(),
	}
	if err := s.repo.CreateReview(ctx, rev); err != nil {
		return nil, mapError(err)
	}
	return rev, nil
}

func (s *Service) UpdateReview(ctx context.Context, caller *models.User, req ReviewRequest) (*models.ProfessorReview, error) {
	if err := review.Validate(req.Message, review.Score{Name: "rating", Value: *req.Rating}); err != nil {
		return nil, err
	}
	target := caller.ID
	if req.UserID != nil {
		target = *req.UserID
	}

	rev, err := s.repo.GetReview(ctx, req.ProfessorID, target)
	if err != nil {
		return nil, mapError(err)
	}
	if target != caller.ID {
		return nil, apperr.Unauthorized("You can only edit your own reviews")
	}

	rev.Message = req.Message
	rev.Rating = *req.Rating
	rev.ReviewDate = s.now().UTC()
	if err := s.repo.UpdateReview(ctx, rev); err != nil {
		return nil, mapError(err)
	}
	return rev, nil
}

// DeleteReview lets authors remove their own review and admins remove any.
func (s *Service) DeleteReview(ctx context.Context, caller *models.User, userID, professorID uint) error {
	if caller.ID != userID && !caller.Permission {
		return apperr.Forbidden("Not allowed to delete this review")
	}
	return mapError(s.repo.DeleteReview(ctx, professorID, userID))
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Professor not found")
	case errors.Is(err, ErrReviewNotFound):
		return apperr.NotFound("Review not found")
	case errors.Is(err, ErrDuplicateReview):
		return apperr.BadRequest("Review already exists, use PUT instead")
	default:
		return err
	}
}
