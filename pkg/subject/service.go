package subject

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
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Garant   Teacher   `json:"garant"`
	Teachers []Teacher `json:"teachers"`
}

type ReviewPage struct {
	Page          int         `json:"page"`
	PageSize      int         `json:"pageSize"`
	TotalElements int64       `json:"totalElements"`
	Items         []ReviewRow `json:"items"`
}

type ReviewRequest struct {
	SubjectID  uint   `json:"subj_id" binding:"required"`
	Message    string `json:"message"`
	Difficulty *int   `json:"difficulty" binding:"required"`
	Usability  *int   `json:"usability" binding:"required"`
	ProfAvg    *int   `json:"prof_avg" binding:"required"`
	UserID     *uint  `json:"user_id"`
}

func (r ReviewRequest) validate() error {
	return review.Validate(r.Message,
		review.Score{Name: "difficulty", Value: *r.Difficulty},
		review.Score{Name: "usability", Value: *r.Usability},
		review.Score{Name: "prof_avg", Value: *r.ProfAvg},
	)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Detail(ctx context.Context, id uint) (*Detail, error) {
	subj, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	garant, err := s.repo.Garant(ctx, subj)
	if err != nil {
		return nil, err
	}
	teachers, err := s.repo.Teachers(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		ID:       subj.ID,
		Name:     subj.Name,
		Code:     subj.Code,
		Garant:   Teacher{ID: garant.ID, Name: garant.FullName()},
		Teachers: teachers,
	}, nil
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

func (s *Service) CreateReview(ctx context.Context, caller *models.User, req ReviewRequest) (*models.SubjectReview, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, req.SubjectID); err != nil {
		return nil, mapError(err)
	}

	_, err := s.repo.GetReview(ctx, req.SubjectID, caller.ID)
	switch {
	case err == nil:
		return nil, mapError(ErrDuplicateReview)
	case !errors.Is(err, ErrReviewNotFound):
		return nil, err
	}

	rev := &models.SubjectReview{
		SubjectID:  req.SubjectID,
		UserID:     caller.ID,
		Message:    req.Message,
		Difficulty: *req.Difficulty,
		Usability:  *req.Usability,
		ProfAvg:    *req.ProfAvg,
		ReviewDate: s.now().UTC(),
	}
	if err := s.repo.CreateReview(ctx, rev); err != nil {
		return nil, mapError(err)
	}
	return rev, nil
}

func (s *Service) UpdateReview(ctx context.Context, caller *models.User, req ReviewRequest) (*models.SubjectReview, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	target := caller.ID
	if req.UserID != nil {
		target = *req.UserID
	}

	rev, err := s.repo.GetReview(ctx, req.SubjectID, target)
	if err != nil {
		return nil, mapError(err)
	}
	if target != caller.ID {
		return nil, apperr.Unauthorized("You can only edit your own reviews")
	}

	rev.Message = req.Message
	rev.Difficulty = *req.Difficulty
	rev.Usability = *req.Usability
	rev.ProfAvg = *req.ProfAvg
	rev.ReviewDate = s.now().UTC()
	if err := s.repo.UpdateReview(ctx, rev); err != nil {
		return nil, mapError(err)
	}
	return rev, nil
}

func (s *Service) DeleteReview(ctx context.Context, caller *models.User, userID, subjectID uint) error {
	if caller.ID != userID && !caller.Permission {
		return apperr.Forbidden("Not allowed to delete this review")
	}
	return mapError(s.repo.DeleteReview(ctx, subjectID, userID))
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("Subject not found")
	case errors.Is(err, ErrReviewNotFound):
		return apperr.NotFound("Review not found")
	case errors.Is(err, ErrDuplicateReview):
		return apperr.BadRequest("Review already exists, use PUT instead")
	default:
		return err
	}
}
