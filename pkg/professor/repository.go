package professor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/user"
)

var (
	ErrNotFound        = errors.New("professor not found")
	ErrReviewNotFound  = errors.New("professor review not found")
	ErrDuplicateReview = errors.New("professor review already exists")
)

// SubjectRef is a subject the professor teaches.
type SubjectRef struct {
	ID   uint   `json:"subj_id"`
	Name string `json:"subj_name"`
	Code string `json:"code"`
}

type ReviewRow struct {
	ProfessorID uint      `json:"prof_id"`
	UserID      uint      `json:"user_id"`
	UserName    string    `json:"user_name"`
	Message     string    `json:"message"`
	Rating      int       `json:"rating"`
	ReviewDate  time.Time `json:"review_date"`
}

type reviewWithAuthor struct {
	ProfessorID uint
	UserID      uint
	Message     string
	Rating      int
	ReviewDate  time.Time
	FirstName   string
	LastName    string
}

type Repository interface {
	Get(ctx context.Context, id uint) (*models.Professor, error)
	Subjects(ctx context.Context, id uint) ([]SubjectRef, error)
	Reviews(ctx context.Context, id uint, offset, limit int) ([]ReviewRow, int64, error)
	GetReview(ctx context.Context, professorID, userID uint) (*models.ProfessorReview, error)
	CreateReview(ctx context.Context, r *models.ProfessorReview) error
	UpdateReview(ctx context.Context, r *models.ProfessorReview) error
	DeleteReview(ctx context.Context, professorID, userID uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id uint) (*models.Professor, error) {
	var p models.Professor
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get professor %d: %w", id, err)
	}
	return &p, nil
}

func (r *repository) Subjects(ctx context.Context, id uint) ([]SubjectRef, error) {
	refs := make([]SubjectRef, 0)
	err := r.db.WithContext(ctx).
		Table("subjects").
		Select("subjects.id, subjects.name, subjects.code").
		Joins("JOIN relations ON relations.subject_id = subjects.id").
		Where("relations.professor_id = ?", id).
		Order("subjects.id").
		Scan(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("list subjects of professor %d: %w", id, err)
	}
	return refs, nil
}

func (r *repository) Reviews(ctx context.Context, id uint, offset, limit int) ([]ReviewRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ProfessorReview{}).
		Where("professor_id = ?", id).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count professor reviews: %w", err)
	}

	var rows []reviewWithAuthor
	err := r.db.WithContext(ctx).
		Table("professor_reviews").
		Select("professor_reviews.professor_id, professor_reviews.user_id, professor_reviews.message, " +
			"professor_reviews.rating, professor_reviews.review_date, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = professor_reviews.user_id").
		Where("professor_reviews.professor_id = ?", id).
		Order("professor_reviews.review_date DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list professor reviews: %w", err)
	}

	out := make([]ReviewRow, len(rows))
	for i, row := range rows {
		out[i] = ReviewRow{
			ProfessorID: row.ProfessorID,
			UserID:      row.UserID,
			UserName:    row.FirstName + " " + row.LastName,
			Message:     row.Message,
			Rating:      row.Rating,
			ReviewDate:  row.ReviewDate,
		}
	}
	return out, total, nil
}

func (r *repository) GetReview(ctx context.Context, professorID, userID uint) (*models.ProfessorReview, error) {
	var rev models.ProfessorReview
	err := r.db.WithContext(ctx).
		Where("professor_id = ? AND user_id = ?", professorID, userID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get professor review: %w", err)
	}
	return &rev, nil
}

// CreateReview inserts the review and bumps the author's comment count in one
// transaction. A second review for the same pair fails on the primary key.
func (r *repository) CreateReview(ctx context.Context, rev *models.ProfessorReview) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rev).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("create professor review: %w", err)
		}
		return user.AdjustComments(tx, rev.UserID, 1)
	})
}

func (r *repository) UpdateReview(ctx context.Context, rev *models.ProfessorReview) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProfessorReview{}).
		Where("professor_id = ? AND user_id = ?", rev.ProfessorID, rev.UserID).
		Updates(map[string]interface{}{
			"message":     rev.Message,
			"rating":      rev.Rating,
			"review_date": rev.ReviewDate,
		})
	if res.Error != nil {
		return fmt.Errorf("update professor review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) DeleteReview(ctx context.Context, professorID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("professor_id = ? AND user_id = ?", professorID, userID).
			Delete(&models.ProfessorReview{})
		if res.Error != nil {
			return fmt.Errorf("delete professor review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrReviewNotFound
		}
		return user.AdjustComments(tx, userID, -1)
	})
}
