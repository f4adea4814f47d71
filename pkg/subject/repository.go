package subject

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
	ErrNotFound        = errors.New("subject not found")
	ErrReviewNotFound  = errors.New("subject review not found")
	ErrDuplicateReview = errors.New("subject review already exists")
)

// Teacher is a professor linked to the subject.
type Teacher struct {
	ID   uint   `json:"prof_id"`
	Name string `json:"name"`
}

type ReviewRow struct {
	SubjectID  uint      `json:"subj_id"`
	UserID     uint      `json:"user_id"`
	UserName   string    `json:"user_name"`
	Message    string    `json:"message"`
	Difficulty int       `json:"difficulty"`
	Usability  int       `json:"usability"`
	ProfAvg    int       `json:"prof_avg"`
	ReviewDate time.Time `json:"review_date"`
}

type reviewWithAuthor struct {
	SubjectID  uint
	UserID     uint
	Message    string
	Difficulty int
	Usability  int
	ProfAvg    int
	ReviewDate time.Time
	FirstName  string
	LastName   string
}

type Repository interface {
	Get(ctx context.Context, id uint) (*models.Subject, error)
	Garant(ctx context.Context, s *models.Subject) (*models.Professor, error)
	Teachers(ctx context.Context, id uint) ([]Teacher, error)
	Reviews(ctx context.Context, id uint, offset, limit int) ([]ReviewRow, int64, error)
	GetReview(ctx context.Context, subjectID, userID uint) (*models.SubjectReview, error)
	CreateReview(ctx context.Context, r *models.SubjectReview) error
	UpdateReview(ctx context.Context, r *models.SubjectReview) error
	DeleteReview(ctx context.Context, subjectID, userID uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id uint) (*models.Subject, error) {
	var s models.Subject
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subject %d: %w", id, err)
	}
	return &s, nil
}

func (r *repository) Garant(ctx context.Context, s *models.Subject) (*models.Professor, error) {
	var p models.Professor
	if err := r.db.WithContext(ctx).First(&p, s.ProfessorID).Error; err != nil {
		return nil, fmt.Errorf("get garant of subject %d: %w", s.ID, err)
	}
	return &p, nil
}

func (r *repository) Teachers(ctx context.Context, id uint) ([]Teacher, error) {
	var profs []models.Professor
	err := r.db.WithContext(ctx).
		Joins("JOIN relations ON relations.professor_id = professors.id").
		Where("relations.subject_id = ?", id).
		Order("professors.id").
		Find(&profs).Error
	if err != nil {
		return nil, fmt.Errorf("list teachers of subject %d: %w", id, err)
	}
	teachers := make([]Teacher, len(profs))
	for i, p := range profs {
		teachers[i] = Teacher{ID: p.ID, Name: p.FullName()}
	}
	return teachers, nil
}

func (r *repository) Reviews(ctx context.Context, id uint, offset, limit int) ([]ReviewRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.SubjectReview{}).
		Where("subject_id = ?", id).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subject reviews: %w", err)
	}

	var rows []reviewWithAuthor
	err := r.db.WithContext(ctx).
		Table("subject_reviews").
		Select("subject_reviews.subject_id, subject_reviews.user_id, subject_reviews.message, " +
			"subject_reviews.difficulty, subject_reviews.usability, subject_reviews.prof_avg, " +
			"subject_reviews.review_date, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = subject_reviews.user_id").
		Where("subject_reviews.subject_id = ?", id).
		Order("subject_reviews.review_date DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list subject reviews: %w", err)
	}

	out := make([]ReviewRow, len(rows))
	for i, row := range rows {
		out[i] = ReviewRow{
			SubjectID:  row.SubjectID,
			UserID:     row.UserID,
			UserName:   row.FirstName + " " + row.LastName,
			Message:    row.Message,
			Difficulty: row.Difficulty,
			Usability:  row.Usability,
			ProfAvg:    row.ProfAvg,
			ReviewDate: row.ReviewDate,
		}
	}
	return out, total, nil
}

func (r *repository) GetReview(ctx context.Context, subjectID, userID uint) (*models.SubjectReview, error) {
	var rev models.SubjectReview
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND user_id = ?", subjectID, userID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get subject review: %w", err)
	}
	return &rev, nil
}

func (r *repository) CreateReview(ctx context.Context, rev *models.SubjectReview) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rev).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("create subject review: %w", err)
		}
		return user.AdjustComments(tx, rev.UserID, 1)
	})
}

func (r *repository) UpdateReview(ctx context.Context, rev *models.SubjectReview) error {
	res := r.db.WithContext(ctx).
		Model(&models.SubjectReview{}).
		Where("subject_id = ? AND user_id = ?", rev.SubjectID, rev.UserID).
		Updates(map[string]interface{}{
			"message":     rev.Message,
			"difficulty":  rev.Difficulty,
			"usability":   rev.Usability,
			"prof_avg":    rev.ProfAvg,
			"review_date": rev.ReviewDate,
		})
	if res.Error != nil {
		return fmt.Errorf("update subject review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) DeleteReview(ctx context.Context, subjectID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("subject_id = ? AND user_id = ?", subjectID, userID).
			Delete(&models.SubjectReview{})
		if res.Error != nil {
			return fmt.Errorf("delete subject review: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrReviewNotFound
		}
		return user.AdjustComments(tx, userID, -1)
	})
}
