package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id uint) error
	SetPhoto(ctx context.Context, id uint, photo []byte) error
	TogglePermission(ctx context.Context, id uint) (*models.User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// Delete removes the user and every review they wrote.
func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.ProfessorReview{}).Error; err != nil {
			return fmt.Errorf("delete professor reviews: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.SubjectReview{}).Error; err != nil {
			return fmt.Errorf("delete subject reviews: %w", err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetPhoto replaces the stored picture; a nil photo clears it.
func (r *repository) SetPhoto(ctx context.Context, id uint, photo []byte) error {
	var value interface{} = photo
	if len(photo) == 0 {
		value = gorm.Expr("NULL")
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("photo", value)
	if res.Error != nil {
		return fmt.Errorf("set photo for user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) TogglePermission(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		u.Permission = !u.Permission
		return tx.Model(&u).Update("permission", u.Permission).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("toggle permission for user %d: %w", id, err)
	}
	return &u, nil
}

// AdjustComments moves the denormalized review counter by delta without
// letting it drop below zero. It runs on the caller's transaction.
func AdjustComments(tx *gorm.DB, id uint, delta int) error {
	expr := gorm.Expr("CASE WHEN comments + ? < 0 THEN 0 ELSE comments + ? END", delta, delta)
	if err := tx.Model(&models.User{}).Where("id = ?", id).Update("comments", expr).Error; err != nil {
		return fmt.Errorf("adjust comments for user %d: %w", id, err)
	}
	return nil
}
