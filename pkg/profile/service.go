package profile

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/gabriel-vasile/mimetype"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/user"
)

// MaxPhotoSize caps stored profile pictures at 3 MiB.
const MaxPhotoSize = 3 << 20

var allowedPhotoTypes = []string{"image/jpeg", "image/png"}

var (
	ErrProfileNotFound = apperr.NotFound("Profile not found")
	ErrPhotoNotFound   = apperr.NotFound("Profile picture not found")
	ErrPhotoTooLarge   = apperr.Unprocessable("Picture must be at most 3 MiB")
	ErrPhotoType       = apperr.Unprocessable("Picture must be a JPEG or PNG image")
	ErrAdminDisabled   = apperr.Forbidden("Admin elevation is disabled")
	ErrBadPassphrase   = apperr.Forbidden("Incorrect passphrase")
)

type Service struct {
	users           user.Repository
	adminPassphrase string
}

// NewService wires the profile operations. An empty adminPassphrase turns
// off admin elevation entirely.
func NewService(users user.Repository, adminPassphrase string) *Service {
	return &Service{users: users, adminPassphrase: adminPassphrase}
}

func (s *Service) Get(ctx context.Context, id uint) (*user.Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}
	p := user.NewProfile(u)
	return &p, nil
}

// Photo returns the stored picture and its detected content type.
func (s *Service) Photo(ctx context.Context, id uint) ([]byte, string, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrPhotoNotFound
		}
		return nil, "", err
	}
	if len(u.Photo) == 0 {
		return nil, "", ErrPhotoNotFound
	}
	return u.Photo, mimetype.Detect(u.Photo).String(), nil
}

// SetPhoto validates data before touching the stored picture, so a rejected
// upload leaves the previous one in place.
func (s *Service) SetPhoto(ctx context.Context, caller *models.User, data []byte) error {
	if err := CheckPhoto(data); err != nil {
		return err
	}
	return mapUserError(s.users.SetPhoto(ctx, caller.ID, data))
}

func (s *Service) DeletePhoto(ctx context.Context, caller *models.User) error {
	return mapUserError(s.users.SetPhoto(ctx, caller.ID, nil))
}

func (s *Service) Delete(ctx context.Context, caller *models.User) error {
	return mapUserError(s.users.Delete(ctx, caller.ID))
}

// ToggleAdmin flips the caller's admin flag when passphrase matches the configured one.
func (s *Service) ToggleAdmin(ctx context.Context, caller *models.User, passphrase string) (*user.Profile, error) {
	if s.adminPassphrase == "" {
		return nil, ErrAdminDisabled
	}
	if subtle.ConstantTimeCompare([]byte(passphrase), []byte(s.adminPassphrase)) != 1 {
		return nil, ErrBadPassphrase
	}
	u, err := s.users.TogglePermission(ctx, caller.ID)
	if err != nil {
		return nil, mapUserError(err)
	}
	p := user.NewProfile(u)
	return &p, nil
}

// CheckPhoto accepts JPEG and PNG images up to MaxPhotoSize, judged by content.
func CheckPhoto(data []byte) error {
	if len(data) > MaxPhotoSize {
		return ErrPhotoTooLarge
	}
	if len(data) == 0 {
		return ErrPhotoType
	}
	if !mimetype.EqualsAny(mimetype.Detect(data).String(), allowedPhotoTypes...) {
		return ErrPhotoType
	}
	return nil
}

func mapUserError(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}
