package user

import (
	"time"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

// Profile is the public view of a user. It never carries the password hash or photo bytes.
type Profile struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Admin     bool      `json:"permission"`
	Comments  int       `json:"comments"`
	RegDate   time.Time `json:"reg_date"`
	StudyYear int       `json:"study_year"`
	HasPhoto  bool      `json:"has_photo"`
}

func NewProfile(u *models.User) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.FullName(),
		Admin:     u.Permission,
		Comments:  u.Comments,
		RegDate:   u.RegDate,
		StudyYear: u.StudyYear,
		HasPhoto:  len(u.Photo) > 0,
	}
}
