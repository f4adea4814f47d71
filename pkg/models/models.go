package models

import (
	"time"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Permission bool      `gorm:"not null;default:false" json:"permission"`
	Comments   int       `gorm:"not null;default:0;check:comments >= 0" json:"comments"`
	RegDate    time.Time `gorm:"not null" json:"reg_date"`
	StudyYear  int       `gorm:"not null;default:1" json:"study_year"`
	Photo      []byte    `json:"-"`
}

// FullName is the "first last" form used by search results and review listings.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Professor struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
}

func (p Professor) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Subject is owned by exactly one professor (the garant); other teachers are linked through Relation.
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Code        string    `gorm:"size:20;not null;uniqueIndex" json:"code"`
	ProfessorID uint      `gorm:"not null;index" json:"prof_id"`
	Professor   Professor `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Relation struct {
	SubjectID   uint      `gorm:"primaryKey;autoIncrement:false" json:"subj_id"`
	ProfessorID uint      `gorm:"primaryKey;autoIncrement:false" json:"prof_id"`
	Subject     Subject   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Professor   Professor `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type ProfessorReview struct {
	ProfessorID uint      `gorm:"primaryKey;autoIncrement:false" json:"prof_id"`
	UserID      uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Rating      int       `gorm:"not null;check:rating >= 0 AND rating <= 100" json:"rating"`
	ReviewDate  time.Time `gorm:"not null" json:"review_date"`
	Professor   Professor `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type SubjectReview struct {
	SubjectID  uint      `gorm:"primaryKey;autoIncrement:false" json:"subj_id"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Difficulty int       `gorm:"not null;check:difficulty >= 0 AND difficulty <= 100" json:"difficulty"`
	Usability  int       `gorm:"not null;check:usability >= 0 AND usability <= 100" json:"usability"`
	ProfAvg    int       `gorm:"not null;check:prof_avg >= 0 AND prof_avg <= 100" json:"prof_avg"`
	ReviewDate time.Time `gorm:"not null" json:"review_date"`
	Subject    Subject   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Professor{},
		&Subject{},
		&Relation{},
		&ProfessorReview{},
		&SubjectReview{},
	}
}
