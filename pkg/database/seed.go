package database

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

var seedProfessors = []models.Professor{
	{ID: 1, FirstName: "Jan", LastName: "Lang"},
	{ID: 2, FirstName: "Pavol", LastName: "Navrat"},
	{ID: 3, FirstName: "Maria", LastName: "Bielikova"},
	{ID: 4, FirstName: "Michal", LastName: "Kompan"},
}

var seedSubjects = []models.Subject{
	{ID: 1, Name: "Mobile Technologies and Applications", Code: "MTAA", ProfessorID: 4},
	{ID: 2, Name: "Database Systems", Code: "DBS", ProfessorID: 1},
	{ID: 3, Name: "Principles of Software Engineering", Code: "PSI", ProfessorID: 3},
	{ID: 4, Name: "Artificial Intelligence", Code: "UI", ProfessorID: 2},
}

var seedRelations = []models.Relation{
	{SubjectID: 1, ProfessorID: 4},
	{SubjectID: 1, ProfessorID: 1},
	{SubjectID: 2, ProfessorID: 1},
	{SubjectID: 3, ProfessorID: 3},
	{SubjectID: 3, ProfessorID: 4},
	{SubjectID: 4, ProfessorID: 2},
}

// Seed inserts the reference professors, subjects and their teaching
// relations. Rows that already exist are left alone, so it is safe to run on
// every start.
func Seed(db *gorm.DB, log zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range seedProfessors {
			created, err := createIfMissing(tx, &models.Professor{}, p.ID, &p)
			if err != nil {
				return fmt.Errorf("seed professor %d: %w", p.ID, err)
			}
			if created {
				log.Info().Str("professor", p.FullName()).Msg("seeded professor")
			}
		}

		for _, s := range seedSubjects {
			created, err := createIfMissing(tx, &models.Subject{}, s.ID, &s)
			if err != nil {
				return fmt.Errorf("seed subject %s: %w", s.Code, err)
			}
			if created {
				log.Info().Str("subject", s.Code).Msg("seeded subject")
			}
		}

		for _, r := range seedRelations {
			var existing models.Relation
			err := tx.Where("subject_id = ? AND professor_id = ?", r.SubjectID, r.ProfessorID).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("seed relation %d/%d: %w", r.SubjectID, r.ProfessorID, err)
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("seed relation %d/%d: %w", r.SubjectID, r.ProfessorID, err)
			}
		}
		return nil
	})
}

func createIfMissing(tx *gorm.DB, probe interface{}, id uint, row interface{}) (bool, error) {
	err := tx.First(probe, id).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
