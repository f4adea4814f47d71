package search

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	CodeProfessor = "PROF"
	CodeUser      = "USER"
)

// Result is one match. Code is the subject code for subjects and PROF or USER otherwise.
type Result struct {
	Name string `json:"name"`
	Code string `json:"code"`
	ID   uint   `json:"id"`
}

type Repository interface {
	Search(ctx context.Context, term string, limit int) ([]Result, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Search matches term case-insensitively against subject names and codes and
// professor and user full names. Rows are interleaved by category, so a
// limited result still shows every kind of entity that matched.
func (r *repository) Search(ctx context.Context, term string, limit int) ([]Result, error) {
	pattern := "%" + escapeLike(term) + "%"
	results := make([]Result, 0)
	err := r.db.WithContext(ctx).
		Raw(r.query(), pattern, pattern, limit).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	return results, nil
}

func (r *repository) query() string {
	profName := fullName(r.db, "p")
	userName := fullName(r.db, "u")
	return `SELECT name, code, id FROM (
	SELECT name, code, id, category,
		ROW_NUMBER() OVER (PARTITION BY category ORDER BY id) AS rn
	FROM (
		SELECT s.name AS name, s.code AS code, s.id AS id, 1 AS category FROM subjects s
		UNION ALL
		SELECT ` + profName + `, '` + CodeProfessor + `', p.id, 2 FROM professors p
		UNION ALL
		SELECT ` + userName + `, '` + CodeUser + `', u.id, 3 FROM users u
	) candidates
	WHERE LOWER(name) LIKE LOWER(?) ESCAPE '!' OR LOWER(code) LIKE LOWER(?) ESCAPE '!'
) ranked
ORDER BY rn, category
LIMIT ?`
}

func fullName(db *gorm.DB, alias string) string {
	if db.Dialector.Name() == "mysql" {
		return fmt.Sprintf("CONCAT(%[1]s.first_name, ' ', %[1]s.last_name)", alias)
	}
	return fmt.Sprintf("%[1]s.first_name || ' ' || %[1]s.last_name", alias)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
