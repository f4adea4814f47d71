// Package review holds the input rules shared by professor and subject reviews.
package review

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
)

var validate = validator.New()

// Score is a review value on the closed 0..100 scale.
type Score struct {
	Name  string
	Value int
}

// Validate checks the message and every score before anything is written.
func Validate(message string, scores ...Score) error {
	if err := validate.Var(strings.TrimSpace(message), "min=3"); err != nil {
		return apperr.BadRequest("Message must be at least 3 characters long")
	}
	for _, s := range scores {
		if err := validate.Var(s.Value, "min=0,max=100"); err != nil {
			return apperr.BadRequest(fmt.Sprintf("%s must be between 0 and 100", s.Name))
		}
	}
	return nil
}
