package search

import (
	"context"
	"strings"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
)

var ErrNoResults = apperr.NotFound("There was an error querying desired data.")

type Service struct {
	repo  Repository
	limit int
}

func NewService(repo Repository, limit int) *Service {
	return &Service{repo: repo, limit: limit}
}

func (s *Service) Search(ctx context.Context, term string) ([]Result, error) {
	results, err := s.repo.Search(ctx, strings.TrimSpace(term), s.limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}
