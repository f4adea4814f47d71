package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/config"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/loginguard"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/user"
)

const minPasswordLength = 4

var (
	ErrInvalidCredentials = apperr.Forbidden("Incorrect username or password")
	ErrWeakPassword       = apperr.Forbidden("Password is too short")
	ErrInvalidEmail       = apperr.Forbidden("Invalid email address")
	ErrEmailTaken         = apperr.Forbidden("Email is already registered")
	ErrTooManyAttempts    = apperr.TooManyRequests("Too many failed login attempts, try again later")
	ErrNotAuthenticated   = apperr.Unauthorized("Could not validate credentials")
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	StudyYear int    `json:"study_year"`
	Password  string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Service struct {
	users      user.Repository
	tokens     *TokenIssuer
	guard      *loginguard.Guard
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

func NewService(users user.Repository, tokens *TokenIssuer, guard *loginguard.Guard, cfg config.AuthConfig) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		guard:      guard,
		validate:   validator.New(),
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if len(req.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
		RegDate:   s.now().UTC(),
		StudyYear: req.StudyYear,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	key := normalizeEmail(email)
	if err := s.guard.Allow(key); err != nil {
		return nil, ErrTooManyAttempts
	}

	u, err := s.users.GetByEmail(ctx, key)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		s.guard.Failure(key)
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(u.Password, password) {
		s.guard.Failure(key)
		return nil, ErrInvalidCredentials
	}
	s.guard.Success(key)

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return u, nil
}

// Emails are stored and looked up lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
