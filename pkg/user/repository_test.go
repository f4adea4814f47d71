package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/database/dbtest"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

func newUser(email string) *models.User {
	return &models.User{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "hash",
		RegDate:   time.Now(),
		StudyYear: 2,
	}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()

	u := newUser("ada@x.com")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryEmailTaken(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()

	taken, err := repo.EmailTaken(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, repo.Create(ctx, newUser("ada@x.com")))

	taken, err = repo.EmailTaken(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRepositoryPhoto(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	u := newUser("ada@x.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.SetPhoto(ctx, u.ID, []byte{1, 2, 3}))
	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Photo)

	require.NoError(t, repo.SetPhoto(ctx, u.ID, nil))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Photo)

	assert.ErrorIs(t, repo.SetPhoto(ctx, 999, []byte{1}), ErrNotFound)
}

func TestRepositoryTogglePermission(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	ctx := context.Background()
	u := newUser("ada@x.com")
	require.NoError(t, repo.Create(ctx, u))

	toggled, err := repo.TogglePermission(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Permission)

	toggled, err = repo.TogglePermission(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Permission)
}

func TestRepositoryDeleteRemovesReviews(t *testing.T) {
	db := dbtest.Seeded(t)
	repo := NewRepository(db)
	ctx := context.Background()
	u := newUser("ada@x.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, db.Create(&models.ProfessorReview{
		ProfessorID: 1, UserID: u.ID, Message: "fine", Rating: 50, ReviewDate: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.SubjectReview{
		SubjectID: 1, UserID: u.ID, Message: "fine", Difficulty: 10, Usability: 20, ProfAvg: 30, ReviewDate: time.Now(),
	}).Error)

	require.NoError(t, repo.Delete(ctx, u.ID))

	var count int64
	db.Model(&models.ProfessorReview{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.SubjectReview{}).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, u.ID), ErrNotFound)
}

func TestAdjustCommentsNeverNegative(t *testing.T) {
	db := dbtest.New(t)
	repo := NewRepository(db)
	ctx := context.Background()
	u := newUser("ada@x.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, AdjustComments(db, u.ID, 1))
	require.NoError(t, AdjustComments(db, u.ID, 1))
	got, _ := repo.GetByID(ctx, u.ID)
	assert.Equal(t, 2, got.Comments)

	require.NoError(t, AdjustComments(db, u.ID, -5))
	got, _ = repo.GetByID(ctx, u.ID)
	assert.Equal(t, 0, got.Comments)
}
