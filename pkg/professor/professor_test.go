package professor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/auth"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/database/dbtest"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

type fixture struct {
	db     *gorm.DB
	router *gin.Engine
	caller *models.User
}

func createUser(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	u := &models.User{
		Email: email, FirstName: "Test", LastName: email, Password: "hash",
		Permission: admin, RegDate: time.Now(), StudyYear: 1,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func setup(t *testing.T, admin bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Seeded(t)
	caller := createUser(t, db, "caller@x.com", admin)

	router := gin.New()
	group := router.Group("/", func(c *gin.Context) {
		var fresh models.User
		require.NoError(t, db.First(&fresh, caller.ID).Error)
		auth.SetCurrentUser(c, &fresh)
	})
	NewHandler(NewService(NewRepository(db)), zerolog.Nop()).RegisterRoutes(group)
	return &fixture{db: db, router: router, caller: caller}
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) comments(t *testing.T, id uint) int {
	t.Helper()
	var u models.User
	require.NoError(t, f.db.First(&u, id).Error)
	return u.Comments
}

func (f *fixture) reviewCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.ProfessorReview{}).Count(&n).Error)
	return n
}

func TestGetProfessor(t *testing.T) {
	f := setup(t, false)

	w := f.do(http.MethodGet, "/prof/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, uint(1), detail.ID)
	assert.Equal(t, "Jan Lang", detail.Name)
	require.Len(t, detail.Subjects, 2)
	assert.Equal(t, "MTAA", detail.Subjects[0].Code)
	assert.Equal(t, "DBS", detail.Subjects[1].Code)
}

func TestGetProfessorNotFound(t *testing.T) {
	f := setup(t, false)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/prof/999", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/prof/999/reviews", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(http.MethodGet, "/prof/abc", nil).Code)
}

func TestCreateReview(t *testing.T) {
	f := setup(t, false)

	w := f.do(http.MethodPost, "/prof", gin.H{"prof_id": 1, "message": "Great!", "rating": 90})
	require.Equal(t, http.StatusCreated, w.Code)

	var rev models.ProfessorReview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rev))
	assert.Equal(t, uint(1), rev.ProfessorID)
	assert.Equal(t, f.caller.ID, rev.UserID)
	assert.Equal(t, 90, rev.Rating)
	assert.Equal(t, 1, f.comments(t, f.caller.ID))
}

func TestCreateReviewDuplicate(t *testing.T) {
	f := setup(t, false)
	body := gin.H{"prof_id": 1, "message": "Great!", "rating": 90}
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/prof", body).Code)

	w := f.do(http.MethodPost, "/prof", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "use PUT instead")
	assert.Equal(t, int64(1), f.reviewCount(t))
	assert.Equal(t, 1, f.comments(t, f.caller.ID))
}

func TestCreateReviewRejected(t *testing.T) {
	f := setup(t, false)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"rating above range", gin.H{"prof_id": 1, "message": "Great!", "rating": 101}, http.StatusBadRequest},
		{"rating below range", gin.H{"prof_id": 1, "message": "Great!", "rating": -1}, http.StatusBadRequest},
		{"short message", gin.H{"prof_id": 1, "message": "ok", "rating": 50}, http.StatusBadRequest},
		{"unknown professor", gin.H{"prof_id": 999, "message": "Great!", "rating": 50}, http.StatusNotFound},
		{"missing rating", gin.H{"prof_id": 1, "message": "Great!"}, http.StatusUnprocessableEntity},
		{"invalid range wins over unknown professor", gin.H{"prof_id": 999, "message": "Great!", "rating": 500}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, f.do(http.MethodPost, "/prof", tt.body).Code)
		})
	}
	assert.Zero(t, f.reviewCount(t))
	assert.Zero(t, f.comments(t, f.caller.ID))
}

func TestUpdateReview(t *testing.T) {
	f := setup(t, false)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/prof", gin.H{"prof_id": 1, "message": "Great!", "rating": 90}).Code)

	w := f.do(http.MethodPut, "/prof", gin.H{"prof_id": 1, "message": "Changed my mind", "rating": 40})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.ProfessorReview
	require.NoError(t, f.db.Where("professor_id = ? AND user_id = ?", 1, f.caller.ID).First(&stored).Error)
	assert.Equal(t, "Changed my mind", stored.Message)
	assert.Equal(t, 40, stored.Rating)
	assert.Equal(t, 1, f.comments(t, f.caller.ID))
}

func TestUpdateReviewRejected(t *testing.T) {
	f := setup(t, false)
	other := createUser(t, f.db, "other@x.com", false)
	require.NoError(t, f.db.Create(&models.ProfessorReview{
		ProfessorID: 2, UserID: other.ID, Message: "Not mine", Rating: 10, ReviewDate: time.Now(),
	}).Error)

	assert.Equal(t, http.StatusNotFound,
		f.do(http.MethodPut, "/prof", gin.H{"prof_id": 1, "message": "Nothing here", "rating": 50}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		f.do(http.MethodPut, "/prof", gin.H{"prof_id": 2, "message": "Hijack", "rating": 50, "user_id": other.ID}).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(http.MethodPut, "/prof", gin.H{"prof_id": 2, "message": "Hijack", "rating": 150, "user_id": other.ID}).Code)

	var stored models.ProfessorReview
	require.NoError(t, f.db.Where("professor_id = ? AND user_id = ?", 2, other.ID).First(&stored).Error)
	assert.Equal(t, "Not mine", stored.Message)
}

func TestDeleteReview(t *testing.T) {
	f := setup(t, false)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/prof", gin.H{"prof_id": 1, "message": "Great!", "rating": 90}).Code)

	w := f.do(http.MethodDelete, fmt.Sprintf("/prof/delete_review?uid=%d&pid=1", f.caller.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, f.reviewCount(t))
	assert.Zero(t, f.comments(t, f.caller.ID))

	w = f.do(http.MethodDelete, fmt.Sprintf("/prof/delete_review?uid=%d&pid=1", f.caller.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOtherUsersReviewForbidden(t *testing.T) {
	f := setup(t, false)
	other := createUser(t, f.db, "other@x.com", false)
	require.NoError(t, f.db.Create(&models.ProfessorReview{
		ProfessorID: 1, UserID: other.ID, Message: "Theirs", Rating: 70, ReviewDate: time.Now(),
	}).Error)

	w := f.do(http.MethodDelete, fmt.Sprintf("/prof/delete_review?uid=%d&pid=1", other.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int64(1), f.reviewCount(t))

	assert.Equal(t, http.StatusUnprocessableEntity, f.do(http.MethodDelete, "/prof/delete_review?uid=1", nil).Code)
}

func TestAdminDeletesAnyReview(t *testing.T) {
	f := setup(t, true)
	other := createUser(t, f.db, "other@x.com", false)
	require.NoError(t, f.db.Create(&models.ProfessorReview{
		ProfessorID: 1, UserID: other.ID, Message: "Theirs", Rating: 70, ReviewDate: time.Now(),
	}).Error)
	require.NoError(t, f.db.Model(other).Update("comments", 1).Error)

	w := f.do(http.MethodDelete, fmt.Sprintf("/prof/delete_review?uid=%d&pid=1", other.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, f.reviewCount(t))
	assert.Zero(t, f.comments(t, other.ID))
}

func TestListReviews(t *testing.T) {
	f := setup(t, false)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		u := createUser(t, f.db, fmt.Sprintf("u%d@x.com", i), false)
		require.NoError(t, f.db.Create(&models.ProfessorReview{
			ProfessorID: 1, UserID: u.ID, Message: fmt.Sprintf("review %d", i), Rating: 10 * i,
			ReviewDate: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	w := f.do(http.MethodGet, "/prof/1/reviews?page=1&size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page ReviewPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.TotalElements)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "review 2", page.Items[0].Message)
	assert.Equal(t, "Test u2@x.com", page.Items[0].UserName)

	w = f.do(http.MethodGet, "/prof/1/reviews?page=2&size=2", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "review 0", page.Items[0].Message)
}
