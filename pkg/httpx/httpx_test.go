package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
)

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"not found", apperr.NotFound("Professor not found"), http.StatusNotFound, "Professor not found"},
		{"wrapped forbidden", fmt.Errorf("delete: %w", apperr.Forbidden("nope")), http.StatusForbidden, "nope"},
		{"too many", apperr.TooManyRequests("slow down"), http.StatusTooManyRequests, "slow down"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Respond(c, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Size: 10}},
		{"?page=3&size=20", Page{Page: 3, Size: 20}},
		{"?page=0&size=500", Page{Page: 1, Size: 10}},
		{"?page=abc&size=-1", Page{Page: 1, Size: 10}},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

		assert.Equal(t, tt.want, Pagination(c), tt.query)
	}
	assert.Equal(t, 40, Page{Page: 3, Size: 20}.Offset())
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "42"}}
	id, ok := ParamID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "x"}}
	_, ok = ParamID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRequestIDEchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
