package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// Detail writes the error body shape shared by every endpoint.
func Detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// Respond maps err onto an HTTP status. Errors without an apperr kind are
// logged and hidden behind a generic 500.
func Respond(c *gin.Context, log zerolog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(logger.RequestIDKey)).
			Msg("request failed")
		_ = c.Error(err)
		Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	var e *apperr.Error
	errors.As(err, &e)
	Detail(c, kind.Status(), e.Detail)
}

// BindFailed answers a body or query that could not be decoded.
func BindFailed(c *gin.Context, err error) {
	Detail(c, http.StatusUnprocessableEntity, err.Error())
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		Detail(c, http.StatusUnprocessableEntity, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type Page struct {
	Page int
	Size int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

// Pagination reads page and size, falling back to 1 and 10 for missing or out of range values.
func Pagination(c *gin.Context) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}
	return Page{Page: page, Size: size}
}

// RequestID reuses an incoming X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
