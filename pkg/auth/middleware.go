package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/models"
)

const currentUserKey = "current_user"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// RequireUser rejects requests without a valid bearer token and stores the
// resolved user on the context.
func RequireUser(authn Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			httpx.Respond(c, log, ErrNotAuthenticated)
			return
		}
		u, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			httpx.Respond(c, log, err)
			return
		}
		SetCurrentUser(c, u)
		c.Next()
	}
}

func SetCurrentUser(c *gin.Context, u *models.User) {
	c.Set(currentUserKey, u)
}

// CurrentUser returns the user stored by RequireUser. It panics when called
// on a route without the middleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(currentUserKey).(*models.User)
}
