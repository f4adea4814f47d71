package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/user"
)

type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
}

// Register creates an account and returns its public profile.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindFailed(c, err)
		return
	}

	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}

	h.logger.Info().Uint("user_id", u.ID).Msg("user registered")
	c.JSON(http.StatusCreated, user.NewProfile(u))
}

// Login takes an OAuth2 password-style form (username, password).
func (h *Handler) Login(c *gin.Context) {
	var form struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		httpx.BindFailed(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if err == ErrInvalidCredentials {
			h.logger.Warn().Str("email", form.Username).Msg("failed login")
		}
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
