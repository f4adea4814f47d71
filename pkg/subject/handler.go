package subject

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/auth"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
)

type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	g := router.Group("/subj")
	g.GET("/:id", h.Get)
	g.GET("/:id/reviews", h.Reviews)
	g.POST("", h.CreateReview)
	g.PUT("", h.UpdateReview)
	g.DELETE("/delete_review", h.DeleteReview)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) Reviews(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	p := httpx.Pagination(c)
	page, err := h.service.Reviews(c.Request.Context(), id, p)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindFailed(c, err)
		return
	}
	caller := auth.CurrentUser(c)
	rev, err := h.service.CreateReview(c.Request.Context(), caller, req)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	h.logger.Info().Uint("user_id", caller.ID).Uint("subj_id", rev.SubjectID).Msg("subject review created")
	c.JSON(http.StatusCreated, rev)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindFailed(c, err)
		return
	}
	rev, err := h.service.UpdateReview(c.Request.Context(), auth.CurrentUser(c), req)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

func (h *Handler) DeleteReview(c *gin.Context) {
	var q struct {
		UserID    uint `form:"uid" binding:"required"`
		SubjectID uint `form:"sid" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		httpx.BindFailed(c, err)
		return
	}
	caller := auth.CurrentUser(c)
	if err := h.service.DeleteReview(c.Request.Context(), caller, q.UserID, q.SubjectID); err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	h.logger.Info().Uint("caller_id", caller.ID).Uint("user_id", q.UserID).Uint("subj_id", q.SubjectID).
		Msg("subject review deleted")
	c.JSON(http.StatusOK, gin.H{"detail": "Review deleted"})
}
