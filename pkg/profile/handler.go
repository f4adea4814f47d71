package profile

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/auth"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
)

// multipart framing allowance on top of the picture itself
const uploadOverhead = 64 << 10

type Handler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandler(service *Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	g := router.Group("/profile")
	g.GET("/:id", h.Get)
	g.GET("/:id/pic", h.GetPhoto)
	g.PUT("/pic", h.UploadPhoto)
	g.PUT("/delete_pic", h.DeletePhoto)
	g.DELETE("/pic", h.DeletePhoto)
	g.PUT("/admin", h.ToggleAdmin)
	g.DELETE("", h.Delete)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPhoto(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	data, contentType, err := h.service.Photo(c.Request.Context(), id)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoSize+uploadOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.Respond(c, h.logger, ErrPhotoTooLarge)
			return
		}
		httpx.BindFailed(c, err)
		return
	}
	if fh.Size > MaxPhotoSize {
		httpx.Respond(c, h.logger, ErrPhotoTooLarge)
		return
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" && declared != "application/octet-stream" &&
		!mimetype.EqualsAny(declared, allowedPhotoTypes...) {
		httpx.Respond(c, h.logger, ErrPhotoType)
		return
	}

	f, err := fh.Open()
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}

	caller := auth.CurrentUser(c)
	if err := h.service.SetPhoto(c.Request.Context(), caller, data); err != nil {
		h.logger.Warn().Err(err).Uint("user_id", caller.ID).Str("filename", fh.Filename).Msg("picture rejected")
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Picture uploaded"})
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	if err := h.service.DeletePhoto(c.Request.Context(), auth.CurrentUser(c)); err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Picture deleted"})
}

func (h *Handler) ToggleAdmin(c *gin.Context) {
	var req struct {
		Passphrase string `json:"passphrase" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BindFailed(c, err)
		return
	}
	caller := auth.CurrentUser(c)
	p, err := h.service.ToggleAdmin(c.Request.Context(), caller, req.Passphrase)
	if err != nil {
		h.logger.Warn().Uint("user_id", caller.ID).Msg("admin toggle refused")
		httpx.Respond(c, h.logger, err)
		return
	}
	h.logger.Info().Uint("user_id", caller.ID).Bool("admin", p.Admin).Msg("admin flag toggled")
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	caller := auth.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), caller); err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	h.logger.Info().Uint("user_id", caller.ID).Msg("profile deleted")
	c.Status(http.StatusNoContent)
}
