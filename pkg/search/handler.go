package search

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/apperr"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/auth"
	"github.com/AdrianSzacsko/mtaa-backend/pkg/httpx"
)

// Frame is one reply on the live search socket.
type Frame struct {
	StatusCode int         `json:"status_code"`
	Message    interface{} `json:"message"`
}

type Handler struct {
	service  *Service
	authn    auth.Authenticator
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(service *Service, authn auth.Authenticator, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		authn:   authn,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// clients authenticate with a header token, not cookies
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts GET /search behind requireUser. The live endpoint
// authenticates its own handshake.
func (h *Handler) RegisterRoutes(router gin.IRouter, requireUser gin.HandlerFunc) {
	router.GET("/search", requireUser, h.Search)
	router.GET("/search/wb", h.Live)
}

func (h *Handler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("search_string"))
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Live upgrades to a WebSocket and answers every text message with one search.
func (h *Handler) Live(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := auth.BearerToken(header)
	if !ok {
		token = strings.TrimSpace(header)
	}
	caller, err := h.authn.Authenticate(c.Request.Context(), token)
	if err != nil {
		httpx.Respond(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.With().Uint("user_id", caller.ID).Logger()
	log.Debug().Msg("live search connected")

	ctx := c.Request.Context()
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("live search closed unexpectedly")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := conn.WriteJSON(h.answer(ctx, log, string(msg))); err != nil {
			log.Warn().Err(err).Msg("live search write failed")
			return
		}
	}
}

func (h *Handler) answer(ctx context.Context, log zerolog.Logger, term string) Frame {
	results, err := h.service.Search(ctx, term)
	if err == nil {
		return Frame{StatusCode: http.StatusOK, Message: results}
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return Frame{StatusCode: appErr.Kind.Status(), Message: appErr.Detail}
	}
	log.Error().Err(err).Str("term", term).Msg("live search query failed")
	return Frame{StatusCode: http.StatusInternalServerError, Message: "internal server error"}
}
