package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/service/messages"
)

// AdminHandlers provides the JSON endpoints behind the admin gate.
type AdminHandlers struct {
	service *messages.Service
	metrics *metrics
	log     *zerolog.Logger
}

// NewAdminHandlers creates a new admin handlers instance.
func NewAdminHandlers(svc *messages.Service, m *metrics, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		service: svc,
		metrics: m,
		log:     logger,
	}
}

// DeleteResponse reports how many messages a delete removed.
type DeleteResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

// ListMessages returns a page of message history.
// GET /api/admin/messages?page=&limit=
func (h *AdminHandlers) ListMessages(c *gin.Context) {
	page := queryInt(c, "page", messages.DefaultPage)
	limit := queryInt(c, "limit", messages.DefaultLimit)

	listing, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.log.Error().Err(err).Int("page", page).Int("limit", limit).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().Int("page", listing.Page).Int64("total", listing.Total).Msg("messages listed")
	c.JSON(http.StatusOK, listingToResponse(listing))
}

// DeleteMessage hard-deletes one message.
// DELETE /api/admin/messages/:id
func (h *AdminHandlers) DeleteMessage(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, messages.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid id"})
			return
		}
		h.log.Error().Err(err).Str("id", c.Param("id")).Str("admin", adminFromContext(c)).Msg("failed to delete message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.metrics.deleted.Add(float64(deleted))
	h.log.Info().
		Str("id", c.Param("id")).
		Str("admin", adminFromContext(c)).
		Int64("deleted", deleted).
		Msg("message delete handled")
	c.JSON(http.StatusOK, DeleteResponse{OK: true, Deleted: deleted})
}

// queryInt reads an integer query parameter, using fallback when it is absent or malformed.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
