package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/service/messages"
	"github.com/vovakirdan/board-server/internal/validation"
)

// MessageHandlers provides the public JSON endpoints of the board.
type MessageHandlers struct {
	service *messages.Service
	metrics *metrics
	env     string
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(svc *messages.Service, m *metrics, env string, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		service: svc,
		metrics: m,
		env:     env,
		log:     logger,
	}
}

// SubmitMessageRequest represents the submit request body.
// Fields are untyped so that wrong JSON types reach validation instead of failing the bind.
type SubmitMessageRequest struct {
	Message    any `json:"message"`
	BgColor    any `json:"bgColor"`
	FontFamily any `json:"fontFamily"`
	TextSize   any `json:"textSize"`
}

// submitRequestFrom picks the known fields out of a decoded JSON body.
// Anything other than an object yields an empty request, which validation rejects.
func submitRequestFrom(body any) SubmitMessageRequest {
	obj, _ := body.(map[string]any)
	return SubmitMessageRequest{
		Message:    obj["message"],
		BgColor:    obj["bgColor"],
		FontFamily: obj["fontFamily"],
		TextSize:   obj["textSize"],
	}
}

// SubmitMessageResponse is returned after a message has been stored.
type SubmitMessageResponse struct {
	OK        bool          `json:"ok"`
	CreatedAt string        `json:"createdAt"`
	Style     StyleResponse `json:"style"`
}

// CurrentMessageResponse carries the current message; every field is null on a fresh board.
type CurrentMessageResponse struct {
	Message   *string        `json:"message"`
	CreatedAt *string        `json:"createdAt"`
	Style     *StyleResponse `json:"style"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
}

// GetCurrent returns the newest message.
// GET /api/message
func (h *MessageHandlers) GetCurrent(c *gin.Context) {
	msg, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load current message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if msg == nil {
		c.JSON(http.StatusOK, CurrentMessageResponse{})
		return
	}

	createdAt := formatTimestamp(msg.CreatedAt)
	style := styleToResponse(msg.Style)
	c.JSON(http.StatusOK, CurrentMessageResponse{
		Message:   &msg.Text,
		CreatedAt: &createdAt,
		Style:     &style,
	})
}

// Submit stores a new current message.
// POST /api/message
func (h *MessageHandlers) Submit(c *gin.Context) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return
		}
		h.log.Debug().Err(err).Msg("invalid submit request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req := submitRequestFrom(body)
	res, err := h.service.Submit(c.Request.Context(), messages.SubmitInput{
		Message:    req.Message,
		BgColor:    req.BgColor,
		FontFamily: req.FontFamily,
		TextSize:   req.TextSize,
	})
	if err != nil {
		var rej *validation.Rejection
		if errors.As(err, &rej) {
			h.metrics.observeRejection(err)
			h.log.Debug().Str("reason", rej.Reason).Msg("message rejected")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: rej.Reason})
			return
		}
		h.log.Error().Err(err).Msg("failed to submit message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.metrics.submitted.Inc()
	h.log.Info().Int64("message_id", res.ID).Msg("message submitted")
	c.JSON(http.StatusCreated, SubmitMessageResponse{
		OK:        true,
		CreatedAt: formatTimestamp(res.CreatedAt),
		Style:     styleToResponse(res.Style),
	})
}

// StyleOptions lists the accepted colours, fonts and sizes.
// GET /api/style-options
func (h *MessageHandlers) StyleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, validation.StyleOptions())
}

// Health reports liveness.
// GET /healthz
func (h *MessageHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Env: h.env})
}
