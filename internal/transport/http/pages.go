package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/service/messages"
	"github.com/vovakirdan/board-server/internal/store"
	"github.com/vovakirdan/board-server/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

var textSizeCSS = map[string]string{
	"small":  "1.5rem",
	"medium": "2.5rem",
	"large":  "4rem",
}

// loadTemplates parses the page templates. Style values reaching CSS come from
// the validation allow-lists, which is what makes the template.CSS conversions safe.
func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"messageCSS": func(s store.Style) template.CSS {
			font := s.FontFamily
			if strings.Contains(font, " ") {
				font = "'" + font + "'"
			}
			css := fmt.Sprintf("font-family: %s; font-size: %s;", font, textSizeCSS[s.TextSize])
			if s.BgColor != "" {
				css += " background: " + s.BgColor + ";"
			}
			return template.CSS(css)
		},
		"swatchCSS": func(color string) template.CSS {
			return template.CSS("background: " + validation.BackgroundColor(color))
		},
		"timestamp": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04:05 MST")
		},
	}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// PageHandlers renders the HTML views of the board and its admin table.
type PageHandlers struct {
	service *messages.Service
	metrics *metrics
	log     *zerolog.Logger
}

// NewPageHandlers creates a new page handlers instance.
func NewPageHandlers(svc *messages.Service, m *metrics, logger *zerolog.Logger) *PageHandlers {
	return &PageHandlers{
		service: svc,
		metrics: m,
		log:     logger,
	}
}

type formValues struct {
	Message    string
	BgColor    string
	FontFamily string
	TextSize   string
}

type indexView struct {
	Title     string
	Current   *store.Message
	Options   validation.Options
	MaxLength int
	Error     string
	Form      formValues
}

type adminView struct {
	Title    string
	Listing  *messages.Listing
	Admin    string
	PrevPage int
	NextPage int
	HasNext  bool
}

// Index shows the current message, or a first-run placeholder, with the post form.
// GET /
func (h *PageHandlers) Index(c *gin.Context) {
	h.renderIndex(c, http.StatusOK, "", formValues{
		FontFamily: validation.DefaultFont,
		TextSize:   validation.DefaultTextSize,
	})
}

// SubmitForm handles the HTML form post and redirects back to the board.
// POST /
func (h *PageHandlers) SubmitForm(c *gin.Context) {
	form := formValues{
		Message:    c.PostForm("message"),
		BgColor:    c.PostForm("bgColor"),
		FontFamily: c.PostForm("fontFamily"),
		TextSize:   c.PostForm("textSize"),
	}

	in := messages.SubmitInput{
		BgColor:    form.BgColor,
		FontFamily: form.FontFamily,
		TextSize:   form.TextSize,
	}
	if raw, ok := c.GetPostForm("message"); ok {
		in.Message = raw
	}

	res, err := h.service.Submit(c.Request.Context(), in)
	if err != nil {
		var rej *validation.Rejection
		if errors.As(err, &rej) {
			h.metrics.observeRejection(err)
			h.renderIndex(c, http.StatusBadRequest, rej.Reason, form)
			return
		}
		h.log.Error().Err(err).Msg("failed to submit message from form")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.submitted.Inc()
	h.log.Info().Int64("message_id", res.ID).Msg("message submitted via form")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandlers) renderIndex(c *gin.Context, status int, errMsg string, form formValues) {
	current, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load current message")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.HTML(status, "index.html", indexView{
		Title:     "Message board",
		Current:   current,
		Options:   validation.StyleOptions(),
		MaxLength: validation.MaxMessageLength,
		Error:     errMsg,
		Form:      form,
	})
}

// Admin renders the paginated message table.
// GET /admin?page=
func (h *PageHandlers) Admin(c *gin.Context) {
	listing, err := h.service.List(c.Request.Context(), queryInt(c, "page", messages.DefaultPage), messages.DefaultLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages for admin page")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	c.HTML(http.StatusOK, "admin.html", adminView{
		Title:    "Admin",
		Admin:    adminFromContext(c),
		Listing:  listing,
		PrevPage: listing.Page - 1,
		NextPage: listing.Page + 1,
		HasNext:  hasNextPage(listing),
	})
}

// DeleteForm deletes one message from the admin table and returns to the same page.
// POST /admin/messages/:id/delete
func (h *PageHandlers) DeleteForm(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, messages.ErrInvalidID) {
			c.String(http.StatusBadRequest, "Invalid id")
			return
		}
		h.log.Error().Err(err).Str("id", c.Param("id")).Msg("failed to delete message from admin page")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.deleted.Add(float64(deleted))
	h.log.Info().
		Str("id", c.Param("id")).
		Str("admin", adminFromContext(c)).
		Int64("deleted", deleted).
		Msg("message deleted from admin page")
	page := messages.ClampPage(postFormInt(c, "page", messages.DefaultPage))
	c.Redirect(http.StatusSeeOther, "/admin?page="+strconv.Itoa(page))
}

func postFormInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.PostForm(key))
	if err != nil {
		return fallback
	}
	return v
}

// hasNextPage reports whether rows remain after the listing's page without multiplying page by limit.
func hasNextPage(l *messages.Listing) bool {
	if l.Total <= 0 {
		return false
	}
	lastPage := (l.Total-1)/int64(l.Limit) + 1
	return int64(l.Page) < lastPage
}
