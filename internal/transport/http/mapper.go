package http

import (
	"time"

	"github.com/vovakirdan/board-server/internal/service/messages"
	"github.com/vovakirdan/board-server/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StyleResponse is the JSON form of a message style. BgColor is null when absent.
type StyleResponse struct {
	BgColor    *string `json:"bgColor"`
	FontFamily string  `json:"fontFamily"`
	TextSize   string  `json:"textSize"`
}

// AdminMessageResponse represents one row of the admin listing.
type AdminMessageResponse struct {
	ID         int64   `json:"id"`
	Location   string  `json:"location"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"createdAt"`
	BgColor    *string `json:"bgColor"`
	FontFamily string  `json:"fontFamily"`
	TextSize   string  `json:"textSize"`
}

// AdminListResponse is the paginated admin listing.
type AdminListResponse struct {
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
	Total int64                  `json:"total"`
	Items []AdminMessageResponse `json:"items"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(store.TimestampLayout)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func styleToResponse(s store.Style) StyleResponse {
	return StyleResponse{
		BgColor:    optional(s.BgColor),
		FontFamily: s.FontFamily,
		TextSize:   s.TextSize,
	}
}

func listingToResponse(l *messages.Listing) AdminListResponse {
	items := make([]AdminMessageResponse, 0, len(l.Items))
	for _, m := range l.Items {
		items = append(items, AdminMessageResponse{
			ID:         m.ID,
			Location:   m.Location,
			Message:    m.Text,
			CreatedAt:  formatTimestamp(m.CreatedAt),
			BgColor:    optional(m.Style.BgColor),
			FontFamily: m.Style.FontFamily,
			TextSize:   m.Style.TextSize,
		})
	}
	return AdminListResponse{
		Page:  l.Page,
		Limit: l.Limit,
		Total: l.Total,
		Items: items,
	}
}
