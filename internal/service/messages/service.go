package messages

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vovakirdan/board-server/internal/store"
	"github.com/vovakirdan/board-server/internal/validation"
)

// Paging bounds for the admin listing.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidID is returned when a delete target is not an integer.
var ErrInvalidID = errors.New("invalid id")

// Service provides the board's business logic on top of a message store.
type Service struct {
	store    store.MessageStore
	location string
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the timestamp source used for new messages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service bound to a single feed location.
func New(st store.MessageStore, location string, opts ...Option) *Service {
	s := &Service{
		store:    st,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries raw client values. Fields are untyped because clients
// may send anything; validation decides what survives.
type SubmitInput struct {
	Message    any
	BgColor    any
	FontFamily any
	TextSize   any
}

// Submitted describes a stored message as the client should render it.
type Submitted struct {
	ID        int64
	CreatedAt time.Time
	Style     store.Style
}

// Submit validates and stores a new current message.
// A *validation.Rejection is returned for unacceptable text; style fields never fail.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Submitted, error) {
	text, err := validation.Message(in.Message)
	if err != nil {
		return nil, err
	}

	msg := &store.Message{
		Location:  s.location,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Style: store.Style{
			BgColor:    validation.BackgroundColor(in.BgColor),
			FontFamily: validation.Font(in.FontFamily),
			TextSize:   validation.TextSize(in.TextSize),
		},
	}
	if err := s.store.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	return &Submitted{
		ID:        msg.ID,
		CreatedAt: msg.CreatedAt,
		Style:     msg.Style,
	}, nil
}

// Current returns the newest message, or nil before anything has been posted.
func (s *Service) Current(ctx context.Context) (*store.Message, error) {
	msg, err := s.store.Latest(ctx, s.location)
	if err != nil {
		return nil, fmt.Errorf("load current message: %w", err)
	}
	return msg, nil
}

// Listing is one page of history for the admin view.
type Listing struct {
	Items []*store.Message
	Total int64
	Page  int
	Limit int
}

// List returns a page of messages, newest first. Out of range page and limit are clamped.
func (s *Service) List(ctx context.Context, page, limit int) (*Listing, error) {
	page, limit = ClampPage(page), ClampLimit(limit)

	p, err := s.store.ListPage(ctx, s.location, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return &Listing{
		Items: p.Items,
		Total: p.Total,
		Page:  page,
		Limit: limit,
	}, nil
}

// Delete removes the message identified by rawID and reports how many rows were removed.
func (s *Service) Delete(ctx context.Context, rawID string) (int64, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return 0, err
	}

	n, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete message %d: %w", id, err)
	}
	return n, nil
}

// ParseID converts a path parameter into a message id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ClampPage forces page to be at least 1.
func ClampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

// ClampLimit forces limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
