// Package validation sanitizes submitted message text and style fields.
//
// The allow-lists declared here are the single source for every consumer:
// the validators below, the JSON style-options endpoint and the HTML forms.
package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength is the upper bound on trimmed message length, in characters.
const MaxMessageLength = 100

const (
	DefaultFont     = "system-ui"
	DefaultTextSize = "medium"
)

var backgroundColors = []string{
	"#a6ff9d", "#fbffad", "#3ebfcd", "#973ecd", "#cd3ec1", "#cd763e",
}

var fonts = []string{
	"system-ui", "serif", "monospace", "cursive", "fantasy", "Georgia", "Times New Roman", "Arial",
}

var textSizes = []string{"small", "medium", "large"}

// Rejection is returned when message text cannot be accepted.
// Reason is meant to be shown to the submitter as is.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Unwrap lets every rejection match ErrInvalidMessage.
func (r *Rejection) Unwrap() error {
	return ErrInvalidMessage
}

// ErrInvalidMessage matches any message rejection through errors.Is.
var ErrInvalidMessage = errors.New("invalid message")

var (
	ErrNotString = &Rejection{Reason: "Message must be a string"}
	ErrEmpty     = &Rejection{Reason: "Message cannot be empty"}
	ErrTooLong   = &Rejection{Reason: "Message too long (max 100 chars)"}
)

// Message trims raw and checks it is a non-empty string of at most MaxMessageLength characters.
func Message(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", ErrNotString
	}
	trimmed := strings.TrimFunc(s, isTrimmable)
	n := utf8.RuneCountInString(trimmed)
	if n == 0 {
		return "", ErrEmpty
	}
	if n > MaxMessageLength {
		return "", ErrTooLong
	}
	return trimmed, nil
}

// isTrimmable matches the whitespace and line terminators stripped from message edges,
// which includes the byte order mark but not NEL.
func isTrimmable(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

// BackgroundColor returns the canonical palette entry matching raw regardless of case,
// or "" when raw is not a palette colour.
func BackgroundColor(raw any) string {
	s, _ := raw.(string)
	s = strings.ToLower(s)
	for _, c := range backgroundColors {
		if c == s {
			return c
		}
	}
	return ""
}

// Font returns raw when it names an allowed font and DefaultFont otherwise.
func Font(raw any) string {
	return pick(raw, fonts, DefaultFont)
}

// TextSize returns raw when it names an allowed size and DefaultTextSize otherwise.
func TextSize(raw any) string {
	return pick(raw, textSizes, DefaultTextSize)
}

func pick(raw any, allowed []string, fallback string) string {
	s, ok := raw.(string)
	if !ok {
		return fallback
	}
	for _, v := range allowed {
		if v == s {
			return v
		}
	}
	return fallback
}

// Options lists the accepted style values.
type Options struct {
	BgColors        []string `json:"bgColors"`
	Fonts           []string `json:"fonts"`
	TextSizes       []string `json:"textSizes"`
	DefaultFont     string   `json:"defaultFont"`
	DefaultTextSize string   `json:"defaultTextSize"`
}

// StyleOptions returns a copy of the allow-lists.
func StyleOptions() Options {
	return Options{
		BgColors:        append([]string(nil), backgroundColors...),
		Fonts:           append([]string(nil), fonts...),
		TextSizes:       append([]string(nil), textSizes...),
		DefaultFont:     DefaultFont,
		DefaultTextSize: DefaultTextSize,
	}
}
