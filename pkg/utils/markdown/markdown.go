// Package markdown renders the admin-editable content pages (greetings,
// service times, directions) from markdown into sanitized HTML.
package markdown

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Markdown holds page source. Only the source is persisted; HTML is derived.
type Markdown struct {
	Source string

	html *template.HTML
}

var (
	bfRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink | blackfriday.NofollowLinks | blackfriday.HrefTargetBlank,
	})
	bfExtensions = blackfriday.CommonExtensions | blackfriday.HardLineBreak | blackfriday.AutoHeadingIDs
	policy       = bluemonday.UGCPolicy()
)

func New(source string) *Markdown {
	return &Markdown{Source: source}
}

func render(source string) []byte {
	return blackfriday.Run([]byte(source),
		blackfriday.WithRenderer(bfRenderer),
		blackfriday.WithExtensions(bfExtensions),
	)
}

// HTML converts the source into sanitized HTML. The result is cached.
func (m *Markdown) HTML() template.HTML {
	if m.html != nil {
		return *m.html
	}
	var h template.HTML
	if strings.TrimSpace(m.Source) != "" {
		h = template.HTML(bytes.TrimSpace(policy.SanitizeBytes(render(m.Source))))
	}
	m.html = &h
	return h
}

// Excerpt returns up to max runes of the rendered page as plain text.
func (m *Markdown) Excerpt(max int) string {
	text := string(bytes.TrimSpace(bluemonday.StrictPolicy().SanitizeBytes(render(m.Source))))
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "…"
}

// Scan implements sql.Scanner, loading markdown text from the DB.
func (m *Markdown) Scan(src any) error {
	m.html = nil
	switch v := src.(type) {
	case nil:
		m.Source = ""
	case string:
		m.Source = v
	case []byte:
		m.Source = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into Markdown", src)
	}
	return nil
}

// Value implements driver.Valuer, writing the markdown text back to the DB.
func (m Markdown) Value() (driver.Value, error) {
	return m.Source, nil
}

// ScanText implements the pgtype.TextScanner interface for pgx v5.
func (m *Markdown) ScanText(v pgtype.Text) error {
	m.html = nil
	m.Source = ""
	if v.Valid {
		m.Source = v.String
	}
	return nil
}

// TextValue implements the pgtype.TextValuer interface for pgx v5.
func (m Markdown) TextValue() (pgtype.Text, error) {
	return pgtype.Text{String: m.Source, Valid: true}, nil
}

// MarshalJSON encodes the source text.
func (m Markdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Source)
}

// UnmarshalJSON implements json.Unmarshaler so Markdown can be decoded from JSON.
func (m *Markdown) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Markdown.UnmarshalJSON: %w", err)
	}
	m.Source = s
	m.html = nil
	return nil
}
