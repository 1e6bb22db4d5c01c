// Package catalog consumes the discovery/recommendation collaborator: the
// flat, integer-keyed book catalog behind the semantic-search and
// recommendation endpoints. It is a request/response contract only; nothing
// here is a source of truth for book identity.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// BookRef is a book as the legacy catalog describes it. LegacyID is the
// catalog's own key: usually a small integer, occasionally an opaque string
// for rows ingested after the catalog stopped assigning integers. It is an
// input to identity resolution, never an identity itself.
type BookRef struct {
	LegacyID   string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Year       int      `json:"year,omitempty"`
	Genre      string   `json:"genre,omitempty"`
	Language   string   `json:"language,omitempty"`
	Themes     []string `json:"themes,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
}

// bookRefWire tolerates the collaborator's field spellings: the catalog
// backend serializes pandas rows, so ids arrive as numbers or strings, the
// year column is named pubdate, and covers come back as image_url.
type bookRefWire struct {
	ID         json.RawMessage `json:"id"`
	LegacyID   json.RawMessage `json:"legacy_id"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Year       *int            `json:"year"`
	Pubdate    json.RawMessage `json:"pubdate"`
	Genre      string          `json:"genre"`
	Language   string          `json:"language"`
	Themes     []string        `json:"themes"`
	CoverImage string          `json:"cover_image"`
	ImageURL   string          `json:"image_url"`
}

func (r *BookRef) UnmarshalJSON(data []byte) error {
	var wire bookRefWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	r.LegacyID = rawToString(wire.ID)
	if r.LegacyID == "" {
		r.LegacyID = rawToString(wire.LegacyID)
	}
	r.Title = wire.Title
	r.Author = wire.Author
	if wire.Year != nil {
		r.Year = *wire.Year
	} else if y, err := strconv.Atoi(rawToString(wire.Pubdate)); err == nil {
		r.Year = y
	}
	r.Genre = wire.Genre
	r.Language = wire.Language
	r.Themes = wire.Themes
	r.CoverImage = wire.CoverImage
	if r.CoverImage == "" {
		r.CoverImage = wire.ImageURL
	}
	return nil
}

// rawToString renders a raw JSON scalar as a plain string: quoted strings
// are unquoted, numbers kept verbatim, null and absent become empty.
func rawToString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
