// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openlibrary

import (
	"bytes"
	"encoding/json"
)

// SearchResponse matches search.json. Docs keeps one entry per raw document
// in response order, including documents that are not JSON objects, so the
// raw page size is always len(Docs).
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

// SearchDoc is one raw search document. Every field is optional; a field
// whose JSON type does not match decodes as absent.
type SearchDoc struct {
	Key              *string
	Title            *string
	AuthorName       []string
	CoverID          *int64
	FirstPublishYear *int
	ISBN             []string
}

// UnmarshalJSON decodes the known fields independently and never fails.
func (d *SearchDoc) UnmarshalJSON(data []byte) error {
	*d = SearchDoc{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	decodeField(fields, "key", &d.Key)
	decodeField(fields, "title", &d.Title)
	decodeField(fields, "author_name", &d.AuthorName)
	decodeField(fields, "cover_i", &d.CoverID)
	decodeField(fields, "first_publish_year", &d.FirstPublishYear)
	decodeField(fields, "isbn", &d.ISBN)
	return nil
}

// WorkDetails matches works/{id}.json.
type WorkDetails struct {
	Title            *string
	Description      Text
	Authors          []AuthorEntry
	Covers           []int64
	FirstPublishDate *string
	Created          Text
	Subjects         []string
}

// UnmarshalJSON decodes the known fields independently and never fails.
func (w *WorkDetails) UnmarshalJSON(data []byte) error {
	*w = WorkDetails{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	decodeField(fields, "title", &w.Title)
	decodeField(fields, "description", &w.Description)
	decodeField(fields, "authors", &w.Authors)
	decodeField(fields, "covers", &w.Covers)
	decodeField(fields, "first_publish_date", &w.FirstPublishDate)
	decodeField(fields, "created", &w.Created)
	decodeField(fields, "subjects", &w.Subjects)
	return nil
}

// TextKind tags the shape a polymorphic text field arrived in.
type TextKind int

const (
	// TextAbsent means the field was missing or null.
	TextAbsent TextKind = iota
	// TextPlain means the field was a JSON string.
	TextPlain
	// TextWrapped means the field was an object carrying a string "value"
	// (e.g. {"type": "/type/text", "value": "..."}).
	TextWrapped
	// TextOther means any other shape.
	TextOther
)

// Text is a field Open Library sends either as a plain string or wrapped in
// a typed-value object.
type Text struct {
	Kind  TextKind
	Value string
}

// UnmarshalJSON classifies data into one of the TextKind shapes. It never fails.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Text{Kind: TextAbsent}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text{Kind: TextPlain, Value: s}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		if raw, ok := obj["value"]; ok {
			if err := json.Unmarshal(raw, &s); err == nil {
				*t = Text{Kind: TextWrapped, Value: s}
				return nil
			}
		}
	}

	*t = Text{Kind: TextOther}
	return nil
}

// Field records whether a key was present separately from whether its value
// had the expected type.
type Field[T any] struct {
	Present bool
	Valid   bool
	Value   T
}

// AuthorEntry is one element of a detail record's authors list. Open Library
// sends either {"name": ...} or {"author": {"key": ..., "name": ...}}.
type AuthorEntry struct {
	Name   Field[string]
	Author Field[AuthorRef]
}

// UnmarshalJSON never fails; unknown shapes leave both fields absent.
func (a *AuthorEntry) UnmarshalJSON(data []byte) error {
	*a = AuthorEntry{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	a.Name = presentField[string](fields, "name")

	if raw, ok := fields["author"]; ok {
		a.Author.Present = true
		var ref map[string]json.RawMessage
		if err := json.Unmarshal(raw, &ref); err == nil && ref != nil {
			a.Author.Valid = true
			a.Author.Value = AuthorRef{
				Name: presentField[string](ref, "name"),
				Key:  presentField[string](ref, "key"),
			}
		}
	}
	return nil
}

// AuthorRef is the nested author object of an AuthorEntry.
type AuthorRef struct {
	Name Field[string]
	Key  Field[string]
}

func presentField[T any](fields map[string]json.RawMessage, name string) Field[T] {
	raw, ok := fields[name]
	if !ok {
		return Field[T]{}
	}
	f := Field[T]{Present: true}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return f
	}
	if err := json.Unmarshal(raw, &f.Value); err == nil {
		f.Valid = true
	}
	return f
}

// decodeField decodes fields[name] into dst, leaving dst untouched when the
// key is missing or the value has the wrong type.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}
