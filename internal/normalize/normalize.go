// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw Open Library documents into types.Work.
// It is pure: no I/O, no errors. Missing or malformed fields degrade to
// absent fields, never to a failure.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/bookfinder/internal/openlibrary"
	"github.com/pdiddy/bookfinder/pkg/types"
)

// CoverURLTemplate builds a medium cover image URL from a numeric cover id.
var CoverURLTemplate = "https://covers.openlibrary.org/b/id/%d-M.jpg"

const authorKeyPrefix = "/authors/"

// Search converts one search document. It reports false when the document
// has no key: a record without a stable identifier cannot be cached or
// favorited, so it is dropped rather than given a synthetic id.
func Search(doc openlibrary.SearchDoc) (types.Work, bool) {
	if doc.Key == nil {
		return types.Work{}, false
	}

	w := types.Work{ID: *doc.Key}
	if doc.Title != nil {
		w.Title = *doc.Title
	}
	if len(doc.AuthorName) > 0 {
		w.Author = doc.AuthorName[0]
	}
	if doc.CoverID != nil {
		w.CoverURL = CoverURL(*doc.CoverID)
	}
	if doc.FirstPublishYear != nil {
		w.PublishYear = *doc.FirstPublishYear
	}
	return w, true
}

// Details converts a detail document fetched for id. The returned ID is the
// canonical "/works/<key>" form of id; nothing in the document can change it.
func Details(id string, doc openlibrary.WorkDetails) types.Work {
	w := types.Work{
		ID:          types.CanonicalWorkID(id),
		Title:       types.UnknownTitle,
		Author:      detailAuthor(doc.Authors),
		PublishYear: publishYear(doc.Created, doc.FirstPublishDate),
		Description: Description(doc.Description),
	}
	if doc.Title != nil {
		w.Title = *doc.Title
	}
	if len(doc.Covers) > 0 {
		w.CoverURL = CoverURL(doc.Covers[0])
	}
	return w
}

// Fallback is the minimal record returned for id when its details cannot be
// fetched.
func Fallback(id string) types.Work {
	return types.Work{
		ID:    types.CanonicalWorkID(id),
		Title: types.UnknownTitle,
	}
}

// CoverURL returns the cover image URL for coverID, or "" for ids the cover
// service does not serve (Open Library uses -1 as a placeholder).
func CoverURL(coverID int64) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf(CoverURLTemplate, coverID)
}

// Description resolves a polymorphic text field to its string.
func Description(t openlibrary.Text) string {
	switch t.Kind {
	case openlibrary.TextPlain, openlibrary.TextWrapped:
		return t.Value
	case openlibrary.TextAbsent:
		return ""
	case openlibrary.TextOther:
		return ""
	default:
		return ""
	}
}

// detailAuthor extracts a label from the first author entry: a direct name,
// then the nested author's name, then the trailing segment of the nested
// author's key. A key that is present with the wrong type ends the search.
func detailAuthor(authors []openlibrary.AuthorEntry) string {
	if len(authors) == 0 {
		return ""
	}
	entry := authors[0]

	switch {
	case entry.Name.Present:
		return entry.Name.Value
	case entry.Author.Present:
		if !entry.Author.Valid {
			return ""
		}
		ref := entry.Author.Value
		switch {
		case ref.Name.Present:
			return ref.Name.Value
		case ref.Key.Present:
			return strings.TrimPrefix(ref.Key.Value, authorKeyPrefix)
		}
	}
	return ""
}

// publishYear prefers the leading year of the record's created timestamp and
// falls back to first_publish_date.
func publishYear(created openlibrary.Text, firstPublishDate *string) int {
	if created.Kind == openlibrary.TextWrapped {
		if y, ok := leadingYear(created.Value); ok {
			return y
		}
	}
	if firstPublishDate != nil {
		if y, ok := leadingYear(*firstPublishDate); ok {
			return y
		}
	}
	return 0
}

// leadingYear parses the first four characters of s as an integer.
func leadingYear(s string) (int, bool) {
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
