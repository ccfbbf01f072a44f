// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openlibrary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{"plain string", `"A story."`, Text{Kind: TextPlain, Value: "A story."}},
		{"wrapped value", `{"type": "/type/text", "value": "Wrapped."}`, Text{Kind: TextWrapped, Value: "Wrapped."}},
		{"null", `null`, Text{Kind: TextAbsent}},
		{"number", `42`, Text{Kind: TextOther}},
		{"object without value", `{"type": "/type/text"}`, Text{Kind: TextOther}},
		{"object with non-string value", `{"value": 7}`, Text{Kind: TextOther}},
		{"array", `["a"]`, Text{Kind: TextOther}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextMissingFieldIsAbsent(t *testing.T) {
	var w WorkDetails
	require.NoError(t, json.Unmarshal([]byte(`{"title": "T"}`), &w))
	assert.Equal(t, TextAbsent, w.Description.Kind)
	assert.Equal(t, TextAbsent, w.Created.Kind)
}

func TestSearchDocLenientFields(t *testing.T) {
	body := `{"numFound": 3, "docs": [
		{"key": "/works/OL1W", "title": "One", "author_name": ["A", "B"], "cover_i": 12, "first_publish_year": 1999, "isbn": ["123"]},
		{"key": 17, "title": ["not", "a", "string"], "cover_i": "twelve", "first_publish_year": "1999"},
		"not an object"
	]}`

	var res SearchResponse
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.Len(t, res.Docs, 3)
	assert.Equal(t, 3, res.NumFound)

	first := res.Docs[0]
	require.NotNil(t, first.Key)
	assert.Equal(t, "/works/OL1W", *first.Key)
	assert.Equal(t, "One", *first.Title)
	assert.Equal(t, []string{"A", "B"}, first.AuthorName)
	assert.Equal(t, int64(12), *first.CoverID)
	assert.Equal(t, 1999, *first.FirstPublishYear)
	assert.Equal(t, []string{"123"}, first.ISBN)

	second := res.Docs[1]
	assert.Nil(t, second.Key)
	assert.Nil(t, second.Title)
	assert.Nil(t, second.CoverID)
	assert.Nil(t, second.FirstPublishYear)

	assert.Equal(t, SearchDoc{}, res.Docs[2])
}

func TestAuthorEntryShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want AuthorEntry
	}{
		{
			name: "direct name",
			in:   `{"name": "Jane"}`,
			want: AuthorEntry{Name: Field[string]{Present: true, Valid: true, Value: "Jane"}},
		},
		{
			name: "nested key only",
			in:   `{"author": {"key": "/authors/OL1A"}, "type": {"key": "/type/author_role"}}`,
			want: AuthorEntry{Author: Field[AuthorRef]{Present: true, Valid: true, Value: AuthorRef{
				Key: Field[string]{Present: true, Valid: true, Value: "/authors/OL1A"},
			}}},
		},
		{
			name: "name present but not a string",
			in:   `{"name": 5}`,
			want: AuthorEntry{Name: Field[string]{Present: true}},
		},
		{
			name: "author not an object",
			in:   `{"author": "/authors/OL1A"}`,
			want: AuthorEntry{Author: Field[AuthorRef]{Present: true}},
		},
		{
			name: "not an object",
			in:   `"Jane"`,
			want: AuthorEntry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AuthorEntry
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkDetailsNullFields(t *testing.T) {
	body := `{"description": {"value": "D"}, "title": null, "authors": null, "covers": null, "created": null, "first_publish_date": null}`

	var w WorkDetails
	require.NoError(t, json.Unmarshal([]byte(body), &w))
	assert.Nil(t, w.Title)
	assert.Nil(t, w.Authors)
	assert.Nil(t, w.Covers)
	assert.Nil(t, w.FirstPublishDate)
	assert.Equal(t, TextAbsent, w.Created.Kind)
	assert.Equal(t, Text{Kind: TextWrapped, Value: "D"}, w.Description)
}
