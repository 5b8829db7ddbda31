package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecord_FieldAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want PaperRecord
	}{
		{
			name: "canonical keys",
			raw: map[string]any{
				"paperId":       "p1",
				"title":         "Graph Ingestion at Scale",
				"year":          2021,
				"citationCount": 42,
			},
			want: PaperRecord{PaperID: "p1", Title: "Graph Ingestion at Scale", Year: 2021, CitationCount: 42},
		},
		{
			name: "snake_case aliases",
			raw: map[string]any{
				"paper_id":       "p2",
				"paper_title":    "Snake Case Record",
				"citation_count": float64(7),
			},
			want: PaperRecord{PaperID: "p2", Title: "Snake Case Record", CitationCount: 7},
		},
		{
			name: "aminer style",
			raw: map[string]any{
				"id":         "p3",
				"title":      "DBLP Style",
				"n_citation": float64(13),
				"year":       float64(1999),
			},
			want: PaperRecord{PaperID: "p3", Title: "DBLP Style", Year: 1999, CitationCount: 13},
		},
		{
			name: "numeric id coerced to string",
			raw: map[string]any{
				"corpusId": float64(123456),
				"title":    "Numeric Identity",
			},
			want: PaperRecord{PaperID: "123456", Title: "Numeric Identity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NormalizeRecord(tt.raw)
			assert.Equal(t, tt.want.PaperID, rec.PaperID)
			assert.Equal(t, tt.want.Title, rec.Title)
			assert.Equal(t, tt.want.Year, rec.Year)
			assert.Equal(t, tt.want.CitationCount, rec.CitationCount)
		})
	}
}

func TestNormalizeRecord_ClampsNegativeCounts(t *testing.T) {
	rec := NormalizeRecord(map[string]any{
		"paperId":       "p1",
		"title":         "Negative Counters",
		"year":          -1,
		"citationCount": -5,
	})

	assert.Equal(t, 0, rec.Year)
	assert.Equal(t, 0, rec.CitationCount)
}

func TestNormalizeRecord_AuthorShapes(t *testing.T) {
	rec := NormalizeRecord(map[string]any{
		"paperId": "p1",
		"title":   "Author Shapes",
		"authors": []any{
			map[string]any{"name": " Jane Doe ", "org": "MIT"},
			map[string]any{"name": "John Roe"},
			"Alex Poe",
			map[string]any{"org": "orphan affiliation"}, // no name, skipped
		},
	})

	require.Len(t, rec.Authors, 3)
	assert.Equal(t, AuthorRef{Name: "Jane Doe", Org: "MIT"}, rec.Authors[0])
	assert.Equal(t, AuthorRef{Name: "John Roe"}, rec.Authors[1])
	assert.Equal(t, AuthorRef{Name: "Alex Poe"}, rec.Authors[2])
}

func TestNormalizeRecord_VenueShapes(t *testing.T) {
	t.Run("string venue", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t", "venue": " NeurIPS "})
		assert.Equal(t, VenueRef{Name: "NeurIPS"}, rec.Venue)
	})

	t.Run("map venue", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"venue": map[string]any{"name": "Nature", "type": "journal"},
		})
		assert.Equal(t, VenueRef{Name: "Nature", Type: "journal"}, rec.Venue)
	})

	t.Run("journalName fallback", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t", "journalName": "Science"})
		assert.Equal(t, VenueRef{Name: "Science", Type: "journal"}, rec.Venue)
	})

	t.Run("nameless map venue falls back to journalName", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"venue":       map[string]any{"type": "conference"},
			"journalName": "Cell",
		})
		assert.Equal(t, VenueRef{Name: "Cell", Type: "journal"}, rec.Venue)
	})

	t.Run("blank string venue falls back to publicationVenue", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"venue":            "   ",
			"publicationVenue": "PLOS ONE",
		})
		assert.Equal(t, VenueRef{Name: "PLOS ONE", Type: "journal"}, rec.Venue)
	})

	t.Run("absent venue", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t"})
		assert.Equal(t, VenueRef{}, rec.Venue)
	})
}

func TestNormalizeRecord_FieldShapes(t *testing.T) {
	t.Run("list of strings", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"fieldsOfStudy": []any{"Computer Science", "Mathematics"},
		})
		assert.Equal(t, []string{"Computer Science", "Mathematics"}, rec.Fields)
	})

	t.Run("list of maps", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"fos": []any{map[string]any{"name": "Biology", "w": 0.5}},
		})
		assert.Equal(t, []string{"Biology"}, rec.Fields)
	})

	t.Run("keyword string", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{
			"paperId": "p", "title": "t",
			"keywords": "graphs; databases; indexing",
		})
		assert.Equal(t, []string{"graphs", "databases", "indexing"}, rec.Fields)
	})
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"semicolons", "graphs; databases;indexing", []string{"graphs", "databases", "indexing"}},
		{"commas", "graphs, databases", []string{"graphs", "databases"}},
		{"pipes", "graphs|databases", []string{"graphs", "databases"}},
		{"semicolon wins over comma", "a, b; c, d", []string{"a, b", "c, d"}},
		{"single keyword", "graphs", []string{"graphs"}},
		{"trailing dots trimmed", "graphs.; databases.", []string{"graphs", "databases"}},
		{"empty parts dropped", "a;;b; ;c", []string{"a", "b", "c"}},
		{"blank input", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitKeywords(tt.input))
		})
	}
}

func TestSplitKeywords_CapsAtTen(t *testing.T) {
	got := SplitKeywords("a;b;c;d;e;f;g;h;i;j;k;l")
	assert.Len(t, got, 10)
	assert.Equal(t, "j", got[9])
}

func TestNormalizeRecord_BareReferences(t *testing.T) {
	rec := NormalizeRecord(map[string]any{
		"paperId":    "p1",
		"title":      "t",
		"references": []any{"r1", " r2 ", ""},
	})

	require.Len(t, rec.Citations, 2)
	assert.Equal(t, "r1", rec.Citations[0].PaperID)
	assert.Equal(t, "r2", rec.Citations[1].PaperID)
	assert.NotEmpty(t, rec.Citations[0].RefID)
	assert.Empty(t, rec.Citations[0].Title)
}

func TestNormalizeRecord_CitationMetadata(t *testing.T) {
	rec := NormalizeRecord(map[string]any{
		"paperId": "p1",
		"title":   "t",
		"citations": []any{
			map[string]any{
				"title":   "Cited Work",
				"year":    float64(2015),
				"venue":   "ICML",
				"authors": []any{map[string]any{"name": "A One"}, map[string]any{"name": "B Two"}},
			},
			map[string]any{"paperId": "ext-9"},    // id only, still kept
			map[string]any{"note": "no identity"}, // no title, no id: skipped
		},
	})

	require.Len(t, rec.Citations, 2)

	withTitle := rec.Citations[0]
	assert.Equal(t, "Cited Work", withTitle.Title)
	assert.Equal(t, ReferenceID("Cited Work"), withTitle.RefID)
	assert.Equal(t, 2015, withTitle.Year)
	assert.Equal(t, "ICML", withTitle.Venue)
	assert.Equal(t, "A One; B Two", withTitle.RawAuthors)

	idOnly := rec.Citations[1]
	assert.Equal(t, "ext-9", idOnly.PaperID)
	assert.NotEmpty(t, idOnly.RefID)
}

func TestNormalizeRecord_Pages(t *testing.T) {
	t.Run("explicit pages", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t", "pages": "10-20"})
		assert.Equal(t, "10-20", rec.Pages)
	})

	t.Run("start and end joined", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t", "page_start": "101", "page_end": "113"})
		assert.Equal(t, "101-113", rec.Pages)
	})

	t.Run("start only", func(t *testing.T) {
		rec := NormalizeRecord(map[string]any{"paperId": "p", "title": "t", "page_start": "101"})
		assert.Equal(t, "101", rec.Pages)
	})
}

func TestAsInt_Coercions(t *testing.T) {
	assert.Equal(t, 7, asInt(7))
	assert.Equal(t, 7, asInt(int64(7)))
	assert.Equal(t, 7, asInt(float64(7.9)))
	assert.Equal(t, 7, asInt(" 7 "))
	assert.Equal(t, 0, asInt("not a number"))
	assert.Equal(t, 0, asInt(nil))
}
