package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// maxKeywordFields caps how many field-of-study names are split out of
// a free-text keyword string.
const maxKeywordFields = 10

// keywordDelimiters is checked in order; the first one present in the
// string wins.
var keywordDelimiters = []string{";", ",", "|"}

// NormalizeRecord maps arbitrary external field names and shapes onto
// the canonical PaperRecord. Unknown fields are ignored; missing
// optional fields stay zero-valued. Validation happens separately.
func NormalizeRecord(raw map[string]any) *PaperRecord {
	rec := &PaperRecord{
		PaperID:       firstString(raw, "paperId", "paper_id", "id", "corpusId", "corpus_id", "_id"),
		Title:         firstString(raw, "title", "paperTitle", "paper_title"),
		Abstract:      firstString(raw, "abstract", "paperAbstract", "summary"),
		Year:          firstInt(raw, "year"),
		CitationCount: firstInt(raw, "citationCount", "citation_count", "n_citation", "numCitedBy"),
		DocType:       firstString(raw, "docType", "doc_type"),
		Publisher:     firstString(raw, "publisher"),
		Volume:        firstString(raw, "volume"),
		Issue:         firstString(raw, "issue"),
		Pages:         normalizePages(raw),
		DOI:           firstString(raw, "doi", "DOI"),
	}

	if rec.CitationCount < 0 {
		rec.CitationCount = 0
	}
	if rec.Year < 0 {
		rec.Year = 0
	}

	rec.Venue = normalizeVenue(raw)
	rec.Authors = normalizeAuthors(raw["authors"])
	rec.Fields = normalizeFields(raw)
	rec.Citations = normalizeCitations(raw)

	return rec
}

func normalizeVenue(raw map[string]any) VenueRef {
	// A venue value that yields no usable name falls through to the
	// journal-field aliases.
	switch v := raw["venue"].(type) {
	case string:
		if name := strings.TrimSpace(v); name != "" {
			return VenueRef{Name: name}
		}
	case map[string]any:
		if name := strings.TrimSpace(firstString(v, "name", "raw")); name != "" {
			return VenueRef{
				Name: name,
				Type: strings.TrimSpace(asString(v["type"])),
			}
		}
	}
	if name := firstString(raw, "journalName", "journal_name", "publicationVenue"); name != "" {
		return VenueRef{Name: name, Type: "journal"}
	}
	return VenueRef{}
}

func normalizeAuthors(v any) []AuthorRef {
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	var authors []AuthorRef
	for _, item := range list {
		switch a := item.(type) {
		case string:
			if name := strings.TrimSpace(a); name != "" {
				authors = append(authors, AuthorRef{Name: name})
			}
		case map[string]any:
			name := strings.TrimSpace(firstString(a, "name", "author_name"))
			if name == "" {
				continue
			}
			authors = append(authors, AuthorRef{
				Name: name,
				Org:  strings.TrimSpace(firstString(a, "org", "organization", "affiliation")),
			})
		}
	}
	return authors
}

// normalizeFields accepts a list of names, a list of {name: ...} maps,
// or a free-text keyword string split on the first recognized
// delimiter into up to 10 cleaned names.
func normalizeFields(raw map[string]any) []string {
	for _, key := range []string{"fieldsOfStudy", "fields_of_study", "fos", "fields", "keywords"} {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch f := v.(type) {
		case []any:
			var names []string
			for _, item := range f {
				var name string
				switch entry := item.(type) {
				case string:
					name = entry
				case map[string]any:
					name = firstString(entry, "name")
				}
				if name = cleanFieldName(name); name != "" {
					names = append(names, name)
				}
			}
			if len(names) > 0 {
				return names
			}
		case string:
			if names := SplitKeywords(f); len(names) > 0 {
				return names
			}
		}
	}
	return nil
}

// SplitKeywords breaks a free-text keyword string on the first
// delimiter found among ";", "," and "|", cleaning each part and
// keeping at most 10.
func SplitKeywords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := []string{s}
	for _, delim := range keywordDelimiters {
		if strings.Contains(s, delim) {
			parts = strings.Split(s, delim)
			break
		}
	}

	var names []string
	for _, part := range parts {
		if name := cleanFieldName(part); name != "" {
			names = append(names, name)
		}
		if len(names) == maxKeywordFields {
			break
		}
	}
	return names
}

func cleanFieldName(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".")
}

func normalizeCitations(raw map[string]any) []CitationRef {
	var citations []CitationRef

	// "references" is usually a bare list of natural keys.
	if refs, ok := raw["references"].([]any); ok {
		for _, item := range refs {
			if id := strings.TrimSpace(asString(item)); id != "" {
				citations = append(citations, CitationRef{PaperID: id, RefID: nameHash(id)})
			}
		}
	}

	// "citations" carries metadata for works that may not be ingested.
	if cites, ok := raw["citations"].([]any); ok {
		for _, item := range cites {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ref := CitationRef{
				PaperID: strings.TrimSpace(firstString(m, "paperId", "paper_id", "id")),
				Title:   strings.TrimSpace(firstString(m, "title")),
				Year:    firstInt(m, "year"),
				Venue:   strings.TrimSpace(firstString(m, "venue", "journalName")),
			}
			ref.RawAuthors = rawAuthorString(m["authors"])
			switch {
			case ref.Title != "":
				ref.RefID = ReferenceID(ref.Title)
			case ref.PaperID != "":
				ref.RefID = nameHash(ref.PaperID)
			default:
				continue
			}
			citations = append(citations, ref)
		}
	}

	return citations
}

// rawAuthorString flattens whatever author shape a citation carries
// into one display string, preserved on the Reference node.
func rawAuthorString(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case []any:
		var names []string
		for _, item := range a {
			switch entry := item.(type) {
			case string:
				if s := strings.TrimSpace(entry); s != "" {
					names = append(names, s)
				}
			case map[string]any:
				if s := strings.TrimSpace(firstString(entry, "name")); s != "" {
					names = append(names, s)
				}
			}
		}
		return strings.Join(names, "; ")
	}
	return ""
}

func normalizePages(raw map[string]any) string {
	if pages := firstString(raw, "pages"); pages != "" {
		return pages
	}
	start := firstString(raw, "page_start", "firstPage")
	end := firstString(raw, "page_end", "lastPage")
	if start != "" && end != "" {
		return fmt.Sprintf("%s-%s", start, end)
	}
	return start
}

// Coercion helpers. External records mix strings, JSON numbers and
// integers freely for the same field.

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key]); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) int {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return asInt(v)
		}
	}
	return 0
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return 0
}
