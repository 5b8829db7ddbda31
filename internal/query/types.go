package query

// PaperSummary is one paper row in a query result.
type PaperSummary struct {
	PaperID   string `json:"paper_id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Venue     string `json:"venue,omitempty"`
	Citations int    `json:"citations"`
}

// PaperDetail is a single paper with its linked entities.
type PaperDetail struct {
	PaperSummary
	Abstract   string   `json:"abstract,omitempty"`
	DocType    string   `json:"doc_type,omitempty"`
	Publisher  string   `json:"publisher,omitempty"`
	DOI        string   `json:"doi,omitempty"`
	Authors    []string `json:"authors"`
	Fields     []string `json:"fields"`
	References int      `json:"references"`
}

// Collaborator is one co-author row.
type Collaborator struct {
	Name         string `json:"name"`
	Org          string `json:"org,omitempty"`
	SharedPapers int    `json:"shared_papers"`
	FirstYear    int    `json:"first_year,omitempty"`
	LastYear     int    `json:"last_year,omitempty"`
}

// AuthorImpact summarizes an author's output and influence.
type AuthorImpact struct {
	Name           string `json:"name"`
	Org            string `json:"org,omitempty"`
	PaperCount     int    `json:"paper_count"`
	TotalCitations int    `json:"total_citations"`
	HIndex         int    `json:"h_index"`
}

// FieldHotness scores a field by recent activity.
type FieldHotness struct {
	Field        string  `json:"field"`
	RecentPapers int     `json:"recent_papers"`
	CitationSum  int     `json:"citation_sum"`
	Hotness      float64 `json:"hotness"`
}

// SimilarPaper is one row of the weighted-overlap similarity query.
type SimilarPaper struct {
	PaperSummary
	Score         int `json:"score"`
	SharedAuthors int `json:"shared_authors"`
	SharedFields  int `json:"shared_fields"`
	SharedRefs    int `json:"shared_refs"`
}

// LineageChain is one citation path from the root paper outward.
type LineageChain struct {
	IDs    []string `json:"ids"`
	Titles []string `json:"titles"`
	Depth  int      `json:"depth"`
}

// VenueImpact summarizes a publication venue.
type VenueImpact struct {
	Name           string  `json:"name"`
	Type           string  `json:"type,omitempty"`
	PaperCount     int     `json:"paper_count"`
	TotalCitations int     `json:"total_citations"`
	AvgCitations   float64 `json:"avg_citations"`
}

// SearchFilter combines conjunctive predicates for composite search.
// Zero values disable a predicate.
type SearchFilter struct {
	Text         string `json:"text,omitempty"`
	Author       string `json:"author,omitempty"`
	Field        string `json:"field,omitempty"`
	YearFrom     int    `json:"year_from,omitempty"`
	YearTo       int    `json:"year_to,omitempty"`
	MinCitations int    `json:"min_citations,omitempty"`
}
