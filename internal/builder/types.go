package builder

import (
	"citegraph/internal/store"
)

// PaperRecord is the canonical shape every raw record is normalized
// into before validation and commit.
type PaperRecord struct {
	PaperID       string
	Title         string
	Abstract      string
	Year          int // 0 when unknown
	CitationCount int
	DocType       string
	Publisher     string
	Volume        string
	Issue         string
	Pages         string
	DOI           string

	Venue     VenueRef
	Authors   []AuthorRef
	Fields    []string
	Citations []CitationRef
}

// AuthorRef is an author as listed on a paper. The id is derived from
// the name alone; organization is deliberately excluded from the key.
type AuthorRef struct {
	Name string
	Org  string
}

// VenueRef is a venue display name plus an optional type
// (journal/conference).
type VenueRef struct {
	Name string
	Type string
}

// CitationRef is a cited work. PaperID is the natural key when the
// source supplied one; RefID is always populated so a Reference node
// can be keyed when the target is not an ingested Paper.
type CitationRef struct {
	PaperID    string
	RefID      string
	Title      string
	RawAuthors string
	Year       int
	Venue      string
}

// citedPair is a natural-key citation whose target paper had not
// committed when the citing record did.
type citedPair struct {
	Src string
	Dst string
}

// BuildDetails carries per-entity-type creation counts for one run.
type BuildDetails struct {
	PapersCreated           int64 `json:"papers_created"`
	AuthorsCreated          int64 `json:"authors_created"`
	FieldsCreated           int64 `json:"fields_created"`
	VenuesCreated           int64 `json:"venues_created"`
	ReferencesCreated       int64 `json:"references_created"`
	ReferenceAuthorsCreated int64 `json:"reference_authors_created"`
	ReferenceVenuesCreated  int64 `json:"reference_venues_created"`
	RelationshipsCreated    int64 `json:"relationships_created"`
}

// BuildResult is the summary returned by every ingestion run, partial
// failures included.
type BuildResult struct {
	Success         bool                 `json:"success"`
	RunID           string               `json:"run_id"`
	PapersProcessed int                  `json:"papers_processed"`
	PapersDropped   int                  `json:"papers_dropped"`
	PapersFailed    int                  `json:"papers_failed"`
	ElapsedSeconds  float64              `json:"elapsed_time_seconds"`
	DatabaseStats   *store.DatabaseStats `json:"database_stats"`
	Details         BuildDetails         `json:"details"`
}
