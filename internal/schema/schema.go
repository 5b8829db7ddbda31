// Package schema holds the static shape of the citation graph: node
// labels, relationship types, and the idempotent constraint/index
// statements applied once at bootstrap.
package schema

import (
	"strings"

	"citegraph/pkg/errors"
)

// Node labels
const (
	LabelPaper        = "Paper"
	LabelAuthor       = "Author"
	LabelFieldOfStudy = "FieldOfStudy"
	LabelVenue        = "Venue"
	LabelReference    = "Reference"
)

// Relationship types
const (
	RelAuthored       = "AUTHORED"
	RelCited          = "CITED"
	RelBelongsToField = "BELONGS_TO_FIELD"
	RelPublishedIn    = "PUBLISHED_IN"
	RelCollaborated   = "COLLABORATED"
)

// Labels returns every node label in the graph.
func Labels() []string {
	return []string{LabelPaper, LabelAuthor, LabelFieldOfStudy, LabelVenue, LabelReference}
}

// RelationshipTypes returns every relationship type in the graph.
func RelationshipTypes() []string {
	return []string{RelAuthored, RelCited, RelBelongsToField, RelPublishedIn, RelCollaborated}
}

// Constraints returns one uniqueness constraint per entity, keyed on
// its derived identity. All statements are IF NOT EXISTS so repeated
// bootstrap is safe.
func Constraints() []string {
	return []string{
		`CREATE CONSTRAINT paper_id_unique IF NOT EXISTS FOR (p:Paper) REQUIRE p.paperId IS UNIQUE`,
		`CREATE CONSTRAINT author_id_unique IF NOT EXISTS FOR (a:Author) REQUIRE a.authorId IS UNIQUE`,
		`CREATE CONSTRAINT field_id_unique IF NOT EXISTS FOR (f:FieldOfStudy) REQUIRE f.fieldId IS UNIQUE`,
		`CREATE CONSTRAINT venue_id_unique IF NOT EXISTS FOR (v:Venue) REQUIRE v.venueId IS UNIQUE`,
		`CREATE CONSTRAINT reference_id_unique IF NOT EXISTS FOR (r:Reference) REQUIRE r.refId IS UNIQUE`,
	}
}

// Indexes returns secondary indexes on frequently filtered and sorted
// fields. Same IF NOT EXISTS idempotence as Constraints.
func Indexes() []string {
	return []string{
		`CREATE INDEX paper_title_index IF NOT EXISTS FOR (p:Paper) ON (p.title)`,
		`CREATE INDEX paper_year_index IF NOT EXISTS FOR (p:Paper) ON (p.year)`,
		`CREATE INDEX paper_citations_index IF NOT EXISTS FOR (p:Paper) ON (p.citationCount)`,
		`CREATE INDEX author_name_index IF NOT EXISTS FOR (a:Author) ON (a.name)`,
		`CREATE INDEX author_org_index IF NOT EXISTS FOR (a:Author) ON (a.org)`,
		`CREATE INDEX field_name_index IF NOT EXISTS FOR (f:FieldOfStudy) ON (f.name)`,
		`CREATE INDEX venue_name_index IF NOT EXISTS FOR (v:Venue) ON (v.name)`,
		`CREATE INDEX reference_title_index IF NOT EXISTS FOR (r:Reference) ON (r.title)`,
	}
}

// All returns constraints followed by indexes, the order they are
// applied at bootstrap.
func All() []string {
	return append(Constraints(), Indexes()...)
}

// ValidateRecord gates a record's entry into the ingestion pipeline.
// Both an identity and a title are required; anything else is a
// property refresh candidate and may be absent.
func ValidateRecord(paperID, title string) error {
	if strings.TrimSpace(paperID) == "" {
		return errors.NewRecordRejected("missing paper id")
	}
	if strings.TrimSpace(title) == "" {
		return errors.NewRecordRejected("missing title")
	}
	return nil
}
