package builder

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// commitRecord writes one record in one transaction: paper, authors,
// fields, venue, then citations, in fixed order. It returns the
// creation counts observed by the store so retried attempts never
// double-count; only a committed transaction's tally — and its
// deferred citations — reaches the run totals.
func (b *Builder) commitRecord(ctx context.Context, session neo4j.SessionWithContext, rec *PaperRecord) (BuildDetails, []citedPair, error) {
	var d BuildDetails

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return d, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := b.upsertPaper(ctx, tx, rec, &d); err != nil {
		return BuildDetails{}, nil, err
	}
	if err := b.upsertAuthors(ctx, tx, rec, &d); err != nil {
		return BuildDetails{}, nil, err
	}
	if err := b.upsertFields(ctx, tx, rec, &d); err != nil {
		return BuildDetails{}, nil, err
	}
	if err := b.upsertVenue(ctx, tx, rec, &d); err != nil {
		return BuildDetails{}, nil, err
	}
	deferred, err := b.upsertCitations(ctx, tx, rec, &d)
	if err != nil {
		return BuildDetails{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return BuildDetails{}, nil, err
	}
	return d, deferred, nil
}

func (b *Builder) upsertPaper(ctx context.Context, tx neo4j.ExplicitTransaction, rec *PaperRecord, d *BuildDetails) error {
	// Later ingestions overwrite scalar fields rather than merging them.
	nodes, rels, _, err := runStep(ctx, tx, `
		MERGE (p:Paper {paperId: $paperId})
		SET p.title = $title,
		    p.abstract = $abstract,
		    p.year = $year,
		    p.venue = $venue,
		    p.citationCount = $citationCount,
		    p.docType = $docType,
		    p.publisher = $publisher,
		    p.volume = $volume,
		    p.issue = $issue,
		    p.pages = $pages,
		    p.doi = $doi
	`, map[string]any{
		"paperId":       rec.PaperID,
		"title":         rec.Title,
		"abstract":      rec.Abstract,
		"year":          yearParam(rec.Year),
		"venue":         rec.Venue.Name,
		"citationCount": rec.CitationCount,
		"docType":       rec.DocType,
		"publisher":     rec.Publisher,
		"volume":        rec.Volume,
		"issue":         rec.Issue,
		"pages":         rec.Pages,
		"doi":           rec.DOI,
	})
	if err != nil {
		return err
	}
	d.PapersCreated += int64(nodes)
	d.RelationshipsCreated += int64(rels)
	return nil
}

func (b *Builder) upsertAuthors(ctx context.Context, tx neo4j.ExplicitTransaction, rec *PaperRecord, d *BuildDetails) error {
	for i, author := range rec.Authors {
		// org is only ever replaced by a longer, more detailed value.
		nodes, rels, _, err := runStep(ctx, tx, `
			MERGE (a:Author {authorId: $authorId})
			ON CREATE SET a.name = $name,
			              a.org = $org,
			              a.totalPapers = 1
			ON MATCH SET a.totalPapers = coalesce(a.totalPapers, 0) + 1,
			             a.org = CASE WHEN size($org) > size(coalesce(a.org, '')) THEN $org ELSE a.org END
			WITH a
			MATCH (p:Paper {paperId: $paperId})
			MERGE (a)-[r:AUTHORED]->(p)
			SET r.position = $position
		`, map[string]any{
			"authorId": AuthorID(author.Name),
			"name":     author.Name,
			"org":      author.Org,
			"paperId":  rec.PaperID,
			"position": positionFor(i, len(rec.Authors)),
		})
		if err != nil {
			return err
		}
		d.AuthorsCreated += int64(nodes)
		d.RelationshipsCreated += int64(rels)
	}
	return nil
}

func (b *Builder) upsertFields(ctx context.Context, tx neo4j.ExplicitTransaction, rec *PaperRecord, d *BuildDetails) error {
	for _, field := range rec.Fields {
		// paperCount is a monotonic popularity signal, not a live edge count.
		nodes, rels, _, err := runStep(ctx, tx, `
			MERGE (f:FieldOfStudy {fieldId: $fieldId})
			ON CREATE SET f.name = $name,
			              f.paperCount = 1
			ON MATCH SET f.paperCount = coalesce(f.paperCount, 0) + 1
			WITH f
			MATCH (p:Paper {paperId: $paperId})
			MERGE (p)-[:BELONGS_TO_FIELD]->(f)
		`, map[string]any{
			"fieldId": FieldID(field),
			"name":    field,
			"paperId": rec.PaperID,
		})
		if err != nil {
			return err
		}
		d.FieldsCreated += int64(nodes)
		d.RelationshipsCreated += int64(rels)
	}
	return nil
}

func (b *Builder) upsertVenue(ctx context.Context, tx neo4j.ExplicitTransaction, rec *PaperRecord, d *BuildDetails) error {
	if rec.Venue.Name == "" {
		return nil
	}
	nodes, rels, _, err := runStep(ctx, tx, `
		MERGE (v:Venue {venueId: $venueId})
		ON CREATE SET v.name = $name,
		              v.type = $type,
		              v.paperCount = 1
		ON MATCH SET v.paperCount = coalesce(v.paperCount, 0) + 1
		WITH v
		MATCH (p:Paper {paperId: $paperId})
		MERGE (p)-[r:PUBLISHED_IN]->(v)
		SET r.year = $year
	`, map[string]any{
		"venueId": VenueID(rec.Venue.Name),
		"name":    rec.Venue.Name,
		"type":    rec.Venue.Type,
		"paperId": rec.PaperID,
		"year":    yearParam(rec.Year),
	})
	if err != nil {
		return err
	}
	d.VenuesCreated += int64(nodes)
	d.RelationshipsCreated += int64(rels)
	return nil
}

func (b *Builder) upsertCitations(ctx context.Context, tx neo4j.ExplicitTransaction, rec *PaperRecord, d *BuildDetails) ([]citedPair, error) {
	var deferred []citedPair
	for _, cit := range rec.Citations {
		resolved := false
		if cit.PaperID != "" {
			// Paper-to-Paper edge when the natural key is already ingested.
			_, rels, matched, err := runStep(ctx, tx, `
				MATCH (src:Paper {paperId: $src})
				MATCH (dst:Paper {paperId: $dst})
				MERGE (src)-[:CITED]->(dst)
				RETURN dst.paperId AS matched
			`, map[string]any{
				"src": rec.PaperID,
				"dst": cit.PaperID,
			})
			if err != nil {
				return nil, err
			}
			if matched > 0 {
				d.RelationshipsCreated += int64(rels)
				resolved = true
			}
		}

		if resolved {
			continue
		}

		if cit.Title == "" {
			// No metadata to hang a Reference on; the target may still
			// commit later in the run, so the edge is replayed after
			// all batches drain.
			deferred = append(deferred, citedPair{Src: rec.PaperID, Dst: cit.PaperID})
			continue
		}

		// The natural key, when present, is kept on the Reference so a
		// later-committing Paper with that key can absorb it.
		nodes, rels, _, err := runStep(ctx, tx, `
			MERGE (ref:Reference {refId: $refId})
			ON CREATE SET ref.title = $title,
			              ref.authors = $rawAuthors,
			              ref.year = $year,
			              ref.venue = $venue
			SET ref.paperId = coalesce($paperId, ref.paperId)
			WITH ref
			MATCH (src:Paper {paperId: $src})
			MERGE (src)-[:CITED]->(ref)
		`, map[string]any{
			"refId":      cit.RefID,
			"title":      cit.Title,
			"rawAuthors": cit.RawAuthors,
			"year":       yearParam(cit.Year),
			"venue":      cit.Venue,
			"paperId":    stringParam(cit.PaperID),
			"src":        rec.PaperID,
		})
		if err != nil {
			return nil, err
		}
		d.ReferencesCreated += int64(nodes)
		d.RelationshipsCreated += int64(rels)

		if err := b.upsertReferenceAuthors(ctx, tx, cit, d); err != nil {
			return nil, err
		}
		if err := b.upsertReferenceVenue(ctx, tx, cit, d); err != nil {
			return nil, err
		}
	}
	return deferred, nil
}

func (b *Builder) upsertReferenceAuthors(ctx context.Context, tx neo4j.ExplicitTransaction, cit CitationRef, d *BuildDetails) error {
	names := parseRawAuthors(cit.RawAuthors)
	for i, name := range names {
		nodes, rels, _, err := runStep(ctx, tx, `
			MERGE (a:Author {authorId: $authorId})
			ON CREATE SET a.name = $name,
			              a.totalPapers = 0
			WITH a
			MATCH (ref:Reference {refId: $refId})
			MERGE (a)-[r:AUTHORED]->(ref)
			SET r.position = $position
		`, map[string]any{
			"authorId": AuthorID(name),
			"name":     name,
			"refId":    cit.RefID,
			"position": positionFor(i, len(names)),
		})
		if err != nil {
			return err
		}
		d.ReferenceAuthorsCreated += int64(nodes)
		d.RelationshipsCreated += int64(rels)
	}
	return nil
}

func (b *Builder) upsertReferenceVenue(ctx context.Context, tx neo4j.ExplicitTransaction, cit CitationRef, d *BuildDetails) error {
	if cit.Venue == "" {
		return nil
	}
	nodes, rels, _, err := runStep(ctx, tx, `
		MERGE (v:Venue {venueId: $venueId})
		ON CREATE SET v.name = $name,
		              v.paperCount = 0
		WITH v
		MATCH (ref:Reference {refId: $refId})
		MERGE (ref)-[r:PUBLISHED_IN]->(v)
		SET r.year = $year
	`, map[string]any{
		"venueId": VenueID(cit.Venue),
		"name":    cit.Venue,
		"refId":   cit.RefID,
		"year":    yearParam(cit.Year),
	})
	if err != nil {
		return err
	}
	d.ReferenceVenuesCreated += int64(nodes)
	d.RelationshipsCreated += int64(rels)
	return nil
}

// runStep executes one statement inside the record's transaction and
// returns (nodes created, relationships created, rows returned).
func runStep(ctx context.Context, tx neo4j.ExplicitTransaction, cypher string, params map[string]any) (int, int, int, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return 0, 0, 0, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	summary, err := res.Consume(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	nodes, rels := 0, 0
	if counters := summary.Counters(); counters != nil {
		nodes = counters.NodesCreated()
		rels = counters.RelationshipsCreated()
	}
	return nodes, rels, len(records), nil
}

// positionFor maps a list index onto the AUTHORED position property.
func positionFor(i, total int) string {
	switch {
	case i == 0:
		return "first"
	case i == total-1:
		return "last"
	default:
		return "middle"
	}
}

// parseRawAuthors splits a citation's free-text author string into
// individual names.
func parseRawAuthors(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(raw, ";") {
		sep = ","
	}
	var names []string
	for _, part := range strings.Split(raw, sep) {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// yearParam sends null for unknown years so they sort after real
// values under the query engine's coalesce conventions.
func yearParam(year int) any {
	if year <= 0 {
		return nil
	}
	return year
}

// stringParam sends null for empty strings so an absent value never
// overwrites a stored one.
func stringParam(s string) any {
	if s == "" {
		return nil
	}
	return s
}
