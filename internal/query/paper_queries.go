package query

import (
	"context"
	"fmt"
)

// maxLineageDepth bounds the multi-hop citation traversal.
const maxLineageDepth = 5

// PaperDetails fetches one paper with its authors, fields and
// reference count.
func (e *Engine) PaperDetails(ctx context.Context, paperID string) (*PaperDetail, error) {
	cypher := `
		MATCH (p:Paper {paperId: $paperId})
		OPTIONAL MATCH (p)<-[:AUTHORED]-(a:Author)
		OPTIONAL MATCH (p)-[:BELONGS_TO_FIELD]->(f:FieldOfStudy)
		OPTIONAL MATCH (p)-[:CITED]->(cited)
		RETURN p.paperId AS paperId,
		       p.title AS title,
		       coalesce(p.year, 0) AS year,
		       coalesce(p.venue, '') AS venue,
		       coalesce(p.citationCount, 0) AS citations,
		       coalesce(p.abstract, '') AS abstract,
		       coalesce(p.docType, '') AS docType,
		       coalesce(p.publisher, '') AS publisher,
		       coalesce(p.doi, '') AS doi,
		       collect(DISTINCT a.name) AS authors,
		       collect(DISTINCT f.name) AS fields,
		       count(DISTINCT cited) AS references`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{"paperId": paperID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rowString(rows[0], "paperId") == "" {
		return nil, nil
	}

	row := rows[0]
	return &PaperDetail{
		PaperSummary: paperSummaryFromRow(row),
		Abstract:     rowString(row, "abstract"),
		DocType:      rowString(row, "docType"),
		Publisher:    rowString(row, "publisher"),
		DOI:          rowString(row, "doi"),
		Authors:      rowStringSlice(row, "authors"),
		Fields:       rowStringSlice(row, "fields"),
		References:   rowInt(row, "references"),
	}, nil
}

// SimilarPapers ranks papers by weighted overlap with the given one:
// 3x shared authors + 2x shared fields + 1x shared references.
func (e *Engine) SimilarPapers(ctx context.Context, paperID string, limit int) ([]SimilarPaper, error) {
	cypher := `
		MATCH (p:Paper {paperId: $paperId})
		MATCH (other:Paper)
		WHERE other.paperId <> p.paperId
		OPTIONAL MATCH (p)<-[:AUTHORED]-(a:Author)-[:AUTHORED]->(other)
		WITH p, other, count(DISTINCT a) AS sharedAuthors
		OPTIONAL MATCH (p)-[:BELONGS_TO_FIELD]->(f:FieldOfStudy)<-[:BELONGS_TO_FIELD]-(other)
		WITH p, other, sharedAuthors, count(DISTINCT f) AS sharedFields
		OPTIONAL MATCH (p)-[:CITED]->(r)<-[:CITED]-(other)
		WITH other, sharedAuthors, sharedFields, count(DISTINCT r) AS sharedRefs
		WITH other, sharedAuthors, sharedFields, sharedRefs,
		     sharedAuthors * 3 + sharedFields * 2 + sharedRefs AS score
		WHERE score > 0
		RETURN other.paperId AS paperId,
		       other.title AS title,
		       coalesce(other.year, 0) AS year,
		       coalesce(other.venue, '') AS venue,
		       coalesce(other.citationCount, 0) AS citations,
		       score, sharedAuthors, sharedFields, sharedRefs
		ORDER BY score DESC, citations DESC
		LIMIT $limit`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{
		"paperId": paperID,
		"limit":   e.clampLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	papers := make([]SimilarPaper, 0, len(rows))
	for _, row := range rows {
		papers = append(papers, SimilarPaper{
			PaperSummary:  paperSummaryFromRow(row),
			Score:         rowInt(row, "score"),
			SharedAuthors: rowInt(row, "sharedAuthors"),
			SharedFields:  rowInt(row, "sharedFields"),
			SharedRefs:    rowInt(row, "sharedRefs"),
		})
	}
	return papers, nil
}

// CitationLineage follows CITED chains outward from a paper to a
// caller-bounded depth (capped at 5 hops).
func (e *Engine) CitationLineage(ctx context.Context, paperID string, depth, limit int) ([]LineageChain, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > maxLineageDepth {
		depth = maxLineageDepth
	}

	// Variable-length bounds cannot be parameterized; depth is clamped
	// to a small integer above before interpolation.
	cypher := fmt.Sprintf(`
		MATCH path = (p:Paper {paperId: $paperId})-[:CITED*1..%d]->(target)
		RETURN [n IN nodes(path) | coalesce(n.paperId, n.refId)] AS ids,
		       [n IN nodes(path) | coalesce(n.title, '')] AS titles,
		       length(path) AS depth
		ORDER BY depth, ids[-1]
		LIMIT $limit`, depth)

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{
		"paperId": paperID,
		"limit":   e.clampLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	chains := make([]LineageChain, 0, len(rows))
	for _, row := range rows {
		chains = append(chains, LineageChain{
			IDs:    rowStringSlice(row, "ids"),
			Titles: rowStringSlice(row, "titles"),
			Depth:  rowInt(row, "depth"),
		})
	}
	return chains, nil
}

// TopCitedPapers returns the most cited papers, optionally restricted
// to one field of study.
func (e *Engine) TopCitedPapers(ctx context.Context, field string, limit int) ([]PaperSummary, error) {
	cypher := `
		MATCH (p:Paper)
		RETURN p.paperId AS paperId,
		       p.title AS title,
		       coalesce(p.year, 0) AS year,
		       coalesce(p.venue, '') AS venue,
		       coalesce(p.citationCount, 0) AS citations
		ORDER BY citations DESC, year DESC
		LIMIT $limit`
	params := map[string]any{"limit": e.clampLimit(limit)}

	if field != "" {
		cypher = `
			MATCH (p:Paper)-[:BELONGS_TO_FIELD]->(f:FieldOfStudy)
			WHERE toLower(f.name) CONTAINS toLower($field)
			RETURN DISTINCT p.paperId AS paperId,
			       p.title AS title,
			       coalesce(p.year, 0) AS year,
			       coalesce(p.venue, '') AS venue,
			       coalesce(p.citationCount, 0) AS citations
			ORDER BY citations DESC, year DESC
			LIMIT $limit`
		params["field"] = field
	}

	rows, err := e.store.ExecuteQuery(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	papers := make([]PaperSummary, 0, len(rows))
	for _, row := range rows {
		papers = append(papers, paperSummaryFromRow(row))
	}
	return papers, nil
}
