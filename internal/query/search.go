package query

import (
	"context"
	"strings"
)

// SearchPapers combines free-text, author, field, year-range and
// minimum-citation predicates conjunctively. Zero-valued filter fields
// are skipped; text matching is substring containment on title or
// abstract.
func (e *Engine) SearchPapers(ctx context.Context, filter SearchFilter, limit int) ([]PaperSummary, error) {
	var clauses []string
	params := map[string]any{"limit": e.clampLimit(limit)}

	if filter.Text != "" {
		clauses = append(clauses,
			`(toLower(p.title) CONTAINS toLower($text) OR toLower(coalesce(p.abstract, '')) CONTAINS toLower($text))`)
		params["text"] = filter.Text
	}
	if filter.Author != "" {
		clauses = append(clauses,
			`EXISTS { MATCH (p)<-[:AUTHORED]-(a:Author) WHERE toLower(a.name) CONTAINS toLower($author) }`)
		params["author"] = filter.Author
	}
	if filter.Field != "" {
		clauses = append(clauses,
			`EXISTS { MATCH (p)-[:BELONGS_TO_FIELD]->(f:FieldOfStudy) WHERE toLower(f.name) CONTAINS toLower($field) }`)
		params["field"] = filter.Field
	}
	if filter.YearFrom > 0 {
		clauses = append(clauses, `coalesce(p.year, 0) >= $yearFrom`)
		params["yearFrom"] = filter.YearFrom
	}
	if filter.YearTo > 0 {
		clauses = append(clauses, `coalesce(p.year, 0) <= $yearTo`)
		params["yearTo"] = filter.YearTo
	}
	if filter.MinCitations > 0 {
		clauses = append(clauses, `coalesce(p.citationCount, 0) >= $minCitations`)
		params["minCitations"] = filter.MinCitations
	}

	cypher := `MATCH (p:Paper)`
	if len(clauses) > 0 {
		cypher += "\nWHERE " + strings.Join(clauses, "\n  AND ")
	}
	cypher += `
		RETURN p.paperId AS paperId,
		       p.title AS title,
		       coalesce(p.year, 0) AS year,
		       coalesce(p.venue, '') AS venue,
		       coalesce(p.citationCount, 0) AS citations
		ORDER BY citations DESC, year DESC
		LIMIT $limit`

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
