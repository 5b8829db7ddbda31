package query

import (
	"context"
	"sort"
)

// AuthorPapers returns an author's papers sorted by year or citation
// count. Author matching is substring containment on the name.
func (e *Engine) AuthorPapers(ctx context.Context, name, sortBy string, limit int) ([]PaperSummary, error) {
	orderClause := `ORDER BY year DESC, citations DESC`
	if sortBy == "citations" {
		orderClause = `ORDER BY citations DESC, year DESC`
	}

	cypher := `
		MATCH (a:Author)-[:AUTHORED]->(p:Paper)
		WHERE toLower(a.name) CONTAINS toLower($name)
		RETURN DISTINCT p.paperId AS paperId,
		       p.title AS title,
		       coalesce(p.year, 0) AS year,
		       coalesce(p.venue, '') AS venue,
		       coalesce(p.citationCount, 0) AS citations
		` + orderClause + `
		LIMIT $limit`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{
		"name":  name,
		"limit": e.clampLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	papers := make([]PaperSummary, 0, len(rows))
	for _, row := range rows {
		papers = append(papers, paperSummaryFromRow(row))
	}
	return papers, nil
}

// Collaborators returns co-authors sharing at least minPapers papers
// with the named author, strongest collaborations first.
func (e *Engine) Collaborators(ctx context.Context, name string, minPapers, limit int) ([]Collaborator, error) {
	if minPapers < 1 {
		minPapers = 1
	}

	cypher := `
		MATCH (a:Author)-[c:COLLABORATED]-(b:Author)
		WHERE toLower(a.name) CONTAINS toLower($name)
		  AND coalesce(c.paperCount, 0) >= $minPapers
		RETURN b.name AS name,
		       coalesce(b.org, '') AS org,
		       coalesce(c.paperCount, 0) AS sharedPapers,
		       coalesce(c.firstYear, 0) AS firstYear,
		       coalesce(c.lastYear, 0) AS lastYear
		ORDER BY sharedPapers DESC, name
		LIMIT $limit`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{
		"name":      name,
		"minPapers": minPapers,
		"limit":     e.clampLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	collaborators := make([]Collaborator, 0, len(rows))
	for _, row := range rows {
		collaborators = append(collaborators, Collaborator{
			Name:         rowString(row, "name"),
			Org:          rowString(row, "org"),
			SharedPapers: rowInt(row, "sharedPapers"),
			FirstYear:    rowInt(row, "firstYear"),
			LastYear:     rowInt(row, "lastYear"),
		})
	}
	return collaborators, nil
}

// AuthorImpact returns paper count, total citations and h-index for
// the best-matching author.
func (e *Engine) AuthorImpact(ctx context.Context, name string) (*AuthorImpact, error) {
	cypher := `
		MATCH (a:Author)-[:AUTHORED]->(p:Paper)
		WHERE toLower(a.name) CONTAINS toLower($name)
		WITH a, collect(coalesce(p.citationCount, 0)) AS citations
		RETURN a.name AS name,
		       coalesce(a.org, '') AS org,
		       size(citations) AS paperCount,
		       reduce(total = 0, c IN citations | total + c) AS totalCitations,
		       citations
		ORDER BY paperCount DESC
		LIMIT 1`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	return &AuthorImpact{
		Name:           rowString(row, "name"),
		Org:            rowString(row, "org"),
		PaperCount:     rowInt(row, "paperCount"),
		TotalCitations: rowInt(row, "totalCitations"),
		HIndex:         HIndex(rowIntSlice(row, "citations")),
	}, nil
}

// HIndex computes the largest h such that at least h papers have >= h
// citations each.
func HIndex(citations []int) int {
	sorted := make([]int, len(citations))
	copy(sorted, citations)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	h := 0
	for i, c := range sorted {
		if c >= i+1 {
			h = i + 1
		} else {
			break
		}
	}
	return h
}

func paperSummaryFromRow(row map[string]any) PaperSummary {
	return PaperSummary{
		PaperID:   rowString(row, "paperId"),
		Title:     rowString(row, "title"),
		Year:      rowInt(row, "year"),
		Venue:     rowString(row, "venue"),
		Citations: rowInt(row, "citations"),
	}
}
