package query

import (
	"context"
)

// FieldHotness scores fields of study by recent paper count plus a
// weighted citation sum over papers published since sinceYear.
func (e *Engine) FieldHotness(ctx context.Context, sinceYear, limit int) ([]FieldHotness, error) {
	cypher := `
		MATCH (p:Paper)-[:BELONGS_TO_FIELD]->(f:FieldOfStudy)
		WHERE coalesce(p.year, 0) >= $sinceYear
		WITH f, count(p) AS recentPapers, sum(coalesce(p.citationCount, 0)) AS citationSum
		RETURN f.name AS field,
		       recentPapers,
		       citationSum,
		       recentPapers + citationSum * 0.1 AS hotness
		ORDER BY hotness DESC, field
		LIMIT $limit`

	rows, err := e.store.ExecuteQuery(ctx, cypher, map[string]any{
		"sinceYear": sinceYear,
		"limit":     e.clampLimit(limit),
	})
	if err != nil {
		return nil, err
	}

	fields := make([]FieldHotness, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, FieldHotness{
			Field:        rowString(row, "field"),
			RecentPapers: rowInt(row, "recentPapers"),
			CitationSum:  rowInt(row, "citationSum"),
			Hotness:      rowFloat(row, "hotness"),
		})
	}
	return fields, nil
}

// VenueImpact summarizes one venue's output: paper count, total and
// average citations.
func (e *Engine) VenueImpact(ctx context.Context, name string) (*VenueImpact, error) {
	cypher := `
		MATCH (v:Venue)<-[:PUBLISHED_IN]-(p:Paper)
		WHERE toLower(v.name) CONTAINS toLower($name)
		WITH v, count(p) AS paperCount, sum(coalesce(p.citationCount, 0)) AS totalCitations
		RETURN v.name AS name,
		       coalesce(v.type, '') AS type,
		       paperCount,
		       totalCitations,
		       totalCitations * 1.0 / paperCount AS avgCitations
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
	return &VenueImpact{
		Name:           rowString(row, "name"),
		Type:           rowString(row, "type"),
		PaperCount:     rowInt(row, "paperCount"),
		TotalCitations: rowInt(row, "totalCitations"),
		AvgCitations:   rowFloat(row, "avgCitations"),
	}, nil
}
