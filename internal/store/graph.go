package store

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"go.uber.org/zap"
)

// Node is a graph node resolved for visualization.
type Node struct {
	ID     string         `json:"id"`
	Labels []string       `json:"labels"`
	Props  map[string]any `json:"properties"`
}

// Relationship is a typed, directed edge resolved for visualization.
type Relationship struct {
	ID      string         `json:"id"`
	StartID string         `json:"start_id"`
	EndID   string         `json:"end_id"`
	Type    string         `json:"type"`
	Props   map[string]any `json:"properties"`
}

// Subgraph is the set of nodes and relationships touching the
// identities found in a query's business-data result, independent of
// that query's declared projection.
type Subgraph struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// GraphResult pairs exact projection rows with the visualization
// subgraph resolved around them.
type GraphResult struct {
	Rows  []map[string]any `json:"rows"`
	Graph Subgraph         `json:"graph"`
}

// idFieldExpansions maps each recognized identity field to the query
// that fetches that entity plus its immediate neighborhood.
var idFieldExpansions = map[string]string{
	"paperId": `MATCH (e:Paper) WHERE e.paperId IN $ids
		OPTIONAL MATCH (e)-[r]-(n)
		RETURN e, r, n`,
	"authorId": `MATCH (e:Author) WHERE e.authorId IN $ids
		OPTIONAL MATCH (e)-[r]-(n)
		RETURN e, r, n`,
	"fieldId": `MATCH (e:FieldOfStudy) WHERE e.fieldId IN $ids
		OPTIONAL MATCH (e)-[r]-(n)
		RETURN e, r, n`,
	"venueId": `MATCH (e:Venue) WHERE e.venueId IN $ids
		OPTIONAL MATCH (e)-[r]-(n)
		RETURN e, r, n`,
	"refId": `MATCH (e:Reference) WHERE e.refId IN $ids
		OPTIONAL MATCH (e)-[r]-(n)
		RETURN e, r, n`,
}

// ExecuteQueryWithGraph runs the caller's query unchanged, then, as a
// fully independent second step, scans the returned rows for
// recognized identity fields (bare or alias-prefixed, e.g. "paperId"
// or "p.paperId") and issues one expansion per entity type found. The
// two paths never contaminate each other: the rows are exactly what
// ExecuteQuery would return, and the subgraph is resolved from the ids
// alone.
func (c *Client) ExecuteQueryWithGraph(ctx context.Context, cypher string, params map[string]any) (*GraphResult, error) {
	rows, err := c.ExecuteQuery(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	idsByField := collectIdentityFields(rows)
	result := &GraphResult{
		Rows:  rows,
		Graph: Subgraph{Nodes: []Node{}, Relationships: []Relationship{}},
	}
	if len(idsByField) == 0 {
		return result, nil
	}

	seenNodes := make(map[string]bool)
	seenRels := make(map[string]bool)

	for field, ids := range idsByField {
		expansion := idFieldExpansions[field]
		nodes, rels, err := c.expandNeighborhood(ctx, expansion, ids)
		if err != nil {
			c.logger.Warn("Subgraph expansion failed",
				zap.String("field", field),
				zap.Error(err),
			)
			continue
		}
		for _, n := range nodes {
			if !seenNodes[n.ID] {
				seenNodes[n.ID] = true
				result.Graph.Nodes = append(result.Graph.Nodes, n)
			}
		}
		for _, r := range rels {
			if !seenRels[r.ID] {
				seenRels[r.ID] = true
				result.Graph.Relationships = append(result.Graph.Relationships, r)
			}
		}
	}

	return result, nil
}

// collectIdentityFields gathers the distinct string values of every
// recognized id field across all rows, keyed by the bare field name.
func collectIdentityFields(rows []map[string]any) map[string][]any {
	seen := make(map[string]map[string]bool)
	for _, row := range rows {
		for key, value := range row {
			field := key
			if idx := strings.LastIndex(key, "."); idx >= 0 {
				field = key[idx+1:]
			}
			if _, recognized := idFieldExpansions[field]; !recognized {
				continue
			}
			id, ok := value.(string)
			if !ok || id == "" {
				continue
			}
			if seen[field] == nil {
				seen[field] = make(map[string]bool)
			}
			seen[field][id] = true
		}
	}

	out := make(map[string][]any, len(seen))
	for field, ids := range seen {
		values := make([]any, 0, len(ids))
		for id := range ids {
			values = append(values, id)
		}
		out[field] = values
	}
	return out
}

func (c *Client) expandNeighborhood(ctx context.Context, cypher string, ids []any) ([]Node, []Relationship, error) {
	session, err := c.ReadSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer session.Close(ctx)

	type expansion struct {
		nodes []Node
		rels  []Relationship
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"ids": ids})
		if err != nil {
			return nil, err
		}

		exp := expansion{}
		for res.Next(ctx) {
			record := res.Record()
			for _, value := range record.Values {
				switch v := value.(type) {
				case dbtype.Node:
					exp.nodes = append(exp.nodes, Node{
						ID:     v.ElementId,
						Labels: v.Labels,
						Props:  normalizeMap(v.Props),
					})
				case dbtype.Relationship:
					exp.rels = append(exp.rels, Relationship{
						ID:      v.ElementId,
						StartID: v.StartElementId,
						EndID:   v.EndElementId,
						Type:    v.Type,
						Props:   normalizeMap(v.Props),
					})
				}
			}
		}
		return exp, res.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	exp := result.(expansion)
	return exp.nodes, exp.rels, nil
}
