package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"citegraph/pkg/errors"

	"go.uber.org/zap"
)

// WriteSummary reports the structural counters of a non-returning
// maintenance statement.
type WriteSummary struct {
	NodesCreated         int `json:"nodes_created"`
	NodesDeleted         int `json:"nodes_deleted"`
	RelationshipsCreated int `json:"relationships_created"`
	RelationshipsDeleted int `json:"relationships_deleted"`
	PropertiesSet        int `json:"properties_set"`
}

// ExecuteQuery runs a read query exactly as given and returns one map
// per row containing only the fields named in the query's projection,
// each value passed through normalizeValue. The query is never
// augmented or rewritten; callers can trust the result shape matches
// their declared projection.
func (c *Client) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session, err := c.ReadSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return recordsToRows(records), nil
	})
	if err != nil {
		// Read-query errors have no retry semantics; propagate verbatim.
		return nil, errors.NewQueryFailed(cypher, err)
	}

	return rows.([]map[string]any), nil
}

// ExecuteWrite runs a write statement in a managed transaction and
// returns the structural counters from the result summary.
func (c *Client) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (WriteSummary, error) {
	session, err := c.WriteSession(ctx)
	if err != nil {
		return WriteSummary{}, err
	}
	defer session.Close(ctx)

	summary, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		resultSummary, err := result.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summaryCounters(resultSummary), nil
	})
	if err != nil {
		return WriteSummary{}, errors.NewQueryFailed(cypher, err)
	}

	ws := summary.(WriteSummary)
	c.logger.Debug("Write executed",
		zap.Int("nodes_created", ws.NodesCreated),
		zap.Int("relationships_created", ws.RelationshipsCreated),
	)
	return ws, nil
}

func recordsToRows(records []*neo4j.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = normalizeValue(record.Values[i])
		}
		rows = append(rows, row)
	}
	return rows
}

func summaryCounters(summary neo4j.ResultSummary) WriteSummary {
	ws := WriteSummary{}
	if summary == nil {
		return ws
	}
	counters := summary.Counters()
	if counters == nil {
		return ws
	}
	ws.NodesCreated = counters.NodesCreated()
	ws.NodesDeleted = counters.NodesDeleted()
	ws.RelationshipsCreated = counters.RelationshipsCreated()
	ws.RelationshipsDeleted = counters.RelationshipsDeleted()
	ws.PropertiesSet = counters.PropertiesSet()
	return ws
}
