package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"citegraph/internal/schema"
	"citegraph/pkg/errors"

	"go.uber.org/zap"
)

// DatabaseStats summarizes the graph: node/relationship totals plus a
// per-label breakdown.
type DatabaseStats struct {
	TotalNodes         int64            `json:"total_nodes"`
	TotalRelationships int64            `json:"total_relationships"`
	NodeTypes          map[string]int64 `json:"node_types"`
}

// ApplySchema runs each constraint/index statement in its own
// transaction. A statement that already exists is logged and skipped;
// one conflict never aborts the rest of the batch.
func (c *Client) ApplySchema(ctx context.Context, statements []string) error {
	session, err := c.WriteSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	var failed []string
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err == nil {
			// The statement is only fully applied once its result is consumed.
			_, err = res.Consume(ctx)
		}
		if err == nil {
			continue
		}
		if isAlreadyExists(err) {
			c.logger.Debug("Schema statement already applied", zap.String("statement", stmt))
			continue
		}
		c.logger.Warn("Schema statement failed",
			zap.String("statement", stmt),
			zap.Error(err),
		)
		failed = append(failed, stmt)
	}

	if len(failed) > 0 {
		return errors.NewQueryFailed(strings.Join(failed, "; "), fmt.Errorf("%d schema statements failed", len(failed)))
	}
	return nil
}

// Wipe removes every node and relationship. Rebuild flows only.
func (c *Client) Wipe(ctx context.Context) error {
	summary, err := c.ExecuteWrite(ctx, `MATCH (n) DETACH DELETE n`, nil)
	if err != nil {
		return err
	}
	c.logger.Info("Graph wiped",
		zap.Int("nodes_deleted", summary.NodesDeleted),
		zap.Int("relationships_deleted", summary.RelationshipsDeleted),
	)
	return nil
}

// Stats returns node/relationship totals and per-label counts.
func (c *Client) Stats(ctx context.Context) (*DatabaseStats, error) {
	session, err := c.ReadSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		stats := &DatabaseStats{NodeTypes: make(map[string]int64)}

		res, err := tx.Run(ctx, `MATCH (n) RETURN count(n) AS total`, nil)
		if err != nil {
			return nil, err
		}
		if record, err := res.Single(ctx); err == nil {
			if total, ok := record.Get("total"); ok {
				stats.TotalNodes, _ = total.(int64)
			}
		}

		res, err = tx.Run(ctx, `MATCH ()-[r]->() RETURN count(r) AS total`, nil)
		if err != nil {
			return nil, err
		}
		if record, err := res.Single(ctx); err == nil {
			if total, ok := record.Get("total"); ok {
				stats.TotalRelationships, _ = total.(int64)
			}
		}

		for _, label := range schema.Labels() {
			res, err = tx.Run(ctx, fmt.Sprintf(`MATCH (n:%s) RETURN count(n) AS total`, label), nil)
			if err != nil {
				return nil, err
			}
			if record, err := res.Single(ctx); err == nil {
				if total, ok := record.Get("total"); ok {
					stats.NodeTypes[label], _ = total.(int64)
				}
			}
		}

		return stats, nil
	})
	if err != nil {
		return nil, errors.NewQueryFailed("stats", err)
	}

	return result.(*DatabaseStats), nil
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "equivalentschemarulealreadyexists") ||
		strings.Contains(msg, "constraintalreadyexists") ||
		strings.Contains(msg, "indexalreadyexists")
}
