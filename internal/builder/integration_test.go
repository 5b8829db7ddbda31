package builder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"citegraph/internal/store"
)

func setupNeo4j(t *testing.T, ctx context.Context) (*store.Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration test")
	}
	if err := provider.Health(ctx); err != nil {
		t.Skip("Docker not running, skipping integration test")
	}

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "none",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("7687/tcp"),
			wait.ForLog("Started."),
		).WithDeadline(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start Neo4j container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	client, err := store.New(store.Config{
		URI:                     fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username:                "neo4j",
		Password:                "ignored",
		MaxPoolSize:             10,
		AcquisitionTimeout:      30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, client.Connect(ctx))

	cleanup := func() {
		_ = client.Close(ctx)
		_ = container.Terminate(ctx)
	}
	return client, cleanup
}

func sampleRecords() []map[string]any {
	return []map[string]any{
		{
			"paperId": "p1",
			"title":   "Graph Databases in Practice",
			"year":    2019,
			"authors": []any{
				map[string]any{"name": "Jane Doe", "org": "MIT"},
				map[string]any{"name": "John Roe"},
				map[string]any{"name": "Alex Poe"},
			},
			"venue":         "SIGMOD",
			"fieldsOfStudy": []any{"Computer Science", "Databases"},
			"n_citation":    30,
		},
		{
			"paperId": "p2",
			"title":   "Citation Networks Revisited",
			"year":    2021,
			"authors": []any{
				map[string]any{"name": "Jane Doe", "org": "Stanford"},
				map[string]any{"name": "John Roe"},
			},
			"venue":      "KDD",
			"keywords":   "networks; bibliometrics",
			"references": []any{"p1"},
		},
		{
			"paperId": "p3",
			"title":   "An Unrelated Survey",
			"year":    2020,
			"authors": []any{map[string]any{"name": "Sam Moe"}},
			"citations": []any{
				map[string]any{
					"title":   "External Classic",
					"year":    1998,
					"venue":   "Old Journal",
					"authors": []any{map[string]any{"name": "V Intage"}},
				},
			},
		},
	}
}

func countNodes(t *testing.T, ctx context.Context, client *store.Client, label string) int {
	t.Helper()
	rows, err := client.ExecuteQuery(ctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", label), nil)
	require.NoError(t, err)
	total, _ := rows[0]["total"].(int64)
	return int(total)
}

func TestIntegration_BuildIngestsGraph(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 2, 1)
	result, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.PapersProcessed)
	assert.Equal(t, 0, result.PapersDropped)
	assert.Equal(t, 0, result.PapersFailed)

	assert.Equal(t, 3, countNodes(t, ctx, client, "Paper"))
	// Four paper authors plus the external citation's author.
	assert.Equal(t, 5, countNodes(t, ctx, client, "Author"))
	assert.Equal(t, 4, countNodes(t, ctx, client, "FieldOfStudy"))
	// SIGMOD, KDD, and the external citation's venue.
	assert.Equal(t, 3, countNodes(t, ctx, client, "Venue"))
	// External Classic is not ingested, so it lands as a Reference.
	assert.Equal(t, 1, countNodes(t, ctx, client, "Reference"))
}

func TestIntegration_BuildIsIdempotentOnNodes(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)
	papers := countNodes(t, ctx, client, "Paper")
	authors := countNodes(t, ctx, client, "Author")

	// Re-ingesting the same corpus merges onto existing nodes.
	_, err = b.Build(ctx, sampleRecords(), false)
	require.NoError(t, err)
	assert.Equal(t, papers, countNodes(t, ctx, client, "Paper"))
	assert.Equal(t, authors, countNodes(t, ctx, client, "Author"))
}

func TestIntegration_AuthorIdentityMergesAcrossAffiliations(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	// Jane Doe appears under MIT and Stanford; identity is by name.
	rows, err := client.ExecuteQuery(ctx, `
		MATCH (a:Author {name: 'Jane Doe'})
		RETURN count(a) AS total, collect(a.totalPapers)[0] AS papers, collect(a.org)[0] AS org`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0]["total"])
	assert.Equal(t, int64(2), rows[0]["papers"])
	// The longer affiliation string wins the merge.
	assert.Equal(t, "Stanford", rows[0]["org"])
}

func TestIntegration_AuthorPositions(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	rows, err := client.ExecuteQuery(ctx, `
		MATCH (a:Author)-[r:AUTHORED]->(:Paper {paperId: 'p1'})
		RETURN a.name AS name, r.position AS position ORDER BY name`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	positions := map[string]any{}
	for _, row := range rows {
		positions[row["name"].(string)] = row["position"]
	}
	assert.Equal(t, "first", positions["Jane Doe"])
	assert.Equal(t, "middle", positions["John Roe"])
	assert.Equal(t, "last", positions["Alex Poe"])
}

func TestIntegration_CitationResolution(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	// p2 cites p1, which is ingested: the edge goes Paper -> Paper.
	rows, err := client.ExecuteQuery(ctx,
		`MATCH (:Paper {paperId: 'p2'})-[:CITED]->(t:Paper) RETURN t.paperId AS id`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0]["id"])

	// p3 cites an external work: a Reference node with raw metadata.
	rows, err = client.ExecuteQuery(ctx, `
		MATCH (:Paper {paperId: 'p3'})-[:CITED]->(r:Reference)
		RETURN r.title AS title, r.authors AS authors`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "External Classic", rows[0]["title"])
	assert.Equal(t, "V Intage", rows[0]["authors"])
}

func TestIntegration_ForwardCitationsResolveToPapers(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	// Both citing records commit before their targets exist: the bare
	// reference has nothing to match and the titled citation lands as
	// a Reference. The post-batch pass must settle both.
	records := []map[string]any{
		{"paperId": "early-bare", "title": "Cites Ahead", "references": []any{"late-target"}},
		{
			"paperId": "early-titled",
			"title":   "Cites Ahead With Metadata",
			"citations": []any{
				map[string]any{"paperId": "late-shadow", "title": "Shadowed Work", "year": 2001},
			},
		},
		{"paperId": "late-target", "title": "Target Arrives Last"},
		{"paperId": "late-shadow", "title": "Shadowed Work"},
	}

	b := New(client, 1, 1)
	result, err := b.Build(ctx, records, true)
	require.NoError(t, err)
	assert.Equal(t, 4, result.PapersProcessed)

	rows, err := client.ExecuteQuery(ctx,
		`MATCH (:Paper {paperId: 'early-bare'})-[:CITED]->(t:Paper) RETURN t.paperId AS id`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "late-target", rows[0]["id"])

	rows, err = client.ExecuteQuery(ctx,
		`MATCH (:Paper {paperId: 'early-titled'})-[:CITED]->(t:Paper) RETURN t.paperId AS id`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "late-shadow", rows[0]["id"])

	// Every cited work was ingested, so no Reference survives the run.
	assert.Equal(t, 0, countNodes(t, ctx, client, "Reference"))
}

func TestIntegration_CitationTotalsIndependentOfWorkerCount(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	// A citation chain where every paper cites the next one in input
	// order, so under concurrency a citing record routinely commits
	// before its target.
	var records []map[string]any
	for i := 0; i < 30; i++ {
		rec := map[string]any{
			"paperId": fmt.Sprintf("chain%d", i),
			"title":   fmt.Sprintf("Chain Paper %d", i),
		}
		if i < 29 {
			rec["references"] = []any{fmt.Sprintf("chain%d", i+1)}
		}
		records = append(records, rec)
	}

	serial, err := New(client, 10, 1).Build(ctx, records, true)
	require.NoError(t, err)
	concurrent, err := New(client, 1, 8).Build(ctx, records, true)
	require.NoError(t, err)

	require.NotNil(t, serial.DatabaseStats)
	require.NotNil(t, concurrent.DatabaseStats)
	assert.Equal(t, serial.DatabaseStats.TotalNodes, concurrent.DatabaseStats.TotalNodes)
	assert.Equal(t, serial.DatabaseStats.TotalRelationships, concurrent.DatabaseStats.TotalRelationships)

	rows, err := client.ExecuteQuery(ctx,
		`MATCH (:Paper)-[c:CITED]->(:Paper) RETURN count(c) AS total`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(29), rows[0]["total"])
	assert.Equal(t, 0, countNodes(t, ctx, client, "Reference"))
}

func TestIntegration_RecordFailuresCountedInSummary(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	// An extra uniqueness constraint makes the second record's title
	// write fail with a non-transient constraint violation.
	_, err := client.ExecuteWrite(ctx,
		`CREATE CONSTRAINT paper_title_unique IF NOT EXISTS FOR (p:Paper) REQUIRE p.title IS UNIQUE`, nil)
	require.NoError(t, err)

	records := []map[string]any{
		{"paperId": "dup1", "title": "Taken Title"},
		{"paperId": "dup2", "title": "Taken Title"},
		{"paperId": "ok1", "title": "Unaffected Paper"},
	}

	b := New(client, 10, 1)
	result, err := b.Build(ctx, records, true)
	require.NoError(t, err)

	// The failed record is counted, the rest of the batch lands.
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.PapersFailed)
	assert.Equal(t, 2, result.PapersProcessed)
	assert.Equal(t, 0, result.PapersDropped)
	assert.Equal(t, 2, countNodes(t, ctx, client, "Paper"))

	rows, err := client.ExecuteQuery(ctx,
		`MATCH (p:Paper) RETURN p.paperId AS id ORDER BY id`, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "dup1", rows[0]["id"])
	assert.Equal(t, "ok1", rows[1]["id"])
}

func TestIntegration_CollaboratedRebuild(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	// Jane Doe and John Roe share p1 and p2: exactly one edge, both
	// papers counted, year span recorded.
	rows, err := client.ExecuteQuery(ctx, `
		MATCH (:Author {name: 'Jane Doe'})-[c:COLLABORATED]-(:Author {name: 'John Roe'})
		RETURN count(c) AS edges, collect(c.paperCount)[0] AS papers,
		       collect(c.firstYear)[0] AS firstYear, collect(c.lastYear)[0] AS lastYear`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows[0]["edges"])
	assert.Equal(t, int64(2), rows[0]["papers"])
	assert.Equal(t, int64(2019), rows[0]["firstYear"])
	assert.Equal(t, int64(2021), rows[0]["lastYear"])

	// Rebuilding leaves the edge count stable.
	_, err = b.Build(ctx, sampleRecords(), false)
	require.NoError(t, err)
	rows, err = client.ExecuteQuery(ctx,
		`MATCH ()-[c:COLLABORATED]->() RETURN count(c) AS total`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows[0]["total"])
}

func TestIntegration_InvalidRecordsDroppedNotFailed(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	records := append(sampleRecords(),
		map[string]any{"title": "No identity"},
		map[string]any{"paperId": "p-no-title"},
	)

	b := New(client, 10, 1)
	result, err := b.Build(ctx, records, true)
	require.NoError(t, err)

	assert.Equal(t, 3, result.PapersProcessed)
	assert.Equal(t, 2, result.PapersDropped)
	assert.Equal(t, 0, result.PapersFailed)
}

func TestIntegration_ConcurrentWorkersConverge(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	// Many papers all sharing the same two authors, forcing every
	// worker to contend on the same Author nodes.
	var records []map[string]any
	for i := 0; i < 40; i++ {
		records = append(records, map[string]any{
			"paperId": fmt.Sprintf("cp%d", i),
			"title":   fmt.Sprintf("Contended Paper %d", i),
			"year":    2000 + i%20,
			"authors": []any{
				map[string]any{"name": "Shared One"},
				map[string]any{"name": "Shared Two"},
			},
		})
	}

	b := New(client, 5, 4)
	result, err := b.Build(ctx, records, true)
	require.NoError(t, err)

	assert.Equal(t, 40, result.PapersProcessed)
	assert.Equal(t, 0, result.PapersFailed)
	assert.Equal(t, 40, countNodes(t, ctx, client, "Paper"))
	assert.Equal(t, 2, countNodes(t, ctx, client, "Author"))

	rows, err := client.ExecuteQuery(ctx,
		`MATCH (a:Author {name: 'Shared One'}) RETURN a.totalPapers AS papers`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(40), rows[0]["papers"])
}

func TestIntegration_ClearExistingWipes(t *testing.T) {
	ctx := context.Background()
	client, cleanup := setupNeo4j(t, ctx)
	defer cleanup()

	b := New(client, 10, 1)
	_, err := b.Build(ctx, sampleRecords(), true)
	require.NoError(t, err)

	_, err = b.Build(ctx, []map[string]any{
		{"paperId": "solo", "title": "Fresh Start"},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, countNodes(t, ctx, client, "Paper"))
}
