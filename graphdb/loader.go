// Package graphdb exports collaboration graphs to Neo4j.
package graphdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/brunobiangulo/coauthornet/graph"
)

// Options configures the Neo4j connection.
type Options struct {
	URI      string `json:"uri" yaml:"uri"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"` // empty selects the server default
}

// Loader writes graphs into Neo4j with batched UNWIND queries.
type Loader struct {
	driver   neo4j.DriverWithContext
	database string

	// exec runs one statement. It is replaced in tests.
	exec func(ctx context.Context, cypher string, params map[string]any) error
}

// NewLoader connects to Neo4j and verifies connectivity.
func NewLoader(ctx context.Context, opts Options) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graphdb: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("graphdb: connect %s: %w", opts.URI, err)
	}
	l := &Loader{driver: driver, database: opts.Database}
	l.exec = l.run
	return l, nil
}

// Close releases the driver.
func (l *Loader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Close(ctx)
}

func (l *Loader) run(ctx context.Context, cypher string, params map[string]any) error {
	var cfg []neo4j.ExecuteQueryConfigurationOption
	if l.database != "" {
		cfg = append(cfg, neo4j.ExecuteQueryWithDatabase(l.database))
	}
	_, err := neo4j.ExecuteQuery(ctx, l.driver, cypher, params, neo4j.EagerResultTransformer, cfg...)
	return err
}

// Clean removes every collaboration node and relationship.
func (l *Loader) Clean(ctx context.Context) error {
	slog.Info("graph: cleaning neo4j collaboration data")
	for _, q := range []string{
		"MATCH ()-[r:COAUTHORED]-() DELETE r",
		"MATCH ()-[r:SHARES_COAUTHORS]-() DELETE r",
		"MATCH (n:Professor) DETACH DELETE n",
		"MATCH (n:Coauthor) DETACH DELETE n",
	} {
		if err := l.exec(ctx, q, nil); err != nil {
			return fmt.Errorf("graphdb: clean: %w", err)
		}
	}
	return nil
}

// CreateIndexes ensures lookups by name are indexed.
func (l *Loader) CreateIndexes(ctx context.Context) error {
	for _, q := range []string{
		"CREATE INDEX professor_name IF NOT EXISTS FOR (n:Professor) ON (n.name)",
		"CREATE INDEX coauthor_name IF NOT EXISTS FOR (n:Coauthor) ON (n.name)",
	} {
		if err := l.exec(ctx, q, nil); err != nil {
			return fmt.Errorf("graphdb: create index: %w", err)
		}
	}
	return nil
}

const (
	mergeProfessors = `UNWIND $batch AS row
MERGE (n:Professor {name: row.name})
SET n.title = row.title, n.cohort = row.cohort, n.run_id = $run`

	mergeCoauthors = `UNWIND $batch AS row
MERGE (n:Coauthor {name: row.name})
SET n.shared = row.shared, n.shared_by = row.shared_by, n.run_id = $run`

	mergeCoauthored = `UNWIND $batch AS row
MATCH (p:Professor {name: row.professor}), (c:Coauthor {name: row.coauthor})
MERGE (p)-[r:COAUTHORED]->(c)
SET r.run_id = $run`

	mergeShares = `UNWIND $batch AS row
MATCH (a:Professor {name: row.a}), (b:Professor {name: row.b})
MERGE (a)-[r:SHARES_COAUTHORS]-(b)
SET r.weight = row.weight, r.shared = row.shared, r.direct = row.direct, r.run_id = $run`
)

// Batches is the parameter payload Load sends, split by statement.
type Batches struct {
	Professors []map[string]any
	Coauthors  []map[string]any
	Coauthored []map[string]any
	Shares     []map[string]any
}

// BuildBatches converts g into UNWIND rows. Professor–coauthor edges become
// COAUTHORED rows and professor–professor edges SHARES_COAUTHORS rows.
// Edges between two non-professors are not exported.
func BuildBatches(g *graph.Graph) Batches {
	var b Batches
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindProfessor {
			b.Professors = append(b.Professors, map[string]any{
				"name": n.ID, "title": n.Title, "cohort": n.Cohort,
			})
			continue
		}
		sharedBy := n.SharedBy
		if sharedBy == nil {
			sharedBy = []string{}
		}
		b.Coauthors = append(b.Coauthors, map[string]any{
			"name": n.ID, "shared": n.Kind == graph.KindSharedCoauthor, "shared_by": sharedBy,
		})
	}
	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		fp, tp := from.Kind == graph.KindProfessor, to.Kind == graph.KindProfessor
		switch {
		case fp && tp:
			shared := e.Shared
			if shared == nil {
				shared = []string{}
			}
			b.Shares = append(b.Shares, map[string]any{
				"a": e.From, "b": e.To, "weight": e.Weight, "shared": shared, "direct": e.Direct,
			})
		case fp:
			b.Coauthored = append(b.Coauthored, map[string]any{"professor": e.From, "coauthor": e.To})
		case tp:
			b.Coauthored = append(b.Coauthored, map[string]any{"professor": e.To, "coauthor": e.From})
		}
	}
	return b
}

// Load upserts g, tagging everything it writes with runID.
func (l *Loader) Load(ctx context.Context, runID string, g *graph.Graph) error {
	b := BuildBatches(g)
	slog.Info("graph: exporting to neo4j",
		"run", runID, "professors", len(b.Professors), "coauthors", len(b.Coauthors),
		"coauthored", len(b.Coauthored), "shares", len(b.Shares))

	for _, step := range []struct {
		name  string
		query string
		batch []map[string]any
	}{
		{"professors", mergeProfessors, b.Professors},
		{"coauthors", mergeCoauthors, b.Coauthors},
		{"coauthored", mergeCoauthored, b.Coauthored},
		{"shares", mergeShares, b.Shares},
	} {
		if len(step.batch) == 0 {
			continue
		}
		if err := l.exec(ctx, step.query, map[string]any{"batch": step.batch, "run": runID}); err != nil {
			return fmt.Errorf("graphdb: load %s: %w", step.name, err)
		}
	}
	return nil
}
