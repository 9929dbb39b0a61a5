package store

import "fmt"

// schemaSQL returns the DDL for all tables. vectorDim controls the vec0
// virtual table dimension.
func schemaSQL(vectorDim int) string {
	return fmt.Sprintf(`
-- Fetched academic profiles, keyed by scholar ID
CREATE TABLE IF NOT EXISTS profiles (
    id INTEGER PRIMARY KEY,
    scholar_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    affiliation TEXT,
    interests JSON,
    cited_by INTEGER DEFAULT 0,
    h_index INTEGER DEFAULT 0,
    i10_index INTEGER DEFAULT 0,
    cohort TEXT,
    fetched_at DATETIME,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Coauthor names in listing order
CREATE TABLE IF NOT EXISTS coauthors (
    profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (profile_id, position)
);

-- Hashed coauthor vectors via sqlite-vec
CREATE VIRTUAL TABLE IF NOT EXISTS vec_profiles USING vec0(
    profile_id INTEGER PRIMARY KEY,
    embedding float[%d]
);

-- Analysis runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    professors INTEGER NOT NULL,
    nodes INTEGER NOT NULL,
    edges INTEGER NOT NULL,
    eigenvector_converged INTEGER NOT NULL DEFAULT 1,
    warnings JSON,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Per-node centrality of a run
CREATE TABLE IF NOT EXISTS centrality (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    node TEXT NOT NULL,
    kind TEXT NOT NULL,
    degree REAL NOT NULL,
    closeness REAL NOT NULL,
    betweenness REAL NOT NULL,
    eigenvector REAL NOT NULL,
    PRIMARY KEY (run_id, node)
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
CREATE INDEX IF NOT EXISTS idx_coauthors_name ON coauthors(name);
CREATE INDEX IF NOT EXISTS idx_centrality_run ON centrality(run_id);
`, vectorDim)
}
