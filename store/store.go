package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/coauthornet/profile"
)

func init() {
	sqlite_vec.Auto()
}

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Run represents a row in the runs table.
type Run struct {
	ID                   string    `json:"id"`
	Kind                 string    `json:"kind"`
	Professors           int       `json:"professors"`
	Nodes                int       `json:"nodes"`
	Edges                int       `json:"edges"`
	EigenvectorConverged bool      `json:"eigenvector_converged"`
	Warnings             []string  `json:"warnings,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// CentralityRow represents a row in the centrality table.
type CentralityRow struct {
	Node        string  `json:"node"`
	Kind        string  `json:"kind"`
	Degree      float64 `json:"degree"`
	Closeness   float64 `json:"closeness"`
	Betweenness float64 `json:"betweenness"`
	Eigenvector float64 `json:"eigenvector"`
}

// SimilarProfile is a stored profile ranked by coauthor-vector similarity.
type SimilarProfile struct {
	Profile profile.Record `json:"profile"`
	Score   float64        `json:"score"`
}

// Store wraps the SQLite database holding fetched profiles, their coauthor
// vectors and analysis results.
type Store struct {
	db        *sql.DB
	vectorDim int
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including the sqlite-vec virtual table.
func New(dbPath string, vectorDim int) (*Store, error) {
	if vectorDim <= 0 {
		vectorDim = profile.DefaultVectorDim
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(vectorDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, vectorDim: vectorDim}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// VectorDim returns the configured coauthor vector dimension.
func (s *Store) VectorDim() int {
	return s.vectorDim
}

// --- Profile operations ---

// profileKey is the unique key of a record: its scholar ID, or its name for
// records imported without one.
func profileKey(r profile.Record) string {
	if r.ScholarID != "" {
		return r.ScholarID
	}
	return "name:" + r.Name
}

// UpsertProfile inserts or replaces a profile together with its coauthor
// list and coauthor vector. Returns the profile row ID.
func (s *Store) UpsertProfile(ctx context.Context, r profile.Record) (int64, error) {
	if r.Name == "" {
		return 0, fmt.Errorf("store: profile %q has no name", r.ScholarID)
	}
	interests, err := json.Marshal(r.Interests)
	if err != nil {
		return 0, fmt.Errorf("marshal interests: %w", err)
	}
	var fetched any
	if !r.FetchedAt.IsZero() {
		fetched = r.FetchedAt.UTC().Format(time.RFC3339)
	}

	var id int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO profiles (scholar_id, name, affiliation, interests, cited_by, h_index, i10_index, cohort, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(scholar_id) DO UPDATE SET
				name = excluded.name,
				affiliation = excluded.affiliation,
				interests = excluded.interests,
				cited_by = excluded.cited_by,
				h_index = excluded.h_index,
				i10_index = excluded.i10_index,
				cohort = excluded.cohort,
				fetched_at = excluded.fetched_at,
				updated_at = CURRENT_TIMESTAMP
			RETURNING id
		`, profileKey(r), r.Name, r.Affiliation, string(interests),
			r.CitedBy, r.HIndex, r.I10Index, r.Cohort, fetched).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM coauthors WHERE profile_id = ?", id); err != nil {
			return fmt.Errorf("clear coauthors: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO coauthors (profile_id, position, name) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, name := range r.Coauthors {
			if _, err := stmt.ExecContext(ctx, id, i, name); err != nil {
				return fmt.Errorf("insert coauthor %q: %w", name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM vec_profiles WHERE profile_id = ?", id); err != nil {
			return fmt.Errorf("clear vector: %w", err)
		}
		vec := profile.CoauthorVector(r.Coauthors, s.vectorDim)
		if isZero(vec) {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vec_profiles (profile_id, embedding) VALUES (?, ?)",
			id, serializeFloat32(vec)); err != nil {
			return fmt.Errorf("insert vector: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

const profileColumns = `p.id, p.scholar_id, p.name, p.affiliation, p.interests,
	p.cited_by, p.h_index, p.i10_index, p.cohort, p.fetched_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(sc scanner) (int64, profile.Record, error) {
	var (
		id          int64
		r           profile.Record
		affiliation sql.NullString
		interests   sql.NullString
		cohort      sql.NullString
		fetched     sql.NullString
	)
	if err := sc.Scan(&id, &r.ScholarID, &r.Name, &affiliation, &interests,
		&r.CitedBy, &r.HIndex, &r.I10Index, &cohort, &fetched); err != nil {
		return 0, r, err
	}
	r.Affiliation = affiliation.String
	r.Cohort = cohort.String
	if interests.Valid && interests.String != "" && interests.String != "null" {
		if err := json.Unmarshal([]byte(interests.String), &r.Interests); err != nil {
			return 0, r, fmt.Errorf("decode interests: %w", err)
		}
	}
	if fetched.Valid {
		if t, err := time.Parse(time.RFC3339, fetched.String); err == nil {
			r.FetchedAt = t
		}
	}
	return id, r, nil
}

// GetProfile retrieves a profile by scholar ID.
func (s *Store) GetProfile(ctx context.Context, scholarID string) (*profile.Record, error) {
	id, r, err := scanProfile(s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles p WHERE p.scholar_id = ?", scholarID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", scholarID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if r.Coauthors, err = s.coauthorsOf(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListProfiles returns all stored profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]profile.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles p ORDER BY p.name, p.scholar_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		ids []int64
		out []profile.Record
	)
	for rows.Next() {
		id, r, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i, id := range ids {
		if out[i].Coauthors, err = s.coauthorsOf(ctx, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) coauthorsOf(ctx context.Context, profileID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM coauthors WHERE profile_id = ? ORDER BY position", profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SimilarProfiles returns up to k stored profiles whose coauthor vectors
// are nearest to the given profile's, most similar first. Score is the
// cosine similarity of the two vectors. A profile without coauthors has no
// vector and no neighbours.
func (s *Store) SimilarProfiles(ctx context.Context, scholarID string, k int) ([]SimilarProfile, error) {
	if k <= 0 {
		return nil, nil
	}
	var (
		id  int64
		vec []byte
	)
	err := s.db.QueryRowContext(ctx, "SELECT id FROM profiles WHERE scholar_id = ?", scholarID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", scholarID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT embedding FROM vec_profiles WHERE profile_id = ?", id).Scan(&vec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.profile_id, v.distance
		FROM vec_profiles v
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, vec, k+1)
	if err != nil {
		return nil, err
	}
	type hit struct {
		id       int64
		distance float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.distance); err != nil {
			rows.Close()
			return nil, err
		}
		if h.id != id {
			hits = append(hits, h)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(hits) > k {
		hits = hits[:k]
	}

	out := make([]SimilarProfile, 0, len(hits))
	for _, h := range hits {
		_, r, err := scanProfile(s.db.QueryRowContext(ctx,
			"SELECT "+profileColumns+" FROM profiles p WHERE p.id = ?", h.id))
		if err != nil {
			return nil, err
		}
		if r.Coauthors, err = s.coauthorsOf(ctx, h.id); err != nil {
			return nil, err
		}
		// Vectors are unit length, so L2 distance d maps to cosine 1 - d²/2.
		out = append(out, SimilarProfile{Profile: r, Score: 1 - h.distance*h.distance/2})
	}
	return out, nil
}

// --- Run operations ---

// InsertRun records an analysis run. CreatedAt defaults to now.
func (s *Store) InsertRun(ctx context.Context, r Run) error {
	warnings, err := json.Marshal(r.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, professors, nodes, edges, eigenvector_converged, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Professors, r.Nodes, r.Edges, r.EigenvectorConverged,
		string(warnings), r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var (
		r        Run
		warnings sql.NullString
		created  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, professors, nodes, edges, eigenvector_converged, warnings, created_at
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Kind, &r.Professors, &r.Nodes, &r.Edges,
		&r.EigenvectorConverged, &warnings, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if warnings.Valid && warnings.String != "null" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &r, nil
}

// InsertCentrality stores the per-node scores of a run.
func (s *Store) InsertCentrality(ctx context.Context, runID string, rows []CentralityRow) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO centrality (run_id, node, kind, degree, closeness, betweenness, eigenvector)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, runID, r.Node, r.Kind,
				r.Degree, r.Closeness, r.Betweenness, r.Eigenvector); err != nil {
				return fmt.Errorf("insert centrality %q: %w", r.Node, err)
			}
		}
		return nil
	})
}

// GetRunCentrality returns the scores of a run ordered by degree, highest
// first.
func (s *Store) GetRunCentrality(ctx context.Context, runID string) ([]CentralityRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node, kind, degree, closeness, betweenness, eigenvector
		FROM centrality WHERE run_id = ?
		ORDER BY degree DESC, node
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CentralityRow
	for rows.Next() {
		var r CentralityRow
		if err := rows.Scan(&r.Node, &r.Kind, &r.Degree, &r.Closeness, &r.Betweenness, &r.Eigenvector); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats holds row counts of the main tables.
type Stats struct {
	Profiles   int `json:"profiles"`
	Coauthors  int `json:"coauthors"`
	Vectors    int `json:"vectors"`
	Runs       int `json:"runs"`
	Centrality int `json:"centrality"`
}

// Stats returns counts of profiles, coauthor rows, vectors, runs, and
// centrality rows.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM profiles", &stats.Profiles},
		{"SELECT COUNT(*) FROM coauthors", &stats.Coauthors},
		{"SELECT COUNT(*) FROM vec_profiles", &stats.Vectors},
		{"SELECT COUNT(*) FROM runs", &stats.Runs},
		{"SELECT COUNT(*) FROM centrality", &stats.Centrality},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
