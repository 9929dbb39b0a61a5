//go:build cgo

package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/brunobiangulo/coauthornet/profile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, 128)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleProfile(id, name string, coauthors ...string) profile.Record {
	return profile.Record{
		ScholarID:   id,
		Name:        name,
		Affiliation: "Institute " + id,
		Interests:   []string{"graphs", "networks"},
		CitedBy:     100,
		HIndex:      7,
		I10Index:    5,
		Cohort:      "IIT",
		Coauthors:   coauthors,
		FetchedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.VectorDim() != 128 {
		t.Fatalf("expected vector dim 128, got %d", s.VectorDim())
	}
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if v != migrations[len(migrations)-1].version {
		t.Errorf("schema version = %d, want %d", v, migrations[len(migrations)-1].version)
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "dir", "test.db")
	s, err := New(dbPath, 8)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	s, err := New(dbPath, 8)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpsertProfile(context.Background(), sampleProfile("a", "A", "x")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Close()

	s, err = New(dbPath, 8)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.GetProfile(context.Background(), "a"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

func TestUpsertAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sampleProfile("abc", "Jane Doe", "A Smith", "B Jones")
	id, err := s.UpsertProfile(ctx, in)
	if err != nil {
		t.Fatalf("upserting profile: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero profile id")
	}

	got, err := s.GetProfile(ctx, "abc")
	if err != nil {
		t.Fatalf("getting profile: %v", err)
	}
	if got.Name != in.Name || got.Affiliation != in.Affiliation || got.Cohort != in.Cohort {
		t.Errorf("profile = %+v", got)
	}
	if got.CitedBy != 100 || got.HIndex != 7 || got.I10Index != 5 {
		t.Errorf("indices = %d/%d/%d", got.CitedBy, got.HIndex, got.I10Index)
	}
	if !slices.Equal(got.Interests, in.Interests) {
		t.Errorf("interests = %v", got.Interests)
	}
	if !slices.Equal(got.Coauthors, in.Coauthors) {
		t.Errorf("coauthors = %v", got.Coauthors)
	}
	if !got.FetchedAt.Equal(in.FetchedAt) {
		t.Errorf("fetched at = %v, want %v", got.FetchedAt, in.FetchedAt)
	}
}

func TestUpsertProfileReplacesCoauthors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertProfile(ctx, sampleProfile("abc", "Jane", "x", "y", "z"))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	id2, err := s.UpsertProfile(ctx, sampleProfile("abc", "Jane D.", "w"))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}

	got, _ := s.GetProfile(ctx, "abc")
	if got.Name != "Jane D." || !slices.Equal(got.Coauthors, []string{"w"}) {
		t.Errorf("profile after update = %+v", got)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Profiles != 1 || stats.Coauthors != 1 || stats.Vectors != 1 {
		t.Errorf("stats = %+v, want 1 profile, 1 coauthor, 1 vector", stats)
	}
}

func TestUpsertProfileWithoutID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.UpsertProfile(ctx, profile.Record{Name: "Imported"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.UpsertProfile(ctx, profile.Record{}); err == nil {
		t.Error("expected error for unnamed profile")
	}
	list, _ := s.ListProfiles(ctx)
	if len(list) != 1 || list[0].ScholarID != "name:Imported" {
		t.Errorf("profiles = %+v", list)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProfile(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, p := range []profile.Record{
		sampleProfile("2", "Zed", "q"),
		sampleProfile("1", "Amy", "r", "s"),
	} {
		if _, err := s.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("upsert %s: %v", p.Name, err)
		}
	}
	list, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Amy" || list[1].Name != "Zed" {
		t.Fatalf("list = %+v", list)
	}
	if !slices.Equal(list[0].Coauthors, []string{"r", "s"}) {
		t.Errorf("coauthors = %v", list[0].Coauthors)
	}
}

// ---------------------------------------------------------------------------
// Similarity search
// ---------------------------------------------------------------------------

func TestSimilarProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []profile.Record{
		sampleProfile("a", "A", "x1", "x2", "x3", "x4"),
		sampleProfile("b", "B", "x1", "x2", "x3", "y1"),
		sampleProfile("c", "C", "z1", "z2", "z3", "z4"),
		sampleProfile("d", "D"),
	} {
		if _, err := s.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("upsert %s: %v", p.Name, err)
		}
	}

	sim, err := s.SimilarProfiles(ctx, "a", 2)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if len(sim) != 2 {
		t.Fatalf("expected 2 results, got %d", len(sim))
	}
	if sim[0].Profile.ScholarID != "b" {
		t.Errorf("nearest = %s, want b", sim[0].Profile.ScholarID)
	}
	if sim[0].Score <= sim[1].Score {
		t.Errorf("scores not descending: %v, %v", sim[0].Score, sim[1].Score)
	}
	if sim[0].Score < 0.5 || sim[0].Score > 1+1e-6 {
		t.Errorf("score for 3 of 4 shared coauthors = %v", sim[0].Score)
	}
	for _, r := range sim {
		if r.Profile.ScholarID == "a" {
			t.Error("profile returned as its own neighbour")
		}
	}

	none, err := s.SimilarProfiles(ctx, "d", 3)
	if err != nil || len(none) != 0 {
		t.Errorf("profile without coauthors: %v, %v", none, err)
	}
	if _, err := s.SimilarProfiles(ctx, "missing", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Runs and centrality
// ---------------------------------------------------------------------------

func TestRunAndCentrality(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := Run{
		ID: "run-1", Kind: "shared", Professors: 3, Nodes: 6, Edges: 9,
		EigenvectorConverged: false, Warnings: []string{"did not converge"},
	}
	if err := s.InsertRun(ctx, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	rows := []CentralityRow{
		{Node: "P1", Kind: "professor", Degree: 0.4, Closeness: 0.6, Betweenness: 0.1},
		{Node: "A", Kind: "shared_coauthor", Degree: 0.8, Closeness: 0.7, Betweenness: 0.3},
	}
	if err := s.InsertCentrality(ctx, run.ID, rows); err != nil {
		t.Fatalf("insert centrality: %v", err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Kind != "shared" || got.Nodes != 6 || got.EigenvectorConverged {
		t.Errorf("run = %+v", got)
	}
	if !slices.Equal(got.Warnings, run.Warnings) {
		t.Errorf("warnings = %v", got.Warnings)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	scores, err := s.GetRunCentrality(ctx, "run-1")
	if err != nil {
		t.Fatalf("get centrality: %v", err)
	}
	if len(scores) != 2 || scores[0].Node != "A" {
		t.Errorf("scores = %+v, want A first", scores)
	}

	if _, err := s.GetRun(ctx, "run-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.InsertCentrality(ctx, "run-2", rows); err == nil {
		t.Error("expected foreign key error for unknown run")
	}
}
