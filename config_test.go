package coauthornet

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brunobiangulo/coauthornet/graphdb"
	"github.com/brunobiangulo/coauthornet/profile"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if time.Duration(cfg.FetchDelay) != 3*time.Second {
		t.Errorf("FetchDelay = %v, want 3s", time.Duration(cfg.FetchDelay))
	}
	if cfg.Centrality.MaxIter != 1000 || cfg.Centrality.Tolerance != 1e-6 {
		t.Errorf("centrality defaults = %+v", cfg.Centrality)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Scholar.Source = "library" }},
		{"negative delay", func(c *Config) { c.FetchDelay = Duration(-time.Second) }},
		{"negative dim", func(c *Config) { c.VectorDim = -1 }},
		{"negative tolerance", func(c *Config) { c.Centrality.Tolerance = -1 }},
		{"neo4j without uri", func(c *Config) { c.Neo4j = &graphdb.Options{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDurationJSON(t *testing.T) {
	var c struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"1500ms","b":2}`), &c); err != nil {
		t.Fatal(err)
	}
	if time.Duration(c.A) != 1500*time.Millisecond || time.Duration(c.B) != 2*time.Second {
		t.Errorf("got %v and %v", time.Duration(c.A), time.Duration(c.B))
	}
	out, _ := json.Marshal(c.A)
	if string(out) != `"1.5s"` {
		t.Errorf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`{"a":true}`), &c); err == nil {
		t.Error("expected error for boolean duration")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"output_dir":"out","fetch_delay":"0s","scholar":{"source":"publications"}}`), 0644)

	cfg := DefaultConfig()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "out" || cfg.FetchDelay != 0 || cfg.Scholar.Source != profile.SourcePublications {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Scholar.UserAgent != profile.DefaultUserAgent {
		t.Error("fields absent from the file should keep their defaults")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	os.WriteFile(".env", []byte("COAUTHORNET_OUTPUT_DIR=from-dotenv\n"), 0644)
	t.Setenv("COAUTHORNET_FETCH_DELAY", "250ms")
	t.Setenv("COAUTHORNET_CANONICALIZE_NAMES", "true")
	t.Setenv("COAUTHORNET_NEO4J_URI", "bolt://db:7687")
	t.Setenv("COAUTHORNET_NEO4J_PASSWORD", "secret")
	t.Cleanup(func() { os.Unsetenv("COAUTHORNET_OUTPUT_DIR") })

	cfg := DefaultConfig()
	if err := LoadEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "from-dotenv" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if time.Duration(cfg.FetchDelay) != 250*time.Millisecond || !cfg.CanonicalizeNames {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Neo4j == nil || cfg.Neo4j.URI != "bolt://db:7687" || cfg.Neo4j.User != "neo4j" || cfg.Neo4j.Password != "secret" {
		t.Errorf("neo4j = %+v", cfg.Neo4j)
	}
}

func TestLoadEnvRejectsBadDelay(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COAUTHORNET_FETCH_DELAY", "soon")
	cfg := DefaultConfig()
	if err := LoadEnv(&cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
