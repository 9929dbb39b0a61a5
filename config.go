package coauthornet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/brunobiangulo/coauthornet/graph"
	"github.com/brunobiangulo/coauthornet/graphdb"
	"github.com/brunobiangulo/coauthornet/profile"
)

// Config holds all configuration for the coauthornet engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.coauthornet/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set: "home" (default) uses ~/.coauthornet/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// OutputDir receives every HTML, SVG, CSV and XLSX artifact.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Fetching
	FetchDelay Duration      `json:"fetch_delay" yaml:"fetch_delay"`
	Scholar    ScholarConfig `json:"scholar" yaml:"scholar"`

	// CanonicalizeNames rewrites spelling variants of a name (case,
	// diacritics, punctuation, honorifics) to the first spelling seen.
	// When false variants are only logged.
	CanonicalizeNames bool `json:"canonicalize_names" yaml:"canonicalize_names"`

	Centrality graph.CentralityOptions `json:"centrality" yaml:"centrality"`

	// VectorDim is the size of the hashed coauthor vectors used for
	// similar-profile search. Changing it requires a fresh database.
	VectorDim int `json:"vector_dim" yaml:"vector_dim"`

	// StaticImages also writes SVG drawings next to the HTML pages.
	StaticImages bool `json:"static_images" yaml:"static_images"`

	// Neo4j enables graph export when non-nil.
	Neo4j *graphdb.Options `json:"neo4j,omitempty" yaml:"neo4j,omitempty"`
}

// ScholarConfig configures the profile page client.
type ScholarConfig struct {
	BaseURL   string                 `json:"base_url" yaml:"base_url"`
	UserAgent string                 `json:"user_agent" yaml:"user_agent"`
	Timeout   Duration               `json:"timeout" yaml:"timeout"`
	Source    profile.CoauthorSource `json:"source" yaml:"source"` // colleagues or publications
}

// Duration is a time.Duration that reads and writes as a string such as
// "3s". Plain JSON numbers are taken as seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*d = Duration(x * float64(time.Second))
	case string:
		p, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		*d = Duration(p)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// DefaultConfig returns the configuration used when nothing is set:
// a 3 second pause between fetches, colleague lists as coauthor source
// and output under ./visualizations.
func DefaultConfig() Config {
	return Config{
		DBName:     "coauthornet",
		StorageDir: "home",
		OutputDir:  "visualizations",
		FetchDelay: Duration(profile.DefaultDelay),
		Scholar: ScholarConfig{
			BaseURL:   profile.DefaultBaseURL,
			UserAgent: profile.DefaultUserAgent,
			Timeout:   Duration(profile.DefaultTimeout),
			Source:    profile.SourceColleagues,
		},
		Centrality:   graph.DefaultCentralityOptions(),
		VectorDim:    profile.DefaultVectorDim,
		StaticImages: true,
	}
}

// LoadFile decodes a JSON config file over cfg.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadEnv reads a .env file from the working directory when present and
// applies COAUTHORNET_* variables over cfg.
func LoadEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	if v := os.Getenv("COAUTHORNET_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("COAUTHORNET_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("COAUTHORNET_FETCH_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: COAUTHORNET_FETCH_DELAY: %v", ErrInvalidConfig, err)
		}
		cfg.FetchDelay = Duration(d)
	}
	if v := os.Getenv("COAUTHORNET_SCHOLAR_BASE_URL"); v != "" {
		cfg.Scholar.BaseURL = v
	}
	if v := os.Getenv("COAUTHORNET_SCHOLAR_USER_AGENT"); v != "" {
		cfg.Scholar.UserAgent = v
	}
	if v := os.Getenv("COAUTHORNET_COAUTHOR_SOURCE"); v != "" {
		cfg.Scholar.Source = profile.CoauthorSource(v)
	}
	if v := os.Getenv("COAUTHORNET_CANONICALIZE_NAMES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: COAUTHORNET_CANONICALIZE_NAMES: %v", ErrInvalidConfig, err)
		}
		cfg.CanonicalizeNames = b
	}
	if v := os.Getenv("COAUTHORNET_NEO4J_URI"); v != "" {
		if cfg.Neo4j == nil {
			cfg.Neo4j = &graphdb.Options{User: "neo4j"}
		}
		cfg.Neo4j.URI = v
	}
	if cfg.Neo4j != nil {
		if v := os.Getenv("COAUTHORNET_NEO4J_USER"); v != "" {
			cfg.Neo4j.User = v
		}
		if v := os.Getenv("COAUTHORNET_NEO4J_PASSWORD"); v != "" {
			cfg.Neo4j.Password = v
		}
		if v := os.Getenv("COAUTHORNET_NEO4J_DATABASE"); v != "" {
			cfg.Neo4j.Database = v
		}
	}
	return nil
}

// Validate checks field ranges. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch c.Scholar.Source {
	case "", profile.SourceColleagues, profile.SourcePublications:
	default:
		return fmt.Errorf("%w: unknown coauthor source %q", ErrInvalidConfig, c.Scholar.Source)
	}
	if c.FetchDelay < 0 {
		return fmt.Errorf("%w: negative fetch delay", ErrInvalidConfig)
	}
	if c.Scholar.Timeout < 0 {
		return fmt.Errorf("%w: negative scholar timeout", ErrInvalidConfig)
	}
	if c.VectorDim < 0 {
		return fmt.Errorf("%w: negative vector dimension", ErrInvalidConfig)
	}
	if c.Centrality.MaxIter < 0 || c.Centrality.Tolerance < 0 {
		return fmt.Errorf("%w: centrality options must not be negative", ErrInvalidConfig)
	}
	if c.Neo4j != nil && c.Neo4j.URI == "" {
		return fmt.Errorf("%w: neo4j export enabled without a URI", ErrInvalidConfig)
	}
	return nil
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "coauthornet"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db"
		}
		return filepath.Join(home, ".coauthornet", name+".db")
	}
}
