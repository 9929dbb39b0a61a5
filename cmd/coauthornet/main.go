// Command coauthornet fetches academic profiles and writes their
// collaboration networks, centrality statistics and reports.
//
// Usage:
//
//	coauthornet -ids abc123,def456 -out visualizations
//	coauthornet -ids-file ids.txt -source publications -delay 5s
//	coauthornet -csv profiles.csv -canonicalize
//	coauthornet -ids abc123,def456 -neo4j-uri bolt://localhost:7687 -neo4j-pass secret
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brunobiangulo/coauthornet"
	"github.com/brunobiangulo/coauthornet/graphdb"
	"github.com/brunobiangulo/coauthornet/profile"
	"github.com/brunobiangulo/coauthornet/report"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to config file (JSON)")
		ids          = flag.String("ids", "", "Comma-separated scholar IDs")
		idsFile      = flag.String("ids-file", "", "File with one scholar ID per line")
		csvPath      = flag.String("csv", "", "Analyze profiles from a CSV export instead of fetching")
		outDir       = flag.String("out", "", "Output directory (default: visualizations)")
		dbPath       = flag.String("db", "", "SQLite database path")
		delay        = flag.Duration("delay", 0, "Pause between profile fetches (default 3s)")
		source       = flag.String("source", "", "Coauthor source: colleagues or publications")
		canonicalize = flag.Bool("canonicalize", false, "Merge spelling variants of the same name")
		noImages     = flag.Bool("no-images", false, "Skip SVG images and charts")
		neo4jURI     = flag.String("neo4j-uri", "", "Export the combined network to this Neo4j bolt URI")
		neo4jUser    = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass    = flag.String("neo4j-pass", "", "Neo4j password")
		neo4jDB      = flag.String("neo4j-db", "", "Neo4j database (default: server default)")
		neo4jClean   = flag.Bool("neo4j-clean", false, "Remove previously exported collaboration data first")
		verbose      = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := coauthornet.DefaultConfig()
	if *configPath != "" {
		if err := coauthornet.LoadFile(*configPath, &cfg); err != nil {
			fatal("loading config", err)
		}
	}
	if err := coauthornet.LoadEnv(&cfg); err != nil {
		fatal("loading environment", err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["out"] {
		cfg.OutputDir = *outDir
	}
	if set["db"] {
		cfg.DBPath = *dbPath
	}
	if set["delay"] {
		cfg.FetchDelay = coauthornet.Duration(*delay)
	}
	if set["source"] {
		cfg.Scholar.Source = profile.CoauthorSource(*source)
	}
	if set["canonicalize"] {
		cfg.CanonicalizeNames = *canonicalize
	}
	if *noImages {
		cfg.StaticImages = false
	}
	if *neo4jURI != "" {
		cfg.Neo4j = &graphdb.Options{URI: *neo4jURI, User: *neo4jUser, Password: *neo4jPass, Database: *neo4jDB}
	}

	idList := splitIDs(*ids)
	if *idsFile != "" {
		more, err := readIDs(*idsFile)
		if err != nil {
			fatal("reading ids file", err)
		}
		idList = append(idList, more...)
	}
	if len(idList) == 0 && *csvPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -ids, -ids-file or -csv is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *neo4jClean && cfg.Neo4j != nil {
		if err := cleanNeo4j(ctx, *cfg.Neo4j); err != nil {
			fatal("cleaning neo4j", err)
		}
	}

	engine, err := coauthornet.New(cfg)
	if err != nil {
		fatal("creating engine", err)
	}
	defer engine.Close()

	start := time.Now()
	var records []profile.Record
	if *csvPath != "" {
		records, err = loadCSV(ctx, engine, *csvPath)
	} else {
		records, err = engine.FetchProfiles(ctx, idList)
	}
	if err != nil {
		fatal("loading profiles", err)
	}

	a, err := engine.Analyze(ctx, records)
	if err != nil {
		fatal("analyzing", err)
	}

	if err := printSummary(os.Stdout, a); err != nil {
		slog.Error("printing summary", "error", err)
	}

	rendered, err := engine.Render(ctx, a)
	if err != nil {
		fatal("rendering", err)
	}
	exported, err := engine.Export(ctx, a)
	if err != nil {
		fatal("exporting", err)
	}

	slog.Info("done",
		"run", a.RunID,
		"profiles", len(a.Profiles),
		"files", len(rendered)+len(exported),
		"output_dir", cfg.OutputDir,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

// printSummary writes the statistics of every network and the shared
// connections table to w.
func printSummary(w io.Writer, a *coauthornet.Analysis) error {
	out := bufio.NewWriter(w)
	for _, n := range a.Individual {
		if err := report.PrintStatistics(out, "Network statistics for "+n.Name, n.Graph, n.Centrality); err != nil {
			return fmt.Errorf("statistics for %s: %w", n.Name, err)
		}
	}
	if err := report.PrintStatistics(out, "Combined network statistics", a.Combined.Graph, a.Combined.Centrality); err != nil {
		return fmt.Errorf("combined statistics: %w", err)
	}
	if err := report.PrintSharedConnections(out, a.Pairs); err != nil {
		return fmt.Errorf("shared connections: %w", err)
	}
	return out.Flush()
}

func loadCSV(ctx context.Context, e coauthornet.Engine, path string) ([]profile.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := profile.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	if err := e.ImportProfiles(ctx, records); err != nil {
		return nil, err
	}
	slog.Info("profiles loaded from csv", "path", path, "count", len(records))
	return records, nil
}

func cleanNeo4j(ctx context.Context, opts graphdb.Options) error {
	l, err := graphdb.NewLoader(ctx, opts)
	if err != nil {
		return err
	}
	defer l.Close(ctx)
	return l.Clean(ctx)
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// readIDs reads one ID per line, skipping blank lines and # comments.
func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, sc.Err()
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
