package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultDelay is the pause between two consecutive profile fetches.
const DefaultDelay = 3 * time.Second

// Fetcher retrieves one profile by its scholar ID.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (*Record, error)

// Fetch calls f(ctx, id).
func (f FetcherFunc) Fetch(ctx context.Context, id string) (*Record, error) {
	return f(ctx, id)
}

// FetchError records a profile that could not be fetched.
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchAll fetches ids one at a time, waiting delay between requests.
// Blank and repeated IDs are skipped. A failing ID is logged and reported
// as a *FetchError without stopping the batch. When ctx is cancelled the
// records gathered so far are returned together with ctx.Err().
func FetchAll(ctx context.Context, f Fetcher, ids []string, delay time.Duration) ([]Record, []*FetchError, error) {
	var (
		records  []Record
		failures []*FetchError
		seen     = make(map[string]bool, len(ids))
		started  bool
	)

	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if started && delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return records, failures, ctx.Err()
			case <-t.C:
			}
		}
		started = true

		if err := ctx.Err(); err != nil {
			return records, failures, err
		}

		slog.Info("fetch: requesting profile", "scholar_id", id)
		rec, err := f.Fetch(ctx, id)
		if err == nil && (rec == nil || rec.Name == "") {
			err = fmt.Errorf("empty profile")
		}
		if err != nil {
			if ctx.Err() != nil {
				return records, failures, ctx.Err()
			}
			fe := &FetchError{ID: id, Err: err}
			slog.Warn("fetch: profile skipped", "scholar_id", id, "error", err)
			failures = append(failures, fe)
			continue
		}

		out := rec.Clone()
		if out.ScholarID == "" {
			out.ScholarID = id
		}
		if out.FetchedAt.IsZero() {
			out.FetchedAt = time.Now().UTC()
		}
		slog.Info("fetch: profile done",
			"scholar_id", id, "name", out.Name, "coauthors", len(out.Coauthors))
		records = append(records, out)
	}
	return records, failures, nil
}
