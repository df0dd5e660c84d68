package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// summaryConcurrency bounds the number of result files parsed in parallel.
const summaryConcurrency = 8

// Summary aggregates every result document found in a results directory.
type Summary struct {
	// Total is the number of result documents read.
	Total int

	// ByStatus counts results per terminal status.
	ByStatus map[lifecycle.Status]int

	// DurationMS is the sum of per-test durations in milliseconds.
	DurationMS int64

	// Entries holds one entry per result, sorted by start time then name.
	Entries []SummaryEntry
}

// SummaryEntry is the per-test slice of a Summary.
type SummaryEntry struct {
	Name     string           `json:"name"`
	FullName string           `json:"full_name,omitempty"`
	Status   lifecycle.Status `json:"status"`
	Start    int64            `json:"start"`
	Stop     int64            `json:"stop"`
	File     string           `json:"file"`
}

// Count returns the number of results with the given status.
func (s *Summary) Count(status lifecycle.Status) int {
	return s.ByStatus[status]
}

// Failed reports whether any result has a failed or broken status.
func (s *Summary) Failed() bool {
	return s.ByStatus[lifecycle.StatusFailed] > 0 || s.ByStatus[lifecycle.StatusBroken] > 0
}

// LoadSummary reads every *-result.json document under dir, parsing files
// concurrently with a bounded errgroup. Files that are not result documents
// (containers, attachments) are skipped. A file that fails to parse aborts
// the load; a missing directory is an error.
func LoadSummary(ctx context.Context, dir string) (*Summary, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("backend: reading results dir %q: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		entries []SummaryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)

	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, "-result.json") {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("backend: reading %s: %w", name, err)
			}

			var result TestResult
			if err := json.Unmarshal(data, &result); err != nil {
				return fmt.Errorf("backend: parsing %s: %w", name, err)
			}

			mu.Lock()
			entries = append(entries, SummaryEntry{
				Name:     result.Name,
				FullName: result.FullName,
				Status:   result.Status,
				Start:    result.Start,
				Stop:     result.Stop,
				File:     name,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		return entries[i].Name < entries[j].Name
	})

	summary := &Summary{
		Total:    len(entries),
		ByStatus: make(map[lifecycle.Status]int, 5),
		Entries:  entries,
	}
	for _, e := range entries {
		status := e.Status
		if status == "" {
			status = lifecycle.StatusUnknown
		}
		summary.ByStatus[status]++
		if e.Stop > e.Start {
			summary.DurationMS += e.Stop - e.Start
		}
	}
	return summary, nil
}
