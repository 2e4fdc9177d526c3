// Package discovery implements Discovery & Dispatch (SPEC_FULL.md §4.3):
// walking a directory tree, filtering by extension/glob/ignore rules,
// batching files, and routing each batch to a language extractor. The walk
// itself is sequential (filepath.Walk); only the batches are extracted
// concurrently, one errgroup goroutine per batch.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/languages"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// BatchSize amortizes per-task scheduling overhead, per SPEC_FULL.md §4.3.
const BatchSize = 100

// Options configures a Run.
type Options struct {
	Root         string
	Language     string   // optional: restrict to a single registered language
	Include      []string // glob patterns; if set, only matching paths are considered
	Exclude      []string // glob patterns
	IncludeTests bool
	Incremental  bool
	Force        bool
	Concurrency  int // 0 means no limit: every batch gets its own goroutine at once
}

// SubGraph is the local (nodes, edges) pair an extractor produces for a
// batch, awaiting merge into the Store (SPEC_FULL.md glossary).
type SubGraph struct {
	Nodes []graphmodel.Node
	Edges []graphmodel.Edge
}

// Issue is a non-fatal per-file diagnostic (SPEC_FULL.md §4.3, §7).
type Issue struct {
	Path    string
	Message string
}

// Result is everything one Run produces, ready for Store.Merge and for
// writing back into graphmodel.Metadata.Files.
type Result struct {
	SubGraph SubGraph
	Manifest map[string]graphmodel.FileManifestEntry
	Removed  []string // paths present in the previous manifest but gone now
	Issues   []Issue
	Scanned  int
	Extracted int
	Reused    int
}

// Run walks opts.Root, extracts every matching file (skipping unchanged
// files under incremental mode), and returns the merged sub-graph plus an
// updated file manifest. previous is the prior run's manifest (nil for a
// full index).
func Run(ctx context.Context, opts Options, registry *languages.Registry, previous map[string]graphmodel.FileManifestEntry) (*Result, error) {
	matcher, err := buildIgnoreMatcher(opts.Root, opts.Exclude)
	if err != nil {
		return nil, err
	}

	paths, err := walkPaths(opts.Root, registry, opts.Language, opts.Include, opts.IncludeTests, matcher)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	result := &Result{
		Manifest: make(map[string]graphmodel.FileManifestEntry, len(paths)),
		Scanned:  len(paths),
	}

	batches := batch(paths, BatchSize)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		group.SetLimit(opts.Concurrency)
	}

	for _, b := range batches {
		b := b
		group.Go(func() error {
			for _, path := range b {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}

				rel, statErr := relPath(opts.Root, path)
				if statErr != nil {
					continue
				}

				info, statErr := os.Stat(path)
				if statErr != nil {
					mu.Lock()
					result.Issues = append(result.Issues, Issue{Path: rel, Message: statErr.Error()})
					mu.Unlock()
					continue
				}

				prior, hadPrior := previous[rel]
				if !opts.Force && opts.Incremental && hadPrior &&
					prior.MTimeUnix == info.ModTime().Unix() && prior.Size == info.Size() {
					mu.Lock()
					result.Manifest[rel] = prior
					result.Reused++
					mu.Unlock()
					continue
				}

				content, readErr := os.ReadFile(path)
				if readErr != nil {
					mu.Lock()
					result.Issues = append(result.Issues, Issue{Path: rel, Message: readErr.Error()})
					mu.Unlock()
					continue
				}

				ext := filepath.Ext(path)
				extractor := registry.ForExtension(ext)
				if extractor == nil {
					continue
				}

				nodes, edges, extractErr := extractor.Extract(rel, content)
				entry := graphmodel.FileManifestEntry{
					Path:        rel,
					MTimeUnix:   info.ModTime().Unix(),
					Size:        info.Size(),
					ContentHash: xxhash.Sum64(content),
					Language:    extractor.Language(),
				}

				mu.Lock()
				result.Manifest[rel] = entry
				if extractErr != nil {
					result.Issues = append(result.Issues, Issue{Path: rel, Message: extractErr.Error()})
				} else {
					result.SubGraph.Nodes = append(result.SubGraph.Nodes, nodes...)
					result.SubGraph.Edges = append(result.SubGraph.Edges, edges...)
					result.Extracted++
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	current := make(map[string]bool, len(result.Manifest))
	for path := range result.Manifest {
		current[path] = true
	}
	for path := range previous {
		if !current[path] {
			result.Removed = append(result.Removed, path)
		}
	}
	sort.Strings(result.Removed)

	return result, nil
}

func relPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func walkPaths(root string, registry *languages.Registry, language string, include []string, includeTests bool, matcher *gitignore.GitIgnore) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := relPath(root, path)
		if relErr != nil {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if !includeTests && looksLikeTestFile(rel) {
			return nil
		}

		ext := filepath.Ext(path)
		extractor := registry.ForExtension(ext)
		if extractor == nil {
			return nil
		}
		if language != "" && extractor.Language() != language {
			return nil
		}
		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	return paths, err
}

func looksLikeTestFile(rel string) bool {
	base := filepath.Base(rel)
	return strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func batch(paths []string, size int) [][]string {
	if size <= 0 {
		size = BatchSize
	}
	var batches [][]string
	for i := 0; i < len(paths); i += size {
		end := i + size
		if end > len(paths) {
			end = len(paths)
		}
		batches = append(batches, paths[i:end])
	}
	return batches
}

func buildIgnoreMatcher(root string, extraExcludes []string) (*gitignore.GitIgnore, error) {
	lines := append([]string{}, extraExcludes...)

	ignorePath := filepath.Join(root, ".codenavignore")
	if data, err := os.ReadFile(ignorePath); err == nil {
		lines = append(lines, strings.Split(string(data), "\n")...)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return gitignore.CompileIgnoreLines(lines...), nil
}
