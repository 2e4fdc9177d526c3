package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codenav/codenav/internal/discovery"
	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/languages"
	"github.com/codenav/codenav/internal/persistence"
	"github.com/codenav/codenav/internal/store"
	"github.com/spf13/cobra"
)

func runIndex(logger *slog.Logger, cmd *cobra.Command, args []string) error {
	start := time.Now()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	rootPath, err := filepath.Abs(dir)
	if err != nil {
		return usageError(fmt.Errorf("failed to resolve path %q: %w", dir, err))
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return ioError(fmt.Errorf("failed to access path %q: %w", rootPath, err))
	}
	if !info.IsDir() {
		return usageError(fmt.Errorf("path %q is not a directory", rootPath))
	}

	language, _ := optionalStringFlag(cmd, "language")
	outputPath, _ := optionalStringFlag(cmd, "output")
	incremental, _ := boolFlag(cmd, "incremental")
	exclude, _ := stringSliceFlag(cmd, "exclude")
	includeTests, _ := boolFlag(cmd, "include-tests")
	force, _ := boolFlag(cmd, "force")
	benchmark, _ := boolFlag(cmd, "benchmark")
	benchmarkJSON, _ := optionalStringFlag(cmd, "benchmark-json")
	codecName, _ := optionalStringFlag(cmd, "codec")
	asJSON, _ := boolFlag(cmd, "json")

	codec, err := persistence.CodecByName(codecName)
	if err != nil {
		return usageError(err)
	}

	var previousManifest map[string]graphmodel.FileManifestEntry
	var existing *store.Store
	if incremental && !force {
		if loaded, err := persistence.Load(outputPath); err == nil {
			previousManifest = loaded.Metadata.Files
			existing = loaded
		}
	}

	registry := languages.NewDefaultRegistry()
	reporter := newIndexProgressReporter("index", asJSON)

	extractStart := time.Now()
	result, err := discovery.Run(context.Background(), discovery.Options{
		Root:         rootPath,
		Language:     language,
		Exclude:      exclude,
		IncludeTests: includeTests,
		Incremental:  incremental,
		Force:        force,
	}, registry, previousManifest)
	if err != nil {
		return extractError(fmt.Errorf("discovery failed: %w", err))
	}
	extractDuration := time.Since(extractStart)
	reporter.Done(result.Extracted, result.Reused)

	for _, issue := range result.Issues {
		logger.Warn("extraction issue", "path", issue.Path, "message", issue.Message)
	}

	mergeStart := time.Now()
	var s *store.Store
	if existing != nil {
		// Start from the prior graph rather than an empty one: discovery.Run
		// only returns nodes/edges for changed files, so an incremental run
		// must keep every unchanged file's nodes and edges. Drop the stale
		// version of anything re-extracted or deleted before merging in the
		// fresh subgraph.
		s = existing
		for _, path := range result.Removed {
			s.RemoveFile(path)
		}
		for path, entry := range result.Manifest {
			if prior, ok := previousManifest[path]; !ok || prior != entry {
				s.RemoveFile(path)
			}
		}
	} else {
		s = store.NewWithCapacity(len(result.SubGraph.Nodes), len(result.SubGraph.Edges))
	}
	s.Metadata = graphmodel.NewMetadata()
	s.Metadata.SourceRoots = []string{rootPath}
	s.Metadata.ExtractedAt = time.Now().UTC().Format(time.RFC3339)
	s.Metadata.IndexerVersion = rootVersion
	s.Metadata.Files = result.Manifest
	s.Merge(result.SubGraph.Nodes, result.SubGraph.Edges)
	mergeDuration := time.Since(mergeStart)

	persistStart := time.Now()
	if err := persistence.Save(outputPath, s, codec); err != nil {
		return ioError(err)
	}
	if err := persistence.SaveIndex(outputPath, s, codec); err != nil {
		return ioError(err)
	}
	persistDuration := time.Since(persistStart)

	bytesWritten := int64(0)
	if fi, err := os.Stat(outputPath); err == nil {
		bytesWritten = fi.Size()
	}

	if benchmark {
		report := persistence.BenchmarkReport{
			ExtractDuration: extractDuration,
			MergeDuration:   mergeDuration,
			PersistDuration: persistDuration,
			NodeCount:       s.NodeCount(),
			EdgeCount:       s.EdgeCount(),
			BytesWritten:    bytesWritten,
		}
		if err := reportBenchmark(report, benchmarkJSON); err != nil {
			return ioError(err)
		}
	}

	summary := IndexSummary{
		RootPath:     rootPath,
		OutputFile:   outputPath,
		Scanned:      result.Scanned,
		Extracted:    result.Extracted,
		Reused:       result.Reused,
		Removed:      len(result.Removed),
		NodeCount:    s.NodeCount(),
		EdgeCount:    s.EdgeCount(),
		Issues:       len(result.Issues),
		DurationMS:   time.Since(start).Milliseconds(),
		RemovedFiles: result.Removed,
	}
	return printIndexSummary(summary, asJSON)
}

func reportBenchmark(report persistence.BenchmarkReport, jsonPath string) error {
	if jsonPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(jsonPath, data, 0644)
	}
	fmt.Printf("benchmark: extract=%s merge=%s persist=%s total=%s nodes=%d edges=%d bytes=%d\n",
		report.ExtractDuration, report.MergeDuration, report.PersistDuration, report.Total(),
		report.NodeCount, report.EdgeCount, report.BytesWritten)
	return nil
}
