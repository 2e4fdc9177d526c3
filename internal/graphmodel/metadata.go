package graphmodel

// FileManifestEntry is the per-file fingerprint used by incremental discovery
// to decide whether a file needs re-extraction (SPEC_FULL.md §3.1, §4.3).
type FileManifestEntry struct {
	Path        string `json:"path"`
	MTimeUnix   int64  `json:"mtime_unix"`
	Size        int64  `json:"size"`
	ContentHash uint64 `json:"content_hash"`
	Language    string `json:"language,omitempty"`
}

// Metadata is persisted alongside the node/edge arrays. It materializes the
// "metadata" the primary-file framing in SPEC_FULL.md §4.5 refers to.
type Metadata struct {
	IndexerVersion string                       `json:"indexer_version"`
	SourceRoots    []string                     `json:"source_roots"`
	ExtractedAt    string                       `json:"extracted_at"`
	GitCommitHash  string                       `json:"git_commit_hash,omitempty"`
	Files          map[string]FileManifestEntry `json:"files"`
}

// NewMetadata returns an empty, ready-to-populate Metadata value.
func NewMetadata() Metadata {
	return Metadata{Files: make(map[string]FileManifestEntry)}
}
