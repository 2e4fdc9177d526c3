// Package persistence implements the versioned, framed binary container
// described in SPEC_FULL.md §4.5: a primary graph.bin file and an
// advisory .idx sidecar carrying pre-built indices.
package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

var magic = [8]byte{'C', 'O', 'D', 'E', 'N', 'A', 'V', 0x01}

// FormatVersion is written into every new graph.bin.
const FormatVersion uint32 = 1

// payload is the JSON body written after the framing header.
type payload struct {
	Nodes    []graphmodel.Node     `json:"nodes"`
	Edges    []graphmodel.Edge     `json:"edges"`
	Metadata graphmodel.Metadata   `json:"metadata"`
}

// Save writes s to path in framed form: magic, format_version, codec_tag,
// then codec(JSON(graph)).
func Save(path string, s *store.Store, codec Codec) error {
	body := payload{Nodes: s.Nodes(), Edges: s.Edges(), Metadata: s.Metadata}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("persistence: marshal graph: %w", err)
	}

	compressed, err := codec.Encode(raw)
	if err != nil {
		return fmt.Errorf("persistence: encode payload: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, FormatVersion); err != nil {
		return err
	}
	buf.WriteByte(byte(codec.Tag()))
	buf.Write(compressed)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("persistence: write %s: %w", path, err)
	}
	return nil
}

// Load reads a graph.bin from disk, identifying its codec from the framing
// header (or falling back to legacy detection for unframed files per
// SPEC_FULL.md §4.5 backward compatibility) and populating a fresh Store.
func Load(path string) (*store.Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}

	body, err := decodeFramed(raw)
	if err != nil {
		body, err = decodeLegacy(raw)
		if err != nil {
			return nil, fmt.Errorf("persistence: %s is neither a framed nor legacy graph file: %w", path, err)
		}
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("persistence: unmarshal graph: %w", err)
	}

	s := store.NewWithCapacity(len(p.Nodes), len(p.Edges))
	s.Metadata = p.Metadata
	s.Merge(p.Nodes, p.Edges)
	return s, nil
}

// LoadFast behaves like Load but first attempts to install indices from
// path's .idx sidecar, skipping the O(n) rebuild Merge would otherwise
// perform. It falls back to a full index rebuild whenever the sidecar is
// missing or fails validation, and then rewrites the sidecar (zstd) from
// the rebuilt indices.
func LoadFast(path string) (*store.Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}

	body, err := decodeFramed(raw)
	if err != nil {
		body, err = decodeLegacy(raw)
		if err != nil {
			return nil, fmt.Errorf("persistence: %s is neither a framed nor legacy graph file: %w", path, err)
		}
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("persistence: unmarshal graph: %w", err)
	}

	s := store.NewWithCapacity(len(p.Nodes), len(p.Edges))
	s.Metadata = p.Metadata
	s.LoadRaw(p.Nodes, p.Edges)

	if ok, _ := LoadIndex(path, s); !ok {
		s.ReindexAll()
		// Replace the missing or stale sidecar; it is advisory, so a
		// failed write is ignored.
		_ = SaveIndex(path, s, zstdCodec{})
	}
	return s, nil
}

func decodeFramed(raw []byte) ([]byte, error) {
	if len(raw) < 13 || !bytes.Equal(raw[:8], magic[:]) {
		return nil, fmt.Errorf("missing magic header")
	}
	// format_version is read but not yet used for migration branching;
	// every version to date shares the same payload shape.
	_ = binary.LittleEndian.Uint32(raw[8:12])
	tag := CodecTag(raw[12])

	codec, err := CodecByTag(tag)
	if err != nil {
		return nil, err
	}
	return codec.Decode(raw[13:])
}

// decodeLegacy accepts plain JSON or raw gzip payloads with no framing
// header at all, as the original tool's pre-framing output did.
func decodeLegacy(raw []byte) ([]byte, error) {
	if len(raw) >= 2 && raw[0] == '{' {
		return raw, nil
	}
	if body, err := (gzipCodec{}).Decode(raw); err == nil {
		return body, nil
	}
	return nil, fmt.Errorf("unrecognized legacy format")
}
