package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/codenav/codenav/internal/graphmodel"
	"github.com/codenav/codenav/internal/store"
)

var idxMagic = [5]byte{'C', 'N', 'I', 'D', 'X'}

// IdxFormatVersion is written into every new sidecar.
const IdxFormatVersion uint32 = 1

// serializedIndices is the JSON body of the sidecar payload.
type serializedIndices struct {
	NodeByID map[string]int            `json:"node_by_id"`
	ByName   map[string][]int          `json:"by_name"`
	ByType   map[graphmodel.Kind][]int `json:"by_type"`
	Outgoing map[string][]int          `json:"outgoing"`
	Incoming map[string][]int          `json:"incoming"`
}

// GraphHash computes a stable 64-bit hash over nodes[] and edges[] in
// append order, per SPEC_FULL.md §4.5.
func GraphHash(s *store.Store) uint64 {
	h := xxhash.New()
	for _, n := range s.Nodes() {
		fmt.Fprintf(h, "%s\x00%d\x00", n.ID, n.Kind)
	}
	for _, e := range s.Edges() {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00", e.FromID, e.ToName, e.Kind)
	}
	return h.Sum64()
}

// IdxPath derives the sidecar path from the primary graph file path.
func IdxPath(graphPath string) string {
	return graphPath + ".idx"
}

// SaveIndex writes s's current indices as an advisory sidecar next to
// graphPath.
func SaveIndex(graphPath string, s *store.Store, codec Codec) error {
	idx := s.ExportIndices()
	body := serializedIndices{
		NodeByID: idx.NodeByID,
		ByName:   idx.ByName,
		ByType:   idx.ByType,
		Outgoing: idx.Outgoing,
		Incoming: idx.Incoming,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("persistence: marshal indices: %w", err)
	}
	compressed, err := codec.Encode(raw)
	if err != nil {
		return fmt.Errorf("persistence: encode indices: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(idxMagic[:])
	binary.Write(&buf, binary.LittleEndian, IdxFormatVersion)
	binary.Write(&buf, binary.LittleEndian, GraphHash(s))
	binary.Write(&buf, binary.LittleEndian, uint64(s.NodeCount()))
	binary.Write(&buf, binary.LittleEndian, uint64(s.EdgeCount()))
	buf.WriteByte(byte(codec.Tag()))
	buf.Write(compressed)

	return os.WriteFile(IdxPath(graphPath), buf.Bytes(), 0644)
}

// LoadIndex reads and validates the sidecar for graphPath against s's
// current nodes[]/edges[]. On success it installs the cached indices
// directly via Store.ImportIndices, skipping a rebuild. On any mismatch
// or read failure it returns false with a nil error — the sidecar is
// advisory, so a miss is not a fault (SPEC_FULL.md §4.5).
func LoadIndex(graphPath string, s *store.Store) (bool, error) {
	raw, err := os.ReadFile(IdxPath(graphPath))
	if err != nil {
		return false, nil
	}
	const headerLen = 5 + 4 + 8 + 8 + 8 + 1
	if len(raw) < headerLen || !bytes.Equal(raw[:5], idxMagic[:]) {
		return false, nil
	}

	version := binary.LittleEndian.Uint32(raw[5:9])
	graphHash := binary.LittleEndian.Uint64(raw[9:17])
	nodeCount := binary.LittleEndian.Uint64(raw[17:25])
	edgeCount := binary.LittleEndian.Uint64(raw[25:33])
	tag := CodecTag(raw[33])

	if version != IdxFormatVersion ||
		graphHash != GraphHash(s) ||
		nodeCount != uint64(s.NodeCount()) ||
		edgeCount != uint64(s.EdgeCount()) {
		return false, nil
	}

	codec, err := CodecByTag(tag)
	if err != nil {
		return false, nil
	}
	body, err := codec.Decode(raw[34:])
	if err != nil {
		return false, nil
	}

	var si serializedIndices
	if err := json.Unmarshal(body, &si); err != nil {
		return false, nil
	}

	s.ImportIndices(store.RawIndices{
		NodeByID: si.NodeByID,
		ByName:   si.ByName,
		ByType:   si.ByType,
		Outgoing: si.Outgoing,
		Incoming: si.Incoming,
	})
	return true, nil
}
