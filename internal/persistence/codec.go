package persistence

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CodecTag identifies the compression scheme framing a payload, matching
// the single-byte tag in the graph.bin header (SPEC_FULL.md §4.5).
type CodecTag byte

const (
	CodecLZ4  CodecTag = 1
	CodecZstd CodecTag = 2
	CodecGzip CodecTag = 3
	CodecRaw  CodecTag = 4
)

// Codec compresses and decompresses a payload. Implementations are
// grounded on original_source/src/serializer/compressed.rs's codec-tag
// dispatch (SPEC_FULL.md §4.5.1).
type Codec interface {
	Tag() CodecTag
	Encode(p []byte) ([]byte, error)
	Decode(p []byte) ([]byte, error)
}

// CodecByTag resolves the codec registered for a wire tag.
func CodecByTag(tag CodecTag) (Codec, error) {
	switch tag {
	case CodecLZ4:
		return lz4Codec{}, nil
	case CodecZstd:
		return zstdCodec{}, nil
	case CodecGzip:
		return gzipCodec{}, nil
	case CodecRaw:
		return rawCodec{}, nil
	default:
		return nil, fmt.Errorf("persistence: unknown codec tag %d", tag)
	}
}

// CodecByName resolves a codec by the --codec CLI flag value.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "lz4":
		return lz4Codec{}, nil
	case "zstd", "":
		return zstdCodec{}, nil
	case "gzip":
		return gzipCodec{}, nil
	case "raw":
		return rawCodec{}, nil
	default:
		return nil, fmt.Errorf("persistence: unknown codec %q", name)
	}
}

type lz4Codec struct{}

func (lz4Codec) Tag() CodecTag { return CodecLZ4 }

func (lz4Codec) Encode(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decode(p []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(p))
	return io.ReadAll(r)
}

type zstdCodec struct{}

func (zstdCodec) Tag() CodecTag { return CodecZstd }

func (zstdCodec) Encode(p []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(p, make([]byte, 0, len(p))), nil
}

func (zstdCodec) Decode(p []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(p, nil)
}

// gzipCodec deliberately stays on the standard library: this is the exact
// codec the legacy "Gzip" tag round-trips against, and nothing else in the
// pack exercises klauspost's gzip variant specifically (DESIGN.md).
type gzipCodec struct{}

func (gzipCodec) Tag() CodecTag { return CodecGzip }

func (gzipCodec) Encode(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decode(p []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type rawCodec struct{}

func (rawCodec) Tag() CodecTag           { return CodecRaw }
func (rawCodec) Encode(p []byte) ([]byte, error) { return p, nil }
func (rawCodec) Decode(p []byte) ([]byte, error) { return p, nil }
