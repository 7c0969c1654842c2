// Package compress provides the codec layer for frame snapshots. Two
// algorithms are supported: LZ4 for speed and zstd for ratio, plus a
// pass-through codec for debugging snapshot payloads.
package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/quiverdb/quiver/pkg/errors"
)

// Algorithm identifies a snapshot compression algorithm.
type Algorithm string

const (
	// None is a pass-through codec
	None Algorithm = "none"
	// LZ4 favors speed over ratio
	LZ4 Algorithm = "lz4"
	// Zstd favors ratio at good speed
	Zstd Algorithm = "zstd"
)

// Codec compresses and decompresses snapshot payloads in memory.
type Codec interface {
	// Algorithm returns the codec's algorithm token.
	Algorithm() Algorithm
	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)
	// Decompress returns the original form of compressed data.
	Decompress(data []byte) ([]byte, error)
}

// NewCodec creates a codec for the given algorithm token.
func NewCodec(algorithm Algorithm) (Codec, error) {
	switch algorithm {
	case None:
		return noneCodec{}, nil
	case LZ4:
		return lz4Codec{}, nil
	case Zstd:
		return newZstdCodec()
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupported,
			"unknown compression algorithm %q", algorithm)
	}
}

type noneCodec struct{}

func (noneCodec) Algorithm() Algorithm                    { return None }
func (noneCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

type lz4Codec struct{}

func (lz4Codec) Algorithm() Algorithm { return LZ4 }

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 compression failed")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "lz4 compression failed")
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "lz4 decompression failed")
	}
	return out, nil
}

// zstdCodec shares one encoder/decoder pair; both are safe for concurrent
// use via EncodeAll/DecodeAll.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var (
	zstdOnce   sync.Once
	zstdShared *zstdCodec
	zstdErr    error
)

func newZstdCodec() (Codec, error) {
	zstdOnce.Do(func() {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			zstdErr = errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd encoder")
			return
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			zstdErr = errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd decoder")
			return
		}
		zstdShared = &zstdCodec{enc: enc, dec: dec}
	})
	if zstdErr != nil {
		return nil, zstdErr
	}
	return zstdShared, nil
}

func (c *zstdCodec) Algorithm() Algorithm { return Zstd }

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "zstd decompression failed")
	}
	return out, nil
}
