package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression wraps a statement stream in a streaming compressor.
// Implementations must be safe for concurrent use.
type Compression interface {
	// Name returns the stable name stored in file headers.
	Name() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// ByName returns a built-in compression by its stable name.
//
// This is used by the self-describing file header.
func ByName(name string) (Compression, bool) {
	switch name {
	case "none", "":
		return None{}, true
	case "lz4":
		return LZ4{}, true
	case "zstd":
		return Zstd{}, true
	default:
		return nil, false
	}
}

// Default is the compression used for new partition files.
var Default Compression = LZ4{}

// None stores statements uncompressed.
type None struct{}

func (None) Name() string { return "none" }

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }

func (None) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }

// LZ4 uses the LZ4 frame format (fast, good for hot intermediate data).
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.BlockSizeOption(lz4.Block4Mb)); err != nil {
		return nil, err
	}
	return zw, nil
}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// Zstd uses Zstandard (better ratio, good for cold partitions).
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
