package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/wikiflow/rdf"
)

// File header: magic, version, compression name.
const (
	fileMagic   = "WKFL"
	fileVersion = 1
)

// FileWriter writes a self-describing partition file.
type FileWriter struct {
	*Writer
	zw io.WriteCloser
}

// NewFileWriter writes the header for c to w and returns a writer for the
// statement stream. Close must be called to flush the compressor; it does
// not close w.
func NewFileWriter(w io.Writer, c Compression) (*FileWriter, error) {
	if c == nil {
		c = Default
	}
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec: compression name too long: %q", name)
	}
	hdr := make([]byte, 0, len(fileMagic)+2+len(name))
	hdr = append(hdr, fileMagic...)
	hdr = append(hdr, fileVersion, byte(len(name)))
	hdr = append(hdr, name...)
	if _, err := w.Write(hdr); err != nil {
		return nil, err
	}

	zw, err := c.NewWriter(w)
	if err != nil {
		return nil, err
	}
	return &FileWriter{Writer: NewWriter(zw), zw: zw}, nil
}

// Close flushes buffered statements and the compressor.
func (f *FileWriter) Close() error {
	return errors.Join(f.Flush(), f.zw.Close())
}

// FileReader reads a partition file written by FileWriter.
type FileReader struct {
	*Reader
	zr          io.ReadCloser
	compression string
}

// NewFileReader reads the header from r and returns a reader over the
// statement stream.
func NewFileReader(r io.Reader, vocab *rdf.Vocabulary) (*FileReader, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	var fixed [len(fileMagic) + 2]byte
	if _, err := io.ReadFull(br, fixed[:]); err != nil {
		if err == io.EOF {
			return nil, &FormatError{Msg: "empty file"}
		}
		return nil, noEOF(err)
	}
	if string(fixed[:len(fileMagic)]) != fileMagic {
		return nil, &FormatError{Msg: "bad magic"}
	}
	if v := fixed[len(fileMagic)]; v != fileVersion {
		return nil, &FormatError{Msg: fmt.Sprintf("unsupported version %d", v)}
	}
	name := make([]byte, fixed[len(fileMagic)+1])
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, noEOF(err)
	}
	c, ok := ByName(string(name))
	if !ok {
		return nil, &FormatError{Msg: fmt.Sprintf("unknown compression %q", name)}
	}

	zr, err := c.NewReader(br)
	if err != nil {
		return nil, err
	}
	return &FileReader{Reader: NewReader(zr, vocab), zr: zr, compression: c.Name()}, nil
}

// Compression returns the compression name recorded in the header.
func (f *FileReader) Compression() string { return f.compression }

// Close releases the decompressor. It does not close the underlying reader.
func (f *FileReader) Close() error { return f.zr.Close() }
