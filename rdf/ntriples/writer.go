package ntriples

import (
	"bufio"
	"io"

	"github.com/hupe1980/wikiflow/rdf"
)

// Writer writes statements one per line, in the order they are given.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	bw *bufio.Writer
	n  int64
}

// NewWriter returns a buffered Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, 256*1024)}
}

// WriteTriple writes t as one N-Triples line.
func (w *Writer) WriteTriple(t rdf.Triple) error {
	return w.writeLine(t.String())
}

// WriteAnnotated writes a as one N-Triples-star line.
func (w *Writer) WriteAnnotated(a rdf.AnnotatedTriple) error {
	return w.writeLine(a.String())
}

func (w *Writer) writeLine(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of lines written.
func (w *Writer) Count() int64 { return w.n }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }
