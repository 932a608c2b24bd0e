package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/wikiflow/internal/conv"
	"github.com/hupe1980/wikiflow/rdf"
)

// Term tags.
const (
	TagIRI         byte = 1
	TagBlankNode   byte = 2
	TagPlain       byte = 3
	TagLangString  byte = 4
	TagTyped       byte = 5
	TagConstantIRI byte = 6
	TagNumericIRI  byte = 7
)

// MaxStringLen bounds a single encoded string.
const MaxStringLen = 64 << 20

// AppendTerm appends the encoding of t to dst.
func AppendTerm(dst []byte, t rdf.Term) ([]byte, error) {
	switch v := t.(type) {
	case rdf.ConstIRI:
		return append(dst, TagConstantIRI, v.Index()), nil
	case rdf.NumericIRI:
		dst = append(dst, TagNumericIRI, v.Prefix())
		dst = binary.BigEndian.AppendUint16(dst, v.Char())
		return binary.BigEndian.AppendUint32(dst, v.ID()), nil
	case rdf.IRI:
		return appendString(append(dst, TagIRI), string(v)), nil
	case rdf.BlankNode:
		return appendString(append(dst, TagBlankNode), string(v)), nil
	case rdf.Literal:
		switch {
		case v.Language() != "":
			dst = appendString(append(dst, TagLangString), v.Value())
			return appendString(dst, v.Language()), nil
		case v.Datatype() != nil:
			dst = appendString(append(dst, TagTyped), v.Value())
			return AppendTerm(dst, v.Datatype())
		default:
			return appendString(append(dst, TagPlain), v.Value()), nil
		}
	case nil:
		return nil, &FormatError{Msg: "nil term"}
	default:
		return nil, &FormatError{Msg: fmt.Sprintf("unsupported term type %T", t)}
	}
}

// AppendTriple appends the encoding of t to dst.
func AppendTriple(dst []byte, t rdf.Triple) ([]byte, error) {
	var err error
	if dst, err = AppendTerm(dst, t.Subject); err != nil {
		return nil, err
	}
	if dst, err = AppendTerm(dst, t.Predicate); err != nil {
		return nil, err
	}
	return AppendTerm(dst, t.Object)
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// Writer encodes statements to an underlying writer.
//
// A Writer is not safe for concurrent use: give each destination exactly one
// Writer and route all its statements through it.
type Writer struct {
	bw  *bufio.Writer
	buf []byte
	n   int64
}

// NewWriter returns a buffered Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		bw:  bufio.NewWriterSize(w, 64*1024),
		buf: make([]byte, 0, 256),
	}
}

// Write encodes one statement.
func (w *Writer) Write(t rdf.Triple) error {
	buf, err := AppendTriple(w.buf[:0], t)
	if err != nil {
		return err
	}
	w.buf = buf
	if _, err := w.bw.Write(buf); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of statements written.
func (w *Writer) Count() int64 { return w.n }

// Flush writes any buffered data.
func (w *Writer) Flush() error { return w.bw.Flush() }

// Reader decodes statements.
type Reader struct {
	br    *bufio.Reader
	vocab *rdf.Vocabulary
	buf   []byte
}

// NewReader returns a Reader that resolves interned IRIs through vocab.
func NewReader(r io.Reader, vocab *rdf.Vocabulary) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	return &Reader{br: br, vocab: vocab}
}

// Read decodes the next statement. It returns io.EOF when the stream ends
// cleanly before a statement and io.ErrUnexpectedEOF when it ends inside one.
func (r *Reader) Read() (rdf.Triple, error) {
	s, err := r.ReadTerm()
	if err != nil {
		return rdf.Triple{}, err
	}
	if s.Kind() == rdf.KindLiteral {
		return rdf.Triple{}, &FormatError{Msg: "literal in subject position"}
	}
	p, err := r.ReadTerm()
	if err != nil {
		return rdf.Triple{}, noEOF(err)
	}
	pred, ok := p.(rdf.NamedNode)
	if !ok {
		return rdf.Triple{}, &FormatError{Msg: "predicate is not an IRI"}
	}
	o, err := r.ReadTerm()
	if err != nil {
		return rdf.Triple{}, noEOF(err)
	}
	return rdf.Triple{Subject: s, Predicate: pred, Object: o}, nil
}

// All iterates over the remaining statements, yielding at most one error.
func (r *Reader) All() iter.Seq2[rdf.Triple, error] {
	return func(yield func(rdf.Triple, error) bool) {
		for {
			t, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(t, err) || err != nil {
				return
			}
		}
	}
}

// ReadTerm decodes one term. It returns io.EOF only if no byte of the term
// could be read.
func (r *Reader) ReadTerm() (rdf.Term, error) {
	tag, err := r.br.ReadByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagIRI:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return r.vocab.IRI(s), nil
	case TagBlankNode:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return rdf.BlankNode(s), nil
	case TagPlain:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return rdf.PlainLiteral(s), nil
	case TagLangString:
		v, err := r.readString()
		if err != nil {
			return nil, err
		}
		lang, err := r.readString()
		if err != nil {
			return nil, err
		}
		return rdf.LangLiteral(v, lang), nil
	case TagTyped:
		v, err := r.readString()
		if err != nil {
			return nil, err
		}
		dt, err := r.ReadTerm()
		if err != nil {
			return nil, noEOF(err)
		}
		named, ok := dt.(rdf.NamedNode)
		if !ok {
			return nil, &FormatError{Tag: tag, Msg: "datatype is not an IRI"}
		}
		return rdf.TypedLiteral(v, named), nil
	case TagConstantIRI:
		idx, err := r.br.ReadByte()
		if err != nil {
			return nil, noEOF(err)
		}
		c, err := r.vocab.Constant(idx)
		if err != nil {
			return nil, &FormatError{Tag: tag, Msg: err.Error()}
		}
		return c, nil
	case TagNumericIRI:
		var b [7]byte
		if _, err := io.ReadFull(r.br, b[:]); err != nil {
			return nil, noEOF(err)
		}
		n, err := r.vocab.Numeric(b[0], binary.BigEndian.Uint16(b[1:3]), binary.BigEndian.Uint32(b[3:7]))
		if err != nil {
			return nil, &FormatError{Tag: tag, Msg: err.Error()}
		}
		return n, nil
	default:
		return nil, &FormatError{Tag: tag, Msg: "unknown tag"}
	}
}

func (r *Reader) readString() (string, error) {
	n, err := binary.ReadUvarint(r.br)
	if err != nil {
		return "", noEOF(err)
	}
	if n > MaxStringLen {
		return "", ErrStringTooLong
	}
	size, err := conv.Uint64ToInt(n)
	if err != nil {
		return "", ErrStringTooLong
	}
	if cap(r.buf) < size {
		r.buf = make([]byte, size)
	}
	buf := r.buf[:size]
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return "", noEOF(err)
	}
	return string(buf), nil
}

// noEOF turns a clean EOF inside a term or statement into
// io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
