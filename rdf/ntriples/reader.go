package ntriples

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/hupe1980/wikiflow/rdf"
	knakk "github.com/knakk/rdf"
)

// maxLineSize bounds a single statement line.
const maxLineSize = 16 << 20

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("ntriples: line %d: %s", e.Line, e.Msg)
}

// Reader parses N-Triples statements.
//
// Lines are decoded one at a time with knakk/rdf so that a syntax error
// carries its line number.
type Reader struct {
	sc    *bufio.Scanner
	vocab *rdf.Vocabulary
	line  int
}

// NewReader returns a Reader that creates IRIs through vocab.
func NewReader(r io.Reader, vocab *rdf.Vocabulary) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{sc: sc, vocab: vocab}
}

// Read returns the next statement, or io.EOF when the input is exhausted.
func (r *Reader) Read() (rdf.Triple, error) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		t, err := r.parse(line)
		if err != nil {
			return rdf.Triple{}, &SyntaxError{Line: r.line, Msg: err.Error()}
		}
		return t, nil
	}
	if err := r.sc.Err(); err != nil {
		return rdf.Triple{}, err
	}
	return rdf.Triple{}, io.EOF
}

// All iterates over the remaining statements. Iteration stops after the
// first error, which is yielded once.
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

func (r *Reader) parse(line string) (rdf.Triple, error) {
	dec := knakk.NewTripleDecoder(strings.NewReader(line), knakk.NTriples)
	kt, err := dec.Decode()
	if err == io.EOF {
		return rdf.Triple{}, errors.New("incomplete statement")
	}
	if err != nil {
		return rdf.Triple{}, err
	}
	if _, err := dec.Decode(); err != io.EOF {
		if err == nil {
			return rdf.Triple{}, errors.New("more than one statement on a line")
		}
		return rdf.Triple{}, fmt.Errorf("trailing content: %w", err)
	}

	s, err := r.term(kt.Subj)
	if err != nil {
		return rdf.Triple{}, err
	}
	if s.Kind() == rdf.KindLiteral {
		return rdf.Triple{}, errors.New("literal subject")
	}
	pred, err := r.term(kt.Pred)
	if err != nil {
		return rdf.Triple{}, err
	}
	named, ok := pred.(rdf.NamedNode)
	if !ok {
		return rdf.Triple{}, errors.New("predicate must be an IRI")
	}
	o, err := r.term(kt.Obj)
	if err != nil {
		return rdf.Triple{}, err
	}
	return rdf.Triple{Subject: s, Predicate: named, Object: o}, nil
}

// term maps a decoded term into the vocabulary.
func (r *Reader) term(t knakk.Term) (rdf.Term, error) {
	switch t := t.(type) {
	case knakk.IRI:
		return r.vocab.IRI(t.String()), nil
	case knakk.Blank:
		label := strings.TrimPrefix(t.String(), "_:")
		if label == "" {
			return nil, errors.New("empty blank node label")
		}
		return rdf.BlankNode(label), nil
	case knakk.Literal:
		if lang := t.Lang(); lang != "" {
			return rdf.LangLiteral(t.String(), lang), nil
		}
		switch dt := t.DataType.String(); dt {
		case "", rdf.NamespaceXSD + "string":
			return rdf.PlainLiteral(t.String()), nil
		default:
			return r.vocab.TypedLiteral(t.String(), dt), nil
		}
	default:
		return nil, fmt.Errorf("unsupported term %T", t)
	}
}
