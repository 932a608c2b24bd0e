package rdf

import (
	"strconv"
	"strings"
)

// TermKind identifies the kind of an RDF term.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlankNode
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlankNode:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Term is an RDF term. All implementations are comparable value types.
//
// String returns the N-Triples serialization of the term.
type Term interface {
	Kind() TermKind
	String() string
}

// NamedNode is implemented by every IRI representation.
type NamedNode interface {
	Term
	// Value returns the full IRI string.
	Value() string
	namedNode()
}

// IRI is a plain (non-interned) IRI.
type IRI string

func (IRI) Kind() TermKind   { return KindIRI }
func (IRI) namedNode()       {}
func (i IRI) Value() string  { return string(i) }
func (i IRI) String() string { return "<" + escapeIRI(string(i)) + ">" }

// NumericIRI is the compact form of prefix + char + id, e.g.
// http://www.wikidata.org/entity/ + 'Q' + 42.
type NumericIRI struct {
	base   string
	prefix uint8
	char   uint16
	id     uint32
}

func (NumericIRI) Kind() TermKind { return KindIRI }
func (NumericIRI) namedNode()     {}

// Prefix returns the index of the prefix in the vocabulary's prefix table.
func (n NumericIRI) Prefix() uint8 { return n.prefix }

// Char returns the discriminating character (e.g. 'Q' or 'P').
func (n NumericIRI) Char() uint16 { return n.char }

// ID returns the integer suffix.
func (n NumericIRI) ID() uint32 { return n.id }

// Local returns the char + id part, e.g. "Q42".
func (n NumericIRI) Local() string {
	return string(rune(n.char)) + strconv.FormatUint(uint64(n.id), 10)
}

func (n NumericIRI) Value() string  { return n.base + n.Local() }
func (n NumericIRI) String() string { return "<" + escapeIRI(n.Value()) + ">" }

// ConstIRI is an IRI interned in the vocabulary's constants table.
type ConstIRI struct {
	index uint8
	iri   string
}

func (ConstIRI) Kind() TermKind { return KindIRI }
func (ConstIRI) namedNode()     {}

// Index returns the position in the constants table.
func (c ConstIRI) Index() uint8   { return c.index }
func (c ConstIRI) Value() string  { return c.iri }
func (c ConstIRI) String() string { return "<" + escapeIRI(c.iri) + ">" }

// BlankNode is a blank node identified by its label.
type BlankNode string

func (BlankNode) Kind() TermKind   { return KindBlankNode }
func (b BlankNode) Label() string  { return string(b) }
func (b BlankNode) String() string { return "_:" + string(b) }

// Literal is a plain, language-tagged or datatyped literal.
//
// Exactly one of Language and Datatype is set for tagged and typed literals;
// neither is set for plain string literals.
type Literal struct {
	value    string
	lang     string
	datatype NamedNode
}

// PlainLiteral returns a simple string literal.
func PlainLiteral(value string) Literal {
	return Literal{value: value}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(value, lang string) Literal {
	return Literal{value: value, lang: lang}
}

// TypedLiteral returns a datatyped literal. A nil datatype yields a plain
// literal.
func TypedLiteral(value string, datatype NamedNode) Literal {
	return Literal{value: value, datatype: datatype}
}

func (Literal) Kind() TermKind { return KindLiteral }

// Value returns the lexical form.
func (l Literal) Value() string { return l.value }

// Language returns the language tag or "".
func (l Literal) Language() string { return l.lang }

// Datatype returns the datatype IRI or nil.
func (l Literal) Datatype() NamedNode { return l.datatype }

// IsPlain reports whether the literal has neither language nor datatype.
func (l Literal) IsPlain() bool { return l.lang == "" && l.datatype == nil }

func (l Literal) String() string {
	var sb strings.Builder
	sb.Grow(len(l.value) + 2)
	sb.WriteByte('"')
	sb.WriteString(EscapeString(l.value))
	sb.WriteByte('"')
	switch {
	case l.lang != "":
		sb.WriteByte('@')
		sb.WriteString(l.lang)
	case l.datatype != nil:
		sb.WriteString("^^")
		sb.WriteString(l.datatype.String())
	}
	return sb.String()
}

// EscapeString escapes a literal lexical form for N-Triples.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			sb.WriteString(`\u`)
			h := strconv.FormatInt(int64(r), 16)
			sb.WriteString(strings.Repeat("0", 4-len(h)))
			sb.WriteString(strings.ToUpper(h))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
