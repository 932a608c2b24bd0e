package rdf

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/wikiflow/internal/conv"
)

// Well-known namespaces.
const (
	NamespaceRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceOWL      = "http://www.w3.org/2002/07/owl#"
	NamespaceXSD      = "http://www.w3.org/2001/XMLSchema#"
	NamespaceSKOS     = "http://www.w3.org/2004/02/skos/core#"
	NamespaceSchema   = "http://schema.org/"
	NamespaceWikibase = "http://wikiba.se/ontology#"
	NamespaceProv     = "http://www.w3.org/ns/prov#"
	NamespaceEntity   = "http://www.wikidata.org/entity/"
	NamespaceDirect   = "http://www.wikidata.org/prop/direct/"
)

// DefaultNumericPrefixes is the prefix table of DefaultVocabulary.
// The index of each prefix is persisted by the binary codec; append only.
var DefaultNumericPrefixes = []string{
	NamespaceEntity,
	NamespaceDirect,
	"http://www.wikidata.org/prop/direct-normalized/",
	"http://www.wikidata.org/prop/",
	"http://www.wikidata.org/prop/statement/",
	"http://www.wikidata.org/prop/statement/value/",
	"http://www.wikidata.org/prop/qualifier/",
	"http://www.wikidata.org/prop/qualifier/value/",
	"http://www.wikidata.org/prop/reference/",
	"http://www.wikidata.org/prop/novalue/",
	"http://www.wikidata.org/wiki/Special:EntityData/",
}

// DefaultConstants is the constants table of DefaultVocabulary.
// The index of each IRI is persisted by the binary codec; append only.
var DefaultConstants = []string{
	NamespaceRDF + "type",
	NamespaceRDF + "Property",
	NamespaceRDF + "langString",
	NamespaceRDF + "Statement",
	NamespaceRDFS + "label",
	NamespaceRDFS + "comment",
	NamespaceRDFS + "subClassOf",
	NamespaceRDFS + "subPropertyOf",
	NamespaceRDFS + "Class",
	NamespaceRDFS + "domain",
	NamespaceRDFS + "range",
	NamespaceOWL + "sameAs",
	NamespaceOWL + "Class",
	NamespaceOWL + "ObjectProperty",
	NamespaceOWL + "DatatypeProperty",
	NamespaceXSD + "string",
	NamespaceXSD + "boolean",
	NamespaceXSD + "integer",
	NamespaceXSD + "decimal",
	NamespaceXSD + "double",
	NamespaceXSD + "float",
	NamespaceXSD + "date",
	NamespaceXSD + "dateTime",
	NamespaceXSD + "gYear",
	NamespaceXSD + "gYearMonth",
	NamespaceXSD + "anyURI",
	NamespaceXSD + "nonNegativeInteger",
	NamespaceSKOS + "prefLabel",
	NamespaceSKOS + "altLabel",
	NamespaceWikibase + "Item",
	NamespaceWikibase + "Property",
	NamespaceWikibase + "Statement",
	NamespaceWikibase + "Reference",
	NamespaceWikibase + "sitelinks",
	NamespaceWikibase + "statements",
	NamespaceWikibase + "identifiers",
	NamespaceWikibase + "rank",
	NamespaceWikibase + "NormalRank",
	NamespaceWikibase + "PreferredRank",
	NamespaceWikibase + "DeprecatedRank",
	NamespaceWikibase + "BestRank",
	NamespaceWikibase + "propertyType",
	NamespaceWikibase + "directClaim",
	NamespaceWikibase + "timeValue",
	NamespaceWikibase + "timePrecision",
	NamespaceWikibase + "quantityAmount",
	NamespaceWikibase + "quantityUnit",
	NamespaceWikibase + "geoLatitude",
	NamespaceWikibase + "geoLongitude",
	NamespaceWikibase + "WikibaseItem",
	NamespaceWikibase + "ExternalId",
	NamespaceWikibase + "Time",
	NamespaceWikibase + "Quantity",
	NamespaceWikibase + "Monolingualtext",
	NamespaceWikibase + "Url",
	NamespaceWikibase + "String",
	NamespaceWikibase + "GlobeCoordinate",
	NamespaceWikibase + "CommonsMedia",
	NamespaceSchema + "Thing",
	NamespaceSchema + "name",
	NamespaceSchema + "description",
	NamespaceSchema + "about",
	NamespaceSchema + "sameAs",
	NamespaceSchema + "url",
	NamespaceSchema + "image",
	NamespaceSchema + "alternateName",
	NamespaceSchema + "isPartOf",
	NamespaceSchema + "inLanguage",
	NamespaceSchema + "Article",
	NamespaceSchema + "Dataset",
	NamespaceSchema + "dateModified",
	NamespaceSchema + "version",
	NamespaceSchema + "Person",
	NamespaceSchema + "Place",
	NamespaceSchema + "Organization",
	NamespaceSchema + "CreativeWork",
	NamespaceSchema + "Event",
	NamespaceSchema + "Intangible",
	NamespaceSchema + "Product",
	NamespaceSchema + "domainIncludes",
	NamespaceSchema + "rangeIncludes",
	NamespaceProv + "wasDerivedFrom",
	NamespaceProv + "wasGeneratedBy",
	NamespaceProv + "Entity",
}

var (
	// ErrTableTooLarge is returned when a prefix or constants table exceeds
	// 256 entries.
	ErrTableTooLarge = errors.New("vocabulary table exceeds 256 entries")
	// ErrUnknownPrefix is returned for an out-of-range numeric prefix index.
	ErrUnknownPrefix = errors.New("unknown numeric IRI prefix")
	// ErrUnknownConstant is returned for an out-of-range constant index.
	ErrUnknownConstant = errors.New("unknown constant IRI")
)

// Vocabulary is the interning context for IRIs.
//
// A Vocabulary is immutable after construction and safe for concurrent use.
// Create one per process and pass it to the codec and plan builders; terms
// created by different vocabularies must not be mixed.
type Vocabulary struct {
	prefixes   []string
	order      []uint8 // prefix indices, longest prefix first
	constants  []ConstIRI
	constIndex map[string]ConstIRI
	xsdString  NamedNode
}

// NewVocabulary builds a vocabulary from a numeric prefix table and a
// constants table.
func NewVocabulary(prefixes, constants []string) (*Vocabulary, error) {
	if len(prefixes) > 256 || len(constants) > 256 {
		return nil, ErrTableTooLarge
	}

	v := &Vocabulary{
		prefixes:   append([]string(nil), prefixes...),
		order:      make([]uint8, len(prefixes)),
		constants:  make([]ConstIRI, len(constants)),
		constIndex: make(map[string]ConstIRI, len(constants)),
	}

	for i := range prefixes {
		v.order[i] = uint8(i)
	}
	sort.SliceStable(v.order, func(a, b int) bool {
		return len(v.prefixes[v.order[a]]) > len(v.prefixes[v.order[b]])
	})

	for i, s := range constants {
		if _, dup := v.constIndex[s]; dup {
			return nil, fmt.Errorf("duplicate constant %q", s)
		}
		c := ConstIRI{index: uint8(i), iri: s}
		v.constants[i] = c
		v.constIndex[s] = c
	}

	v.xsdString = v.IRI(NamespaceXSD + "string")
	return v, nil
}

// DefaultVocabulary returns a vocabulary over DefaultNumericPrefixes and
// DefaultConstants.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultNumericPrefixes, DefaultConstants)
	if err != nil {
		panic(err) // static tables
	}
	return v
}

// IRI returns the canonical representation of s.
func (v *Vocabulary) IRI(s string) NamedNode {
	if c, ok := v.constIndex[s]; ok {
		return c
	}
	if n, ok := v.numeric(s); ok {
		return n
	}
	return IRI(s)
}

func (v *Vocabulary) numeric(s string) (NumericIRI, bool) {
	for _, idx := range v.order {
		base := v.prefixes[idx]
		if !strings.HasPrefix(s, base) {
			continue
		}
		if n, ok := parseNumericLocal(s[len(base):]); ok {
			n.base = base
			n.prefix = idx
			return n, true
		}
	}
	return NumericIRI{}, false
}

// parseNumericLocal parses "<letter><digits>" where the digits have no
// leading zero and fit in 32 bits.
func parseNumericLocal(local string) (NumericIRI, bool) {
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError || r > 0xFFFF || !unicode.IsLetter(r) {
		return NumericIRI{}, false
	}
	digits := local[size:]
	if len(digits) == 0 || len(digits) > 10 {
		return NumericIRI{}, false
	}
	if digits[0] == '0' && len(digits) > 1 {
		return NumericIRI{}, false
	}
	var id uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return NumericIRI{}, false
		}
		id = id*10 + uint64(c-'0')
	}
	id32, err := conv.Uint64ToUint32(id)
	if err != nil {
		return NumericIRI{}, false
	}
	return NumericIRI{char: uint16(r), id: id32}, true
}

// Numeric reconstructs a NumericIRI from its parts.
func (v *Vocabulary) Numeric(prefix uint8, char uint16, id uint32) (NumericIRI, error) {
	if int(prefix) >= len(v.prefixes) {
		return NumericIRI{}, fmt.Errorf("%w: %d", ErrUnknownPrefix, prefix)
	}
	return NumericIRI{base: v.prefixes[prefix], prefix: prefix, char: char, id: id}, nil
}

// Constant returns the constant IRI at index.
func (v *Vocabulary) Constant(index uint8) (ConstIRI, error) {
	if int(index) >= len(v.constants) {
		return ConstIRI{}, fmt.Errorf("%w: %d", ErrUnknownConstant, index)
	}
	return v.constants[index], nil
}

// TypedLiteral returns a datatyped literal, normalizing xsd:string to a plain
// literal.
func (v *Vocabulary) TypedLiteral(value, datatype string) Literal {
	dt := v.IRI(datatype)
	if dt == v.xsdString {
		return PlainLiteral(value)
	}
	return TypedLiteral(value, dt)
}
