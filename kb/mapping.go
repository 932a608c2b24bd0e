package kb

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

// Exclude is the mapping value that drops the instances of a class.
const Exclude = "-"

var (
	//go:embed classes.tsv
	defaultClasses []byte

	//go:embed properties.tsv
	defaultProperties []byte
)

// Mapping holds the Wikidata to schema.org correspondences.
//
// Keys may be compact ("Q5", "P569") or full IRIs; compact values are
// resolved against the schema.org namespace.
type Mapping struct {
	vocab      *rdf.Vocabulary
	classes    map[string]rdf.NamedNode
	excluded   map[string]struct{}
	properties map[string]rdf.NamedNode
}

// NewMapping returns an empty mapping interning IRIs with vocab.
func NewMapping(vocab *rdf.Vocabulary) *Mapping {
	if vocab == nil {
		vocab = rdf.DefaultVocabulary()
	}
	return &Mapping{
		vocab:      vocab,
		classes:    make(map[string]rdf.NamedNode),
		excluded:   make(map[string]struct{}),
		properties: make(map[string]rdf.NamedNode),
	}
}

// DefaultMapping returns the built-in class and property tables.
func DefaultMapping(vocab *rdf.Vocabulary) *Mapping {
	m := NewMapping(vocab)
	if err := m.ReadClasses(bytes.NewReader(defaultClasses)); err != nil {
		panic(fmt.Sprintf("kb: built-in class mapping: %v", err))
	}
	if err := m.ReadProperties(bytes.NewReader(defaultProperties)); err != nil {
		panic(fmt.Sprintf("kb: built-in property mapping: %v", err))
	}
	return m
}

// AddClass maps a Wikidata class to a schema.org type. A type of Exclude
// drops the class's instances instead.
func (m *Mapping) AddClass(class, schemaType string) {
	class = expand(class, rdf.NamespaceEntity)
	if schemaType == Exclude {
		m.excluded[class] = struct{}{}
		return
	}
	m.classes[class] = m.vocab.IRI(expand(schemaType, rdf.NamespaceSchema))
}

// AddProperty maps a predicate to a schema.org property.
func (m *Mapping) AddProperty(predicate, property string) {
	m.properties[expand(predicate, rdf.NamespaceDirect)] = m.vocab.IRI(expand(property, rdf.NamespaceSchema))
}

// ReadClasses adds the rows of a two-column class table.
func (m *Mapping) ReadClasses(r io.Reader) error {
	return readTable(r, m.AddClass)
}

// ReadProperties adds the rows of a two-column property table.
func (m *Mapping) ReadProperties(r io.Reader) error {
	return readTable(r, m.AddProperty)
}

func readTable(r io.Reader, add func(k, v string)) error {
	for row, err := range ntriples.NewTSVReader(r).All() {
		if err != nil {
			return err
		}
		add(row[0], row[1])
	}
	return nil
}

// Predicates returns the mapped predicate IRIs in ascending order. They are
// the partition keys the derivation reads besides P31 and P279.
func (m *Mapping) Predicates() []string {
	return slices.Sorted(maps.Keys(m.properties))
}

// Property returns the schema.org property of predicate.
func (m *Mapping) Property(predicate string) (rdf.NamedNode, bool) {
	p, ok := m.properties[predicate]
	return p, ok
}

// Classes returns the class table as a pair plan.
func (m *Mapping) Classes() plan.PairPlan[rdf.Term, rdf.Term] {
	pairs := make([]plan.Pair[rdf.Term, rdf.Term], 0, len(m.classes))
	for _, class := range slices.Sorted(maps.Keys(m.classes)) {
		pairs = append(pairs, plan.Pair[rdf.Term, rdf.Term]{Key: m.vocab.IRI(class), Value: m.classes[class]})
	}
	return plan.FromPairs(pairs...)
}

// Excluded returns the classes whose instances are dropped.
func (m *Mapping) Excluded() plan.Plan[rdf.Term] {
	terms := make([]rdf.Term, 0, len(m.excluded))
	for _, class := range slices.Sorted(maps.Keys(m.excluded)) {
		terms = append(terms, m.vocab.IRI(class))
	}
	return plan.From(terms...)
}

// expand resolves a compact name against ns. Names with a scheme are kept.
func expand(name, ns string) string {
	if strings.Contains(name, "://") {
		return name
	}
	return ns + name
}
