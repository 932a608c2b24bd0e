package kb

import (
	"slices"
	"strings"

	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
)

// Derived is a derived statement with the Wikidata term it came from.
type Derived = plan.Pair[rdf.Triple, rdf.Term]

// Source returns the statements stored under a partition key.
type Source func(key string) plan.Plan[rdf.Triple]

type options struct {
	source    Source
	languages []string
}

// Option configures a Builder.
type Option func(*options)

// WithSource replaces plan.Partition as the statement source.
func WithSource(s Source) Option {
	return func(o *options) {
		if s != nil {
			o.source = s
		}
	}
}

// WithLanguages keeps only language-tagged literals in the given languages.
// Untagged literals are always kept.
func WithLanguages(langs ...string) Option {
	return func(o *options) {
		o.languages = make([]string, len(langs))
		for i, l := range langs {
			o.languages[i] = strings.ToLower(l)
		}
		slices.Sort(o.languages)
	}
}

// Builder composes the derivation plans. Building plans does not evaluate
// anything; the same Builder yields structurally equal plans on every call.
type Builder struct {
	m    *Mapping
	opts options

	rdfType    rdf.NamedNode
	instanceOf string
	subclassOf string
}

// NewBuilder returns a Builder for m.
func NewBuilder(m *Mapping, optFns ...Option) *Builder {
	opts := options{source: plan.Partition}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{
		m:          m,
		opts:       opts,
		rdfType:    m.vocab.IRI(rdf.NamespaceRDF + "type"),
		instanceOf: rdf.NamespaceDirect + "P31",
		subclassOf: rdf.NamespaceDirect + "P279",
	}
}

// Keys returns the partition keys the derivation reads.
func (b *Builder) Keys() []string {
	keys := append([]string{b.instanceOf, b.subclassOf}, b.m.Predicates()...)
	slices.Sort(keys)
	return slices.Compact(keys)
}

func subjectObject(t rdf.Triple) (rdf.Term, rdf.Term) { return t.Subject, t.Object }

func swap(p plan.Pair[rdf.Term, rdf.Term]) (rdf.Term, rdf.Term) { return p.Value, p.Key }

// Classes returns every entity with each of its classes, direct or
// inherited through subclass of.
func (b *Builder) Classes() plan.PairPlan[rdf.Term, rdf.Term] {
	types := plan.KeyBy(b.opts.source(b.instanceOf), plan.KeyFn("subject-object", subjectObject))
	sub := plan.KeyBy(b.opts.source(b.subclassOf), plan.KeyFn("subject-object", subjectObject))
	return types.Closure(sub).Cache()
}

// byClass keys Classes by class.
func (b *Builder) byClass() plan.PairPlan[rdf.Term, rdf.Term] {
	return plan.KeyBy(plan.Entries(b.Classes()), plan.KeyFn("swap", swap))
}

// Excluded returns the entities that are instances of an excluded class.
func (b *Builder) Excluded() plan.Plan[rdf.Term] {
	return b.byClass().IntersectKeys(b.m.Excluded()).Values().Distinct()
}

// typed returns the rdf:type statements keyed by entity.
func (b *Builder) typed() plan.PairPlan[rdf.Term, Derived] {
	joined := plan.Join(b.byClass(), b.m.Classes())
	typeOf := b.rdfType
	derived := plan.MapPairs(joined, plan.PairFn("type-statement",
		func(class rdf.Term, p plan.Pair[rdf.Term, rdf.Term]) Derived {
			return Derived{Key: rdf.Triple{Subject: p.Key, Predicate: typeOf, Object: p.Value}, Value: class}
		}))
	return plan.KeyBy(derived, plan.KeyFn("derived-subject", derivedSubject)).
		SubtractKeys(b.Excluded()).
		Cache()
}

func derivedSubject(d Derived) (rdf.Term, Derived) { return d.Key.Subject, d }

// Entities returns the entities with at least one schema.org type.
func (b *Builder) Entities() plan.Plan[rdf.Term] {
	return b.typed().Keys().Distinct()
}

// Types returns the rdf:type statements with their Wikidata classes.
func (b *Builder) Types() plan.Plan[Derived] {
	return b.typed().Values()
}

// Statements returns the renamed statements of the typed entities with
// their Wikidata predicates.
func (b *Builder) Statements() plan.Plan[Derived] {
	preds := b.m.Predicates()
	if len(preds) == 0 {
		return plan.Empty[Derived]()
	}

	renamed := make([]plan.Plan[Derived], 0, len(preds))
	for _, pred := range preds {
		prop, _ := b.m.Property(pred)
		src := b.m.vocab.IRI(pred)
		p := b.opts.source(pred)
		if len(b.opts.languages) > 0 {
			p = p.Filter(b.languageFilter())
		}
		renamed = append(renamed, plan.Map(p, plan.Fn("rename "+pred+" "+prop.Value(),
			func(t rdf.Triple) Derived {
				return Derived{Key: rdf.Triple{Subject: t.Subject, Predicate: prop, Object: t.Object}, Value: src}
			})))
	}

	all := renamed[0].Union(renamed[1:]...)
	return plan.KeyBy(all, plan.KeyFn("derived-subject", derivedSubject)).
		JoinKeys(b.Entities()).
		Values()
}

func (b *Builder) languageFilter() plan.Pred[rdf.Triple] {
	langs := b.opts.languages
	return plan.Predicate("language "+strings.Join(langs, ","), func(t rdf.Triple) bool {
		l, ok := t.Object.(rdf.Literal)
		if !ok || l.Language() == "" {
			return true
		}
		_, found := slices.BinarySearch(langs, strings.ToLower(l.Language()))
		return found
	})
}

// Derivations returns every derived statement with its origin.
func (b *Builder) Derivations() plan.Plan[Derived] {
	return b.Types().Union(b.Statements())
}

func statement(d Derived) rdf.Triple { return d.Key }

// Triples returns the derived knowledge base without duplicates.
func (b *Builder) Triples() plan.Plan[rdf.Triple] {
	return plan.Map(b.Derivations(), plan.Fn("statement", statement)).Distinct()
}

// Provenance returns one prov:wasDerivedFrom annotation per derivation.
func (b *Builder) Provenance() plan.Plan[rdf.AnnotatedTriple] {
	derivedFrom := b.m.vocab.IRI(rdf.NamespaceProv + "wasDerivedFrom")
	return plan.Map(b.Derivations().Distinct(), plan.Fn("was-derived-from", func(d Derived) rdf.AnnotatedTriple {
		return rdf.AnnotatedTriple{Subject: d.Key, Predicate: derivedFrom, Object: d.Value}
	}))
}
