package wikiflow_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/wikiflow"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

const exampleDump = `<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q1454986> .
<http://www.wikidata.org/entity/Q5> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q215627> .
`

func Example() {
	ctx := context.Background()

	flow, err := wikiflow.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer flow.Close()

	keys, err := flow.Partition(ctx, ntriples.NewReader(strings.NewReader(exampleDump), flow.Vocabulary()).All())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("partitions:", len(keys))

	human := flow.Vocabulary().IRI(rdf.NamespaceEntity + "Q5")
	humans := plan.Partition(rdf.NamespaceDirect + "P31").
		Filter(plan.Predicate("is-human", func(t rdf.Triple) bool { return t.Object == human }))

	n, err := engine.Count(ctx, flow, humans)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("humans:", n)

	// Output:
	// partitions: 2
	// humans: 1
}

func ExampleWithMetricsCollector() {
	ctx := context.Background()
	metrics := &wikiflow.BasicMetricsCollector{}

	flow, err := wikiflow.Open(ctx, wikiflow.WithCluster(4), wikiflow.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}
	defer flow.Close()

	if _, err := flow.Partition(ctx, ntriples.NewReader(strings.NewReader(exampleDump), flow.Vocabulary()).All()); err != nil {
		log.Fatal(err)
	}

	stats := metrics.GetStats()
	fmt.Println("writes:", stats.PartitionWrites, "statements:", stats.PartitionStatements)

	// Output:
	// writes: 2 statements: 3
}
