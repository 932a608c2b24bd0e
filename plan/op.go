package plan

import "strconv"

// Op is the operator kind of a node. The set is closed; evaluators switch
// over it exhaustively.
type Op uint8

const (
	OpInvalid Op = iota

	// Value plans.
	OpFrom      // in-memory collection
	OpNTriples  // N-Triples file
	OpPartition // binary partition for one key
	OpFilter    // keep elements matching a predicate
	OpMap       // one-to-one transform
	OpFlatMap   // one-to-many transform
	OpUnion     // n-ary multiset union
	OpIntersect // keep left elements present on the right
	OpSubtract  // keep left elements absent on the right
	OpDistinct  // remove duplicates
	OpCache     // materialize once and share
	OpClosure   // transitive closure of a seed over a relation
	OpKeys      // project pair keys
	OpValues    // project pair values
	OpEntries   // pairs as Pair values
	OpMapPairs  // transform pairs into values
	OpAggregate // group pairs by key
	OpMapGroups // transform groups into values

	// Pair plans.
	OpFromPairs     // in-memory pairs
	OpTSV           // two-column tab-separated file
	OpKeyBy         // values to pairs
	OpFilterPairs   // keep pairs matching a predicate
	OpMapValues     // transform values, keep keys
	OpUnionPairs    // n-ary multiset union of pairs
	OpJoin          // pair/pair hash join
	OpJoinKeys      // value/pair hash join
	OpIntersectKeys // keep pairs whose key is in a key plan
	OpSubtractKeys  // keep pairs whose key is not in a key plan
	OpDistinctPairs // remove duplicate pairs
	OpCachePairs    // materialize pairs once and share
	OpKeyedClosure  // per-key transitive closure over a value relation

	numOps
)

var opNames = [...]string{
	OpInvalid:       "Invalid",
	OpFrom:          "From",
	OpNTriples:      "NTriples",
	OpPartition:     "Partition",
	OpFilter:        "Filter",
	OpMap:           "Map",
	OpFlatMap:       "FlatMap",
	OpUnion:         "Union",
	OpIntersect:     "Intersect",
	OpSubtract:      "Subtract",
	OpDistinct:      "Distinct",
	OpCache:         "Cache",
	OpClosure:       "Closure",
	OpKeys:          "Keys",
	OpValues:        "Values",
	OpEntries:       "Entries",
	OpMapPairs:      "MapPairs",
	OpAggregate:     "Aggregate",
	OpMapGroups:     "MapGroups",
	OpFromPairs:     "FromPairs",
	OpTSV:           "TSV",
	OpKeyBy:         "KeyBy",
	OpFilterPairs:   "FilterPairs",
	OpMapValues:     "MapValues",
	OpUnionPairs:    "UnionPairs",
	OpJoin:          "Join",
	OpJoinKeys:      "JoinKeys",
	OpIntersectKeys: "IntersectKeys",
	OpSubtractKeys:  "SubtractKeys",
	OpDistinctPairs: "DistinctPairs",
	OpCachePairs:    "CachePairs",
	OpKeyedClosure:  "KeyedClosure",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// IsPair reports whether nodes of this kind produce pairs.
func (o Op) IsPair() bool {
	return o >= OpFromPairs && o < numOps
}

// Valid reports whether o is a known operator.
func (o Op) Valid() bool {
	return o > OpInvalid && o < numOps
}
