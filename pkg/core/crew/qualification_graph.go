package crew

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// Cover is a directed covers edge: a holder of From automatically satisfies any requirement for To
type Cover struct {
	From string
	To   string
}

// QualificationGraph resolves the covers relation of the qualification catalog.
//
// The closure of every qualification is computed once on construction, so the graph is
// read-only afterwards and safe to share between goroutines.
type QualificationGraph struct {
	graph *simple.DirectedGraph

	ids   map[string]int64
	codes map[int64]string

	// satisfiedBy maps a held code to every code it satisfies (itself included)
	satisfiedBy map[string]mapset.Set[string]

	// ignoredCovers are edges that referenced a code missing from the catalog
	ignoredCovers []Cover
}

// NewQualificationGraph builds the resolver from the catalog codes and the stored covers edges.
// Edges referencing unknown codes are ignored and reported by IgnoredCovers. Self edges are ignored.
func NewQualificationGraph(codes []string, covers []Cover) *QualificationGraph {
	qg := &QualificationGraph{
		graph:       simple.NewDirectedGraph(),
		ids:         make(map[string]int64, len(codes)),
		codes:       make(map[int64]string, len(codes)),
		satisfiedBy: make(map[string]mapset.Set[string], len(codes)),
	}

	for _, code := range codes {
		if _, exists := qg.ids[code]; exists {
			continue
		}
		node := qg.graph.NewNode()
		qg.graph.AddNode(node)
		qg.ids[code] = node.ID()
		qg.codes[node.ID()] = code
	}

	for _, cover := range covers {
		fromID, fromOK := qg.ids[cover.From]
		toID, toOK := qg.ids[cover.To]
		if !fromOK || !toOK {
			qg.ignoredCovers = append(qg.ignoredCovers, cover)
			continue
		}
		if fromID == toID {
			continue
		}
		qg.graph.SetEdge(qg.graph.NewEdge(qg.graph.Node(fromID), qg.graph.Node(toID)))
	}

	for code, id := range qg.ids {
		qg.satisfiedBy[code] = qg.walkFrom(id)
	}

	return qg
}

// walkFrom collects every code reachable from the node, following covers edges.
// DepthFirst keeps its own visited set so cycles terminate.
func (qg *QualificationGraph) walkFrom(id int64) mapset.Set[string] {
	reached := mapset.NewThreadUnsafeSet[string]()
	walker := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			reached.Add(qg.codes[n.ID()])
		},
	}
	walker.Walk(qg.graph, qg.graph.Node(id), nil)
	return reached
}

// Has returns true if the code exists in the catalog
func (qg *QualificationGraph) Has(code string) bool {
	_, ok := qg.ids[code]
	return ok
}

// Satisfies returns true if any of the held codes is the requested code or transitively covers it
func (qg *QualificationGraph) Satisfies(held mapset.Set[string], code string) bool {
	if held == nil {
		return false
	}
	if held.Contains(code) {
		return true
	}
	found := false
	held.Each(func(h string) bool {
		if reach, ok := qg.satisfiedBy[h]; ok && reach.Contains(code) {
			found = true
			return true
		}
		return false
	})
	return found
}

// MemberSatisfies is Satisfies over the member's granted qualifications
func (qg *QualificationGraph) MemberSatisfies(member *Member, code string) bool {
	return qg.Satisfies(member.Qualifications, code)
}

// Covered returns the codes satisfied by holding the given code, excluding the code itself, sorted
func (qg *QualificationGraph) Covered(code string) []string {
	reach, ok := qg.satisfiedBy[code]
	if !ok {
		return nil
	}
	covered := make([]string, 0, reach.Cardinality())
	for c := range reach.Iter() {
		if c != code {
			covered = append(covered, c)
		}
	}
	slices.Sort(covered)
	return covered
}

// Cycles reports every elementary cycle of the covers relation as a list of codes.
// A cycle does not break resolution; it makes all its members equivalent.
func (qg *QualificationGraph) Cycles() [][]string {
	var cycles [][]string
	for _, cycle := range topo.DirectedCyclesIn(qg.graph) {
		// gonum closes each cycle by repeating its first node
		if len(cycle) > 1 && cycle[0].ID() == cycle[len(cycle)-1].ID() {
			cycle = cycle[:len(cycle)-1]
		}
		codes := make([]string, 0, len(cycle))
		for _, node := range cycle {
			codes = append(codes, qg.codes[node.ID()])
		}
		cycles = append(cycles, codes)
	}
	return cycles
}

// IgnoredCovers returns the covers edges dropped because an endpoint is not in the catalog
func (qg *QualificationGraph) IgnoredCovers() []Cover {
	return qg.ignoredCovers
}
