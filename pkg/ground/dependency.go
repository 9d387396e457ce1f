package ground

import "github.com/potassco/clingo-sub003/internal/arena"

// scratchMatcher pairs two independent Builders (one per side, so that a
// variable named "X" in one rule's template never shares a cell with an
// unrelated "X" in another rule's template) and a Matcher, all over one
// throwaway arena. Used by templatesCanUnify to check edge satisfiability
// without retaining any binding afterward.
type scratchMatcher struct {
	left, right *Builder
	matcher     *Matcher
}

func newScratchArena() *arena.Arena { return arena.New() }

func newScratchMatcher(ar *arena.Arena) *scratchMatcher {
	return &scratchMatcher{left: NewBuilder(ar), right: NewBuilder(ar), matcher: NewMatcher(ar)}
}

// Stratum classifies a body occurrence by the strictest dependency band it
// falls into, governing which index the instantiator selects for it.
type Stratum uint8

const (
	// PositivelyStratified means every provider of the occurrence's
	// predicate lives in a strictly earlier positive-graph SCC.
	PositivelyStratified Stratum = iota
	// Stratified means every provider lives in a strictly earlier
	// outer-graph SCC (recursion may exist, but never through negation).
	Stratified
	// Unstratified means at least one provider shares the occurrence's own
	// outer SCC and is reached either through negation or positively from
	// the same (or a later) inner SCC.
	Unstratified
)

func (s Stratum) String() string {
	switch s {
	case PositivelyStratified:
		return "positively-stratified"
	case Stratified:
		return "stratified"
	default:
		return "unstratified"
	}
}

// Provide is one head-provide: a rule contributes an atom of Sig whenever it
// fires, described by a ground-term-ready template used to check whether it
// can unify against a dependent rule's body occurrence.
type Provide struct {
	Sig      Signature
	Template *FunctionTerm
}

// Depend is one body-depend: an occurrence of a predicate in a rule's body,
// tagged with whether it is reached positively or through negation.
type Depend struct {
	Sig      Signature
	Template *FunctionTerm
	Positive bool
}

// RuleNode is the dependency analyzer's view of one rule: what it provides
// and what it depends on, plus the two SCC indices computed over it.
type RuleNode struct {
	Rule *Rule

	Provides []Provide
	Depends  []Depend

	OuterSCC int // index into the outer-graph SCC order (lower = earlier)
	InnerSCC int // index into the positive-graph SCC order within OuterSCC
}

// BuildRuleNodes extracts the Provide/Depend lists for every rule, by
// walking the head for provides and the body for depends. It does not
// resolve any unification between rules; that happens in BuildEdges.
func BuildRuleNodes(rules []*Rule) []*RuleNode {
	nodes := make([]*RuleNode, len(rules))
	for i, r := range rules {
		nodes[i] = &RuleNode{Rule: r, Provides: headProvides(r.Head), Depends: bodyDepends(r.Body)}
	}
	return nodes
}

func headProvides(h Head) []Provide {
	switch h.Kind {
	case HeadSimple:
		return []Provide{{Sig: h.Atom.Signature(), Template: h.Atom}}
	case HeadDisjunction:
		out := make([]Provide, len(h.Elements))
		for i, e := range h.Elements {
			out[i] = Provide{Sig: e.Atom.Signature(), Template: e.Atom}
		}
		return out
	case HeadAggregate:
		out := make([]Provide, len(h.AggElements))
		for i, e := range h.AggElements {
			out[i] = Provide{Sig: e.Literal.Signature(), Template: e.Literal}
		}
		return out
	default:
		// Minimize, edge, project, external, heuristic, show, and theory
		// heads never provide an ordinary predicate atom other collaborators
		// can depend on; the emitter receives them directly.
		return nil
	}
}

func bodyDepends(body []BodyLit) []Depend {
	var out []Depend
	for _, lit := range body {
		out = append(out, literalDepends(lit)...)
	}
	return out
}

func literalDepends(lit BodyLit) []Depend {
	switch lit.Kind {
	case BodySimple:
		return []Depend{{Sig: lit.Atom.Signature(), Template: lit.Atom, Positive: lit.NAF == NAFNone}}
	case BodyAggregateLit:
		var out []Depend
		for _, e := range lit.Aggregate.Elements {
			out = append(out, bodyDepends(e.Condition)...)
		}
		return out
	case BodyConjunction:
		out := []Depend{{Sig: lit.Atom.Signature(), Template: lit.Atom, Positive: true}}
		out = append(out, bodyDepends(lit.Conditions)...)
		return out
	case BodyTheory:
		var out []Depend
		for _, e := range lit.Theory.Elements {
			out = append(out, bodyDepends(e.Condition)...)
		}
		return out
	default:
		// Comparison literals never depend on a predicate.
		return nil
	}
}

// edge is one directed dependency arc in the rule graph: From provides
// something Into may depend on.
type edge struct {
	from, into int
	positive   bool
}

// buildEdges unifies every node's provides against every other node's
// depends (including itself, for direct recursion), recording an edge
// `from -> into` whenever a depend's template can unify with a provide's
// template of the same signature. Unification runs over a scratch arena
// purely to check satisfiability; no binding is retained afterward.
func buildEdges(nodes []*RuleNode) []edge {
	var edges []edge
	for from, provider := range nodes {
		for _, p := range provider.Provides {
			for into, dependent := range nodes {
				for _, d := range dependent.Depends {
					if p.Sig != d.Sig {
						continue
					}
					if templatesCanUnify(p.Template, d.Template) {
						edges = append(edges, edge{from: from, into: into, positive: d.Positive})
					}
				}
			}
		}
	}
	return edges
}

// templatesCanUnify reports whether two rules' head/body templates of the
// same signature could possibly produce a common ground instance, used only
// to decide whether a dependency edge exists (no bindings are kept).
func templatesCanUnify(a, b *FunctionTerm) bool {
	ar := newScratchArena()
	m := newScratchMatcher(ar)
	ga := m.left.Build(a)
	gb := m.right.Build(b)
	return m.matcher.Unify(ga, gb)
}

// ComputeSCCs runs the two Tarjan passes the dependency analyzer needs: an
// outer pass over every edge (positive and negative), then an inner pass
// per outer component restricted to positive edges only. It assigns
// OuterSCC/InnerSCC on every node and returns the outer components in
// topological (dependency-respecting) order.
func ComputeSCCs(nodes []*RuleNode) [][]int {
	edges := buildEdges(nodes)

	outerAdj := make([][]int, len(nodes))
	for _, e := range edges {
		outerAdj[e.from] = append(outerAdj[e.from], e.into)
	}
	outerComponents := tarjanSCC(len(nodes), outerAdj)
	for idx, comp := range outerComponents {
		for _, n := range comp {
			nodes[n].OuterSCC = idx
		}
	}

	for _, comp := range outerComponents {
		member := make(map[int]bool, len(comp))
		for _, n := range comp {
			member[n] = true
		}
		posAdj := make([][]int, len(nodes))
		for _, e := range edges {
			if e.positive && member[e.from] && member[e.into] {
				posAdj[e.from] = append(posAdj[e.from], e.into)
			}
		}
		innerComponents := tarjanSCC(len(nodes), posAdj)
		innerIdx := 0
		for _, ic := range innerComponents {
			hasMember := false
			for _, n := range ic {
				if member[n] {
					hasMember = true
					break
				}
			}
			if !hasMember {
				continue
			}
			for _, n := range ic {
				if member[n] {
					nodes[n].InnerSCC = innerIdx
				}
			}
			innerIdx++
		}
	}

	return outerComponents
}

// tarjanSCC computes strongly connected components of the graph described
// by adj (adjacency list over node indices 0..n-1), returned in reverse
// topological order reversed to forward topological order (a component that
// only other components depend on comes first), the order ComputeSCCs
// relies on when it assigns ascending OuterSCC indices.
func tarjanSCC(n int, adj [][]int) [][]int {
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	visited := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var components [][]int
	counter := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		visited[v] = true

		for _, w := range adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			components = append(components, comp)
		}
	}

	for v := 0; v < n; v++ {
		if !visited[v] {
			strongconnect(v)
		}
	}

	// Tarjan emits components in reverse topological order (a sink
	// component first); reverse so index 0 is a source component, matching
	// the "earlier SCC" sense ComputeSCCs' stratification rules assume.
	for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
		components[i], components[j] = components[j], components[i]
	}
	return components
}

// ClassifyDepend returns the strongest stratum guarantee that holds for a
// dependency edge from a body occurrence in `from` (outer/inner SCC as
// already assigned) reaching a provider in `into`, given whether the edge
// itself is positive.
func ClassifyDepend(fromOuter, fromInner, intoOuter, intoInner int, positive bool) Stratum {
	switch {
	case intoOuter < fromOuter:
		return Stratified
	case intoOuter > fromOuter:
		// Only possible if ComputeSCCs assigned indices out of topological
		// order, which it never does; treated as unstratified defensively.
		return Unstratified
	case !positive:
		return Unstratified
	case intoInner < fromInner:
		return PositivelyStratified
	default:
		return Unstratified
	}
}

// IsNormal reports whether every rule in a component is a plain positive
// definite rule (no negation, no choice, no disjunction) and every
// dependency of the component resolves to a strictly lower positive SCC,
// i.e. the component carries no recursion of its own at all and is
// eligible for one-shot (non-iterative) grounding.
func IsNormal(nodes []*RuleNode, component []int) bool {
	member := make(map[int]bool, len(component))
	for _, n := range component {
		member[n] = true
	}
	for _, n := range component {
		node := nodes[n]
		if node.Rule.Head.Kind == HeadDisjunction || node.Rule.Head.Choice {
			return false
		}
		for _, d := range node.Depends {
			if !d.Positive {
				return false
			}
			if member[providerOf(nodes, d, member)] {
				return false
			}
		}
	}
	return true
}

// providerOf returns the index of a node within member that provides d's
// signature, or -1 if none does (meaning d is resolved entirely outside the
// component).
func providerOf(nodes []*RuleNode, d Depend, member map[int]bool) int {
	for idx, node := range nodes {
		if !member[idx] {
			continue
		}
		for _, p := range node.Provides {
			if p.Sig == d.Sig {
				return idx
			}
		}
	}
	return -1
}
