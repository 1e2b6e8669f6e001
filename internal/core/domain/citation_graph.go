package domain

// CitationGraph groups a source document's citations by destination document.
// A graph is immutable once built; rebuild it from a fresh citation list
// instead of patching it.
type CitationGraph struct {
	order  []string
	groups map[string][]Citation
	total  int
}

// BuildCitationGraph groups citations by DestinationDocumentID. Groups appear
// in order of first appearance and each group keeps the input order.
func BuildCitationGraph(citations []Citation) *CitationGraph {
	g := &CitationGraph{
		groups: make(map[string][]Citation),
		total:  len(citations),
	}
	for _, c := range citations {
		if _, ok := g.groups[c.DestinationDocumentID]; !ok {
			g.order = append(g.order, c.DestinationDocumentID)
		}
		g.groups[c.DestinationDocumentID] = append(g.groups[c.DestinationDocumentID], c)
	}
	return g
}

// CitationsFor returns the citations pointing at exhibitID. The result is a
// copy and is empty, not nil, when there are none.
func (g *CitationGraph) CitationsFor(exhibitID string) []Citation {
	if g == nil {
		return []Citation{}
	}
	group := g.groups[exhibitID]
	out := make([]Citation, len(group))
	copy(out, group)
	return out
}

// Exhibits returns the destination document IDs in order of first appearance.
func (g *CitationGraph) Exhibits() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the total number of citations in the graph.
func (g *CitationGraph) Len() int {
	if g == nil {
		return 0
	}
	return g.total
}

// ExhibitGroup is one destination document and the citations pointing at it.
type ExhibitGroup struct {
	ExhibitID string
	Citations []Citation
}

// Groups returns every group in order of first appearance.
func (g *CitationGraph) Groups() []ExhibitGroup {
	if g == nil {
		return nil
	}
	out := make([]ExhibitGroup, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, ExhibitGroup{ExhibitID: id, Citations: g.CitationsFor(id)})
	}
	return out
}
