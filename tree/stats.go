package tree

import (
	"fmt"
	"io"
	"strings"
)

// TreeStats aggregates diagnostic tree metrics. Computed fresh on demand,
// never persisted.
type TreeStats struct {
	NumNodes    int
	NumLeaves   int
	NumVertices int
	MaxLevel    int

	AveLevel           float64 // mean node depth
	AveLeafLevel       float64 // mean leaf depth
	AveVertices        float64 // mean vertices per node
	AveEntitiesPerLeaf float64 // mean incident element seeds per leaf
}

// FillTreeStats computes aggregate metrics in two phases: the recursion sums
// raw counts pre-order over the whole tree, then the averages are normalized
// once here. Partial averages during the recursion would be meaningless.
func (r *Root) FillTreeStats(ts *TreeStats) {
	*ts = TreeStats{}
	r.fillNodeStats(0, ts)
	ts.NumVertices = len(r.verts)
	ts.AveLevel /= float64(ts.NumNodes)
	ts.AveVertices /= float64(ts.NumNodes)
	if ts.NumLeaves > 0 {
		ts.AveLeafLevel /= float64(ts.NumLeaves)
		ts.AveEntitiesPerLeaf /= float64(ts.NumLeaves)
	}
}

// fillNodeStats adds node ni's own counts before recursing into children
func (r *Root) fillNodeStats(ni int, ts *TreeStats) {
	n := &r.nodes[ni]
	ts.NumNodes++
	ts.AveLevel += float64(n.level)
	ts.AveVertices += float64(len(n.vertices))
	if n.level > ts.MaxLevel {
		ts.MaxLevel = n.level
	}
	if n.children == nil {
		ts.NumLeaves++
		ts.AveLeafLevel += float64(n.level)
		for _, vi := range n.vertices {
			ts.AveEntitiesPerLeaf += float64(len(r.verts[vi].Elements))
		}
	}
	for _, c := range n.children {
		r.fillNodeStats(c, ts)
	}
}

// PrintTreeStats writes a human-readable summary to the sink. Diagnostic
// only; the text layout carries no stability contract.
func (r *Root) PrintTreeStats(w io.Writer) {
	var ts TreeStats
	r.FillTreeStats(&ts)
	fmt.Fprintln(w, ts.String())
}

func (ts TreeStats) String() string {
	var sb strings.Builder
	sb.WriteString("=== Tree Stats ===\n")
	sb.WriteString(fmt.Sprintf("  Nodes: %d (leaves: %d, max level: %d)\n",
		ts.NumNodes, ts.NumLeaves, ts.MaxLevel))
	sb.WriteString(fmt.Sprintf("  Vertices: %d\n", ts.NumVertices))
	sb.WriteString(fmt.Sprintf("  Average level: %.3f (leaf: %.3f)\n",
		ts.AveLevel, ts.AveLeafLevel))
	sb.WriteString(fmt.Sprintf("  Average vertices per node: %.3f\n", ts.AveVertices))
	sb.WriteString(fmt.Sprintf("  Average entities per leaf: %.3f", ts.AveEntitiesPerLeaf))
	return sb.String()
}
