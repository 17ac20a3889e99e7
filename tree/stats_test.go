package tree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/notargets/meshtree/mesh"
)

func TestFillTreeStats_ConsistentWithTraversals(t *testing.T) {
	m, err := mesh.NewSimplexMesh(mesh.Point{-1, -1}, mesh.Point{1, 1}, []int{4, 4})
	if err != nil {
		t.Fatalf("NewSimplexMesh: %v", err)
	}
	r := buildRoot(t, m, Config{Fanout: 3})

	var ts TreeStats
	r.FillTreeStats(&ts)

	if ts.NumVertices != r.NumVertices() {
		t.Errorf("NumVertices = %d, want %d", ts.NumVertices, r.NumVertices())
	}

	// leaf count and mean leaf depth against the leaf traversal
	leaves, leafLevelSum, vertSum := 0, 0, 0
	lv := r.LeafView()
	for n, ok := lv.Next(); ok; n, ok = lv.Next() {
		leaves++
		leafLevelSum += n.Level()
		vertSum += n.NumVertices()
		if !n.IsLeaf() {
			t.Fatal("LeafView returned an internal node")
		}
	}
	if ts.NumLeaves != leaves {
		t.Errorf("NumLeaves = %d, traversal found %d", ts.NumLeaves, leaves)
	}
	if want := float64(leafLevelSum) / float64(leaves); ts.AveLeafLevel != want {
		t.Errorf("AveLeafLevel = %v, want %v", ts.AveLeafLevel, want)
	}
	if vertSum != r.NumVertices() {
		t.Errorf("leaves hold %d vertices, inventory has %d", vertSum, r.NumVertices())
	}

	// node count and mean depth against the per-level traversals
	nodes, levelSum := 0, 0
	for level := 0; level <= ts.MaxLevel; level++ {
		view := r.LevelView(level)
		for n, ok := view.Next(); ok; n, ok = view.Next() {
			if n.Level() != level {
				t.Fatalf("LevelView(%d) returned a node at level %d", level, n.Level())
			}
			nodes++
			levelSum += level
		}
	}
	if ts.NumNodes != nodes {
		t.Errorf("NumNodes = %d, traversals found %d", ts.NumNodes, nodes)
	}
	if want := float64(levelSum) / float64(nodes); ts.AveLevel != want {
		t.Errorf("AveLevel = %v, want %v", ts.AveLevel, want)
	}
	if want := float64(vertSum) / float64(nodes); ts.AveVertices != want {
		t.Errorf("AveVertices = %v, want %v", ts.AveVertices, want)
	}

	// beyond the deepest level the traversal is empty
	deep := r.LevelView(ts.MaxLevel + 1)
	if _, ok := deep.Next(); ok {
		t.Error("LevelView past MaxLevel returned a node")
	}
}

func TestFillTreeStats_SingleLeafTree(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{1, 1})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	r := buildRoot(t, m, Config{})

	var ts TreeStats
	r.FillTreeStats(&ts)
	if ts.NumNodes != 1 || ts.NumLeaves != 1 || ts.MaxLevel != 0 {
		t.Errorf("stats = %+v, want a single root leaf", ts)
	}
	if ts.NumVertices != 4 || ts.AveVertices != 4 {
		t.Errorf("vertices = (%d, %v), want (4, 4)", ts.NumVertices, ts.AveVertices)
	}
	// every vertex touches the single element
	if ts.AveEntitiesPerLeaf != 4 {
		t.Errorf("AveEntitiesPerLeaf = %v, want 4", ts.AveEntitiesPerLeaf)
	}
}

func TestViews_StableAcrossStats(t *testing.T) {
	m, err := mesh.NewSimplexMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{3, 3})
	if err != nil {
		t.Fatalf("NewSimplexMesh: %v", err)
	}
	r := buildRoot(t, m, Config{Fanout: 2})

	collect := func() []NodeRef {
		var out []NodeRef
		lv := r.LeafView()
		for n, ok := lv.Next(); ok; n, ok = lv.Next() {
			out = append(out, n)
		}
		return out
	}

	before := collect()
	var ts TreeStats
	r.FillTreeStats(&ts)
	after := collect()

	if len(before) != len(after) {
		t.Fatalf("leaf count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("leaf %d changed identity after stats", i)
		}
	}

	// Reset restarts the same sequence
	lv := r.LeafView()
	first, _ := lv.Next()
	lv.Reset()
	again, _ := lv.Next()
	if first != again {
		t.Error("Reset did not restart the traversal")
	}
}

func TestPrintTreeStats(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{2, 2})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	r := buildRoot(t, m, Config{})

	var buf bytes.Buffer
	r.PrintTreeStats(&buf)
	out := buf.String()
	for _, want := range []string{"=== Tree Stats ===", "Vertices: 9"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
