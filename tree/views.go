package tree

// LeafView lazily enumerates every leaf of a Root in pre-order, children in
// index order. Views are read-only and restartable; they become invalid once
// the owning Root's mesh adapts, at which point Next panics.
type LeafView struct {
	root  *Root
	stack []int
}

// LeafView returns a traversal over all leaves of the tree
func (r *Root) LeafView() *LeafView {
	r.ensureCurrent()
	return &LeafView{root: r, stack: []int{0}}
}

// Reset restarts the traversal from the root node
func (v *LeafView) Reset() {
	v.stack = append(v.stack[:0], 0)
}

// Next returns the next leaf, comma-ok false when exhausted
func (v *LeafView) Next() (NodeRef, bool) {
	v.root.ensureCurrent()
	for len(v.stack) > 0 {
		ni := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]
		kids := v.root.nodes[ni].children
		if kids == nil {
			return NodeRef{root: v.root, idx: ni}, true
		}
		for i := len(kids) - 1; i >= 0; i-- {
			v.stack = append(v.stack, kids[i])
		}
	}
	return NodeRef{}, false
}

// LevelView lazily enumerates every node at a fixed depth, which may mix
// leaves and internal nodes when the tree is unbalanced. Same validity rules
// as LeafView.
type LevelView struct {
	root  *Root
	level int
	stack []int
}

// LevelView returns a traversal over all nodes at the given depth
func (r *Root) LevelView(level int) *LevelView {
	r.ensureCurrent()
	v := &LevelView{root: r, level: level}
	v.Reset()
	return v
}

// Reset restarts the traversal from the root node
func (v *LevelView) Reset() {
	v.stack = v.stack[:0]
	if v.level >= 0 {
		v.stack = append(v.stack, 0)
	}
}

// Next returns the next node at the view's depth, comma-ok false when
// exhausted
func (v *LevelView) Next() (NodeRef, bool) {
	v.root.ensureCurrent()
	for len(v.stack) > 0 {
		ni := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]
		if v.root.nodes[ni].level == v.level {
			return NodeRef{root: v.root, idx: ni}, true
		}
		kids := v.root.nodes[ni].children
		for i := len(kids) - 1; i >= 0; i-- {
			v.stack = append(v.stack, kids[i])
		}
	}
	return NodeRef{}, false
}
