package tree

import (
	"fmt"

	"github.com/notargets/meshtree/mesh"
)

// BoundingBox accumulates an axis-aligned extent. The zero value is the
// empty box; the first Include defines the extent and later ones only grow
// it. There is no shrink operation.
type BoundingBox struct {
	Min, Max mesh.Point
}

// Empty reports whether the box has had no inclusions yet
func (b *BoundingBox) Empty() bool { return b.Min == nil }

// Dim returns the coordinate dimension, 0 while empty
func (b *BoundingBox) Dim() int { return len(b.Min) }

// Include extends the box to cover p
func (b *BoundingBox) Include(p mesh.Point) {
	if b.Min == nil {
		b.Min = p.Clone()
		b.Max = p.Clone()
		return
	}
	for k, c := range p {
		if c < b.Min[k] {
			b.Min[k] = c
		}
		if c > b.Max[k] {
			b.Max[k] = c
		}
	}
}

// Contains reports whether p lies inside the box, all faces inclusive
func (b *BoundingBox) Contains(p mesh.Point) bool {
	if b.Min == nil || len(p) != len(b.Min) {
		return false
	}
	for k, c := range p {
		if c < b.Min[k] || c > b.Max[k] {
			return false
		}
	}
	return true
}

// Center returns the box midpoint
func (b *BoundingBox) Center() mesh.Point {
	c := make(mesh.Point, len(b.Min))
	for k := range c {
		c[k] = 0.5 * (b.Min[k] + b.Max[k])
	}
	return c
}

func (b BoundingBox) String() string {
	if b.Min == nil {
		return "BoundingBox(empty)"
	}
	return fmt.Sprintf("BoundingBox(min %v, max %v)", []float64(b.Min), []float64(b.Max))
}
