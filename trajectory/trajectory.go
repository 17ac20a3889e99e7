// Package trajectory stores ordered position/time samples produced by
// integration through a field, with an explicit transaction for editing the
// sequence around mesh adaptation.
package trajectory

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/meshtree/mesh"
	"github.com/notargets/meshtree/vtk"
)

// XT is one trajectory sample: a position and its time
type XT struct {
	X mesh.Point
	T float64
}

// Trajectory is an ordered sample sequence. The zero value is an empty
// trajectory. While an adaptation transaction is open the base container is
// frozen: access panics until the transaction commits or discards, and
// editing operations exist only on the transaction handle.
type Trajectory struct {
	data []XT
	tx   *AdaptTx
}

// Append adds a sample at the end
func (tr *Trajectory) Append(xt XT) {
	tr.ensureStable()
	tr.data = append(tr.data, xt)
}

// Len returns the sample count
func (tr *Trajectory) Len() int {
	tr.ensureStable()
	return len(tr.data)
}

// At returns the i-th sample
func (tr *Trajectory) At(i int) XT {
	tr.ensureStable()
	return tr.data[i]
}

// Points returns a copy of the sample sequence
func (tr *Trajectory) Points() []XT {
	tr.ensureStable()
	return append([]XT(nil), tr.data...)
}

// BeginAdapt opens an editing transaction over a copy of the samples. Only
// one transaction may be open at a time.
func (tr *Trajectory) BeginAdapt() (*AdaptTx, error) {
	if tr.tx != nil {
		return nil, fmt.Errorf("trajectory: adaptation transaction already open")
	}
	tx := &AdaptTx{tr: tr, buf: append([]XT(nil), tr.data...)}
	tr.tx = tx
	return tx, nil
}

func (tr *Trajectory) ensureStable() {
	if tr.tx != nil {
		panic("trajectory: accessed while an adaptation transaction is open")
	}
}

// AdaptTx is an exclusive editing handle over a trajectory. Commit replaces
// the trajectory's samples with the edited copy; Discard drops the edits.
// A finished transaction must not be reused.
type AdaptTx struct {
	tr   *Trajectory
	buf  []XT
	done bool
}

// Len returns the edited sample count
func (tx *AdaptTx) Len() int {
	tx.ensureOpen()
	return len(tx.buf)
}

// At returns the i-th edited sample
func (tx *AdaptTx) At(i int) XT {
	tx.ensureOpen()
	return tx.buf[i]
}

// Insert places a sample before position i
func (tx *AdaptTx) Insert(i int, xt XT) {
	tx.ensureOpen()
	if i < 0 || i > len(tx.buf) {
		panic(fmt.Sprintf("trajectory: insert index %d out of range [0,%d]", i, len(tx.buf)))
	}
	tx.buf = append(tx.buf, XT{})
	copy(tx.buf[i+1:], tx.buf[i:])
	tx.buf[i] = xt
}

// Append adds a sample at the end of the edited sequence
func (tx *AdaptTx) Append(xt XT) {
	tx.ensureOpen()
	tx.buf = append(tx.buf, xt)
}

// Commit installs the edited sequence and closes the transaction
func (tx *AdaptTx) Commit() {
	tx.ensureOpen()
	tx.tr.data = tx.buf
	tx.tr.tx = nil
	tx.done = true
}

// Discard closes the transaction keeping the original sequence
func (tx *AdaptTx) Discard() {
	if tx.done {
		return
	}
	tx.tr.tx = nil
	tx.done = true
}

func (tx *AdaptTx) ensureOpen() {
	if tx.done {
		panic("trajectory: use of finished adaptation transaction")
	}
}

// WriteVTK exports the trajectory as a .vtp polyline. 2D trajectories plot
// (x, y, t/T) with T the time span, lifting the curve over the plane; 3D
// trajectories plot raw coordinates.
func (tr *Trajectory) WriteVTK(w io.Writer) error {
	tr.ensureStable()
	if len(tr.data) < 2 {
		return fmt.Errorf("trajectory: need at least 2 samples to export, have %d", len(tr.data))
	}
	d := len(tr.data[0].X)
	pts := make([][3]float64, len(tr.data))
	switch d {
	case 2:
		span := math.Abs(tr.data[0].T - tr.data[len(tr.data)-1].T)
		if span == 0 {
			return fmt.Errorf("trajectory: zero time span")
		}
		for i, xt := range tr.data {
			pts[i] = [3]float64{xt.X[0], xt.X[1], xt.T / span}
		}
	case 3:
		for i, xt := range tr.data {
			pts[i] = [3]float64{xt.X[0], xt.X[1], xt.X[2]}
		}
	default:
		return fmt.Errorf("trajectory: unsupported dimension %d", d)
	}
	return vtk.WritePolyLine(w, pts)
}
