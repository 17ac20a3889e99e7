package trajectory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/notargets/meshtree/mesh"
	"github.com/stretchr/testify/require"
)

func sample2D(n int) *Trajectory {
	tr := &Trajectory{}
	for i := 0; i < n; i++ {
		tr.Append(XT{X: mesh.Point{float64(i), 2 * float64(i)}, T: 0.1 * float64(i+1)})
	}
	return tr
}

func TestTrajectory_AppendAndAccess(t *testing.T) {
	tr := sample2D(3)
	require.Equal(t, 3, tr.Len())
	require.Equal(t, mesh.Point{1, 2}, tr.At(1).X)
	require.Equal(t, 0.2, tr.At(1).T)

	pts := tr.Points()
	require.Len(t, pts, 3)
	pts[0].T = 99
	require.Equal(t, 0.1, tr.At(0).T, "Points must return a copy")
}

func TestTrajectory_AdaptTx(t *testing.T) {
	tr := sample2D(3)

	tx, err := tr.BeginAdapt()
	require.NoError(t, err)

	_, err = tr.BeginAdapt()
	require.Error(t, err, "only one transaction may be open")

	// the base container is frozen while the transaction is open
	require.Panics(t, func() { tr.Len() })
	require.Panics(t, func() { tr.At(0) })
	require.Panics(t, func() { tr.Append(XT{}) })

	tx.Insert(1, XT{X: mesh.Point{0.5, 1}, T: 0.15})
	tx.Append(XT{X: mesh.Point{3, 6}, T: 0.4})
	require.Equal(t, 5, tx.Len())
	require.Equal(t, 0.15, tx.At(1).T)
	require.Panics(t, func() { tx.Insert(-1, XT{}) })
	require.Panics(t, func() { tx.Insert(6, XT{}) })

	tx.Commit()
	require.Equal(t, 5, tr.Len())
	require.Equal(t, []float64{0.1, 0.15, 0.2, 0.3, 0.4},
		[]float64{tr.At(0).T, tr.At(1).T, tr.At(2).T, tr.At(3).T, tr.At(4).T})

	require.Panics(t, func() { tx.Append(XT{}) }, "finished transaction must not be reused")
}

func TestTrajectory_AdaptTxDiscard(t *testing.T) {
	tr := sample2D(3)
	tx, err := tr.BeginAdapt()
	require.NoError(t, err)
	tx.Append(XT{X: mesh.Point{9, 9}, T: 9})
	tx.Discard()

	require.Equal(t, 3, tr.Len(), "discarded edits must not apply")
	tx.Discard() // repeated discard is a no-op

	// a fresh transaction can open after discard
	tx2, err := tr.BeginAdapt()
	require.NoError(t, err)
	tx2.Commit()
}

func TestTrajectory_WriteVTK(t *testing.T) {
	t.Run("Lifted2D", func(t *testing.T) {
		tr := &Trajectory{}
		tr.Append(XT{X: mesh.Point{0, 0}, T: 0})
		tr.Append(XT{X: mesh.Point{1, 2}, T: 0.5})
		tr.Append(XT{X: mesh.Point{2, 4}, T: 1.5})
		tr.Append(XT{X: mesh.Point{3, 6}, T: 2})
		var buf bytes.Buffer
		require.NoError(t, tr.WriteVTK(&buf))
		out := buf.String()
		require.Contains(t, out, `type="PolyData"`)
		require.Contains(t, out, `NumberOfPoints="4"`)
		require.Contains(t, out, `NumberOfLines="3"`)
		// the 2D curve lifts over the plane by normalized time: the last
		// sample sits at height 1
		require.Contains(t, out, "3 6 1")
	})
	t.Run("Raw3D", func(t *testing.T) {
		tr := &Trajectory{}
		tr.Append(XT{X: mesh.Point{0, 0, 0}, T: 0})
		tr.Append(XT{X: mesh.Point{1, 2, 3}, T: 1})
		var buf bytes.Buffer
		require.NoError(t, tr.WriteVTK(&buf))
		require.Contains(t, buf.String(), "1 2 3")
	})
	t.Run("TooFewSamples", func(t *testing.T) {
		tr := sample2D(1)
		err := tr.WriteVTK(&strings.Builder{})
		require.Error(t, err)
	})
	t.Run("ZeroTimeSpan", func(t *testing.T) {
		tr := &Trajectory{}
		tr.Append(XT{X: mesh.Point{0, 0}, T: 1})
		tr.Append(XT{X: mesh.Point{1, 1}, T: 1})
		require.Error(t, tr.WriteVTK(&strings.Builder{}))
	})
	t.Run("UnsupportedDimension", func(t *testing.T) {
		tr := &Trajectory{}
		tr.Append(XT{X: mesh.Point{0}, T: 0})
		tr.Append(XT{X: mesh.Point{1}, T: 1})
		require.Error(t, tr.WriteVTK(&strings.Builder{}))
	})
}
