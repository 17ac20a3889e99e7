package sampler

import (
	"fmt"
	"sort"

	"github.com/notargets/meshtree/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Estimator marks mesh elements for refinement and coarsening from a
// gradient-based per-element error indicator. Thresholds are quantiles of
// the indicator distribution: the top RefineFraction of elements refine,
// the bottom CoarsenFraction coarsen.
type Estimator struct {
	RefineFraction  float64 // fraction of elements to mark Refine; 0 marks none
	CoarsenFraction float64 // fraction of elements to mark Coarsen; 0 marks none
	MaxLevel        int     // refinement level cap; <= 0 means uncapped
}

// Indicators computes the per-element indicator ‖∇u‖·h over the field's
// view, h being the element bounding-box diagonal
func (e Estimator) Indicators(f *Field) []float64 {
	view := f.View()
	ind := make([]float64, view.NumElements())
	for k := range ind {
		el := view.Element(k)
		geo := el.Geometry()
		verts := el.Vertices()
		u := make([]float64, len(verts))
		for i, vi := range verts {
			u[i] = f.At(vi)
		}
		local := geo.Local(geo.Center())
		var grad mesh.Point
		if el.Type().Simplex() {
			_, grad = simplexEval(geo, local, u)
		} else {
			_, grad = boxEval(geo, local, u)
		}
		ind[k] = floats.Norm(grad, 2) * diameter(geo)
	}
	return ind
}

// Mark applies the indicator thresholds to the mesh, returning the refine
// and coarsen mark counts. The caller runs PreAdapt/Adapt/PostAdapt after.
func (e Estimator) Mark(m *mesh.Mesh, f *Field) (refined, coarsened int, err error) {
	view := f.View()
	if !view.Current() {
		return 0, 0, fmt.Errorf("sampler: field view at generation %d is stale", view.Generation())
	}
	ind := e.Indicators(f)
	sorted := append([]float64(nil), ind...)
	sort.Float64s(sorted)

	if e.RefineFraction > 0 {
		rt := stat.Quantile(1-e.RefineFraction, stat.Empirical, sorted, nil)
		for k, v := range ind {
			if v < rt {
				continue
			}
			if e.MaxLevel > 0 && view.Element(k).Level() >= e.MaxLevel {
				continue
			}
			if err := m.Mark(k, mesh.Refine); err != nil {
				return refined, coarsened, err
			}
			refined++
		}
	}
	if e.CoarsenFraction > 0 {
		ct := stat.Quantile(e.CoarsenFraction, stat.Empirical, sorted, nil)
		for k, v := range ind {
			if v > ct || m.GetMark(k) != mesh.Keep {
				continue
			}
			if err := m.Mark(k, mesh.Coarsen); err != nil {
				return refined, coarsened, err
			}
			coarsened++
		}
	}
	return refined, coarsened, nil
}

func diameter(geo mesh.Geometry) float64 {
	corners := geo.Corners()
	lo := corners[0].Clone()
	hi := corners[0].Clone()
	for _, c := range corners {
		for k, ck := range c {
			if ck < lo[k] {
				lo[k] = ck
			}
			if ck > hi[k] {
				hi[k] = ck
			}
		}
	}
	floats.Sub(hi, lo)
	return floats.Norm(hi, 2)
}
