package sampler

import (
	"math"
	"testing"

	"github.com/notargets/meshtree/mesh"
)

// a steep gaussian well centered in the domain
func well(p mesh.Point) float64 {
	r2 := 0.0
	for _, c := range p {
		r2 += c * c
	}
	return -10 * math.Exp(-4*r2)
}

func TestEstimator_IndicatorsFollowGradient(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{-1, -1}, mesh.Point{1, 1}, []int{4, 4})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	f := NewField(m.View())
	f.Fill(well)

	ind := Estimator{}.Indicators(f)
	if len(ind) != m.View().NumElements() {
		t.Fatalf("indicator count %d, want %d", len(ind), m.View().NumElements())
	}
	// the well's flank carries a larger indicator than the far corner
	view := m.View()
	flank, corner := -1.0, -1.0
	for k, v := range ind {
		c := view.Element(k).Geometry().Center()
		switch {
		case math.Abs(c[0]-0.25) < 1e-9 && math.Abs(c[1]-0.25) < 1e-9:
			flank = v
		case c[0] > 0.7 && c[1] > 0.7:
			corner = v
		}
	}
	if flank < 0 || corner < 0 {
		t.Fatal("probe elements not found")
	}
	if flank <= corner {
		t.Errorf("flank indicator %v not above far-corner indicator %v", flank, corner)
	}
}

func TestEstimator_MarkAndAdapt(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{-1, -1}, mesh.Point{1, 1}, []int{4, 4})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	f := NewField(m.View())
	f.Fill(well)

	est := Estimator{RefineFraction: 0.25, MaxLevel: 2}
	refined, coarsened, err := est.Mark(m, f)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if refined == 0 {
		t.Fatal("no elements marked for refinement")
	}
	if coarsened != 0 {
		t.Errorf("coarsened = %d with CoarsenFraction 0", coarsened)
	}

	before := m.View().NumElements()
	changed, err := m.Adapt()
	if err != nil || !changed {
		t.Fatalf("Adapt = (%v, %v)", changed, err)
	}
	m.PostAdapt()
	if got := m.View().NumElements(); got != before+3*refined {
		t.Errorf("NumElements = %d, want %d", got, before+3*refined)
	}
}

func TestEstimator_MaxLevelCap(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{1, 1})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	f := NewField(m.View())
	f.Fill(well)

	est := Estimator{RefineFraction: 1, MaxLevel: 1}
	refined, _, err := est.Mark(m, f)
	if err != nil || refined != 1 {
		t.Fatalf("Mark = (%d, %v), want 1 refined", refined, err)
	}
	if _, err := m.Adapt(); err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	m.PostAdapt()

	f, err = f.Transfer(m.View())
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	refined, _, err = est.Mark(m, f)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if refined != 0 {
		t.Errorf("refined = %d past the level cap", refined)
	}
	m.PostAdapt()
}

func TestEstimator_CoarsenUniformField(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{1, 1})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	if err := m.Mark(0, mesh.Refine); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if _, err := m.Adapt(); err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	m.PostAdapt()

	// a constant field has zero indicators everywhere: the whole sibling
	// group coarsens back to the macro element
	f := NewField(m.View())
	f.Fill(func(mesh.Point) float64 { return 7 })
	_, coarsened, err := Estimator{CoarsenFraction: 1}.Mark(m, f)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if coarsened != 4 {
		t.Fatalf("coarsened = %d, want 4", coarsened)
	}
	changed, err := m.Adapt()
	if err != nil || !changed {
		t.Fatalf("Adapt = (%v, %v)", changed, err)
	}
	m.PostAdapt()
	if got := m.View().NumElements(); got != 1 {
		t.Errorf("NumElements = %d, want 1", got)
	}
}

func TestEstimator_StaleFieldRejected(t *testing.T) {
	m, err := mesh.NewCubeMesh(mesh.Point{0, 0}, mesh.Point{1, 1}, []int{2, 2})
	if err != nil {
		t.Fatalf("NewCubeMesh: %v", err)
	}
	f := NewField(m.View())
	if err := m.Mark(0, mesh.Refine); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if _, err := m.Adapt(); err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	m.PostAdapt()

	if _, _, err := (Estimator{RefineFraction: 0.5}).Mark(m, f); err == nil {
		t.Error("expected error marking from a stale field")
	}
}
