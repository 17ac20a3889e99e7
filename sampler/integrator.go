package sampler

import (
	"github.com/notargets/meshtree/mesh"
	"github.com/notargets/meshtree/trajectory"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultDt       = 0.004
	defaultFriction = 0.02
	defaultDrift    = 0.1
	defaultMaxSteps = 50000
)

// Integrator advances a damped particle through a field's negative gradient
// with a Heun predictor-corrector, recording the path. The zero value is
// usable; zero parameters take the defaults above.
type Integrator struct {
	Dt       float64 // time step
	Friction float64 // velocity damping coefficient
	Drift    float64 // gradient coupling coefficient
	MaxSteps int     // step cap for the sampling loop
}

// Integrate runs from position x0 with velocity v0 until the trajectory
// leaves the mesh domain or MaxSteps is reached, returning the recorded
// trajectory and the steps taken. Domain exit is the normal termination at
// mesh boundaries, signaled by the locator's not-found result.
func (in Integrator) Integrate(l *Locator, f *Field, x0, v0 mesh.Point) (*trajectory.Trajectory, int) {
	dt := in.Dt
	if dt == 0 {
		dt = defaultDt
	}
	fr := in.Friction
	if fr == 0 {
		fr = defaultFriction
	}
	drift := in.Drift
	if drift == 0 {
		drift = defaultDrift
	}
	maxSteps := in.MaxSteps
	if maxSteps == 0 {
		maxSteps = defaultMaxSteps
	}

	d := len(x0)
	xo := x0.Clone()
	xn := x0.Clone()
	vo := v0.Clone()
	vn := v0.Clone()

	traj := &trajectory.Trajectory{}
	t := 0.0
	for step := 0; step < maxSteps; step++ {
		du0, ok := l.Eval(xn, f)
		if !ok {
			return traj, step
		}
		// predictor: damp the velocity, drift down the gradient, and step
		// the position with the uncorrected velocity
		floats.ScaleTo(vo, 1-fr*dt, vn)
		floats.AddScaled(vo, -drift*dt, du0.DU)
		floats.AddScaledTo(xo, xn, dt, vn)

		du1, ok := l.Eval(xo, f)
		if !ok {
			return traj, step
		}
		// corrector: average the gradients and velocities
		for k := 0; k < d; k++ {
			vn[k] = (1-0.5*fr*dt)*vn[k] - 0.5*drift*dt*(du0.DU[k]+du1.DU[k])
			xn[k] += 0.5 * dt * (vo[k] + vn[k])
		}

		t += dt
		traj.Append(trajectory.XT{X: xn.Clone(), T: t})
	}
	return traj, maxSteps
}
