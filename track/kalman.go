package track

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// kalmanFilter is a constant velocity Kalman filter over the
// (cx, cy, aspect, height) measurement space with appended velocity
// components, the 8-dimensional state used by ByteTrack-style trackers.
// Process and measurement noise scale with object height.
type kalmanFilter struct {
	motion *mat.Dense // 8x8 state transition
	update *mat.Dense // 4x8 state to measurement projection
	stdPos float64
	stdVel float64
}

func newKalmanFilter() *kalmanFilter {
	const ndim = 4

	motion := mat.NewDense(2*ndim, 2*ndim, nil)

	for i := 0; i < 2*ndim; i++ {
		motion.Set(i, i, 1)
	}

	// dt of one frame couples position to velocity
	for i := 0; i < ndim; i++ {
		motion.Set(i, ndim+i, 1)
	}

	update := mat.NewDense(ndim, 2*ndim, nil)

	for i := 0; i < ndim; i++ {
		update.Set(i, i, 1)
	}

	return &kalmanFilter{
		motion: motion,
		update: update,
		stdPos: 1.0 / 20,
		stdVel: 1.0 / 160,
	}
}

// initiate returns the state mean and covariance for a first measurement,
// with all velocity components at zero.
func (kf *kalmanFilter) initiate(m [4]float64) (*mat.VecDense, *mat.Dense) {
	mean := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		mean.SetVec(i, m[i])
	}

	h := m[3]
	std := []float64{
		2 * kf.stdPos * h,
		2 * kf.stdPos * h,
		1e-2,
		2 * kf.stdPos * h,
		10 * kf.stdVel * h,
		10 * kf.stdVel * h,
		1e-5,
		10 * kf.stdVel * h,
	}

	cov := mat.NewDense(8, 8, nil)

	for i, s := range std {
		cov.Set(i, i, s*s)
	}

	return mean, cov
}

// predict advances the state by one frame in place.
func (kf *kalmanFilter) predict(mean *mat.VecDense, cov *mat.Dense) {
	h := mean.AtVec(3)
	std := []float64{
		kf.stdPos * h,
		kf.stdPos * h,
		1e-2,
		kf.stdPos * h,
		kf.stdVel * h,
		kf.stdVel * h,
		1e-5,
		kf.stdVel * h,
	}

	noise := mat.NewDense(8, 8, nil)

	for i, s := range std {
		noise.Set(i, i, s*s)
	}

	var next mat.VecDense
	next.MulVec(kf.motion, mean)
	mean.CopyVec(&next)

	var fp, fpf mat.Dense
	fp.Mul(kf.motion, cov)
	fpf.Mul(&fp, kf.motion.T())
	fpf.Add(&fpf, noise)
	cov.Copy(&fpf)
}

// project maps the state into measurement space, returning the projected
// mean and innovation covariance.
func (kf *kalmanFilter) project(mean *mat.VecDense, cov *mat.Dense) (*mat.VecDense, *mat.Dense) {
	h := mean.AtVec(3)
	std := []float64{
		kf.stdPos * h,
		kf.stdPos * h,
		1e-1,
		kf.stdPos * h,
	}

	noise := mat.NewDense(4, 4, nil)

	for i, s := range std {
		noise.Set(i, i, s*s)
	}

	projected := mat.NewVecDense(4, nil)
	projected.MulVec(kf.update, mean)

	var hp, hph mat.Dense
	hp.Mul(kf.update, cov)
	hph.Mul(&hp, kf.update.T())
	hph.Add(&hph, noise)

	return projected, mat.DenseCopyOf(&hph)
}

// correct folds a measurement into the state in place.
func (kf *kalmanFilter) correct(mean *mat.VecDense, cov *mat.Dense, m [4]float64) error {
	projMean, projCov := kf.project(mean, cov)

	// gain K = P Hᵀ S⁻¹, solved as Sᵀ Kᵀ = (P Hᵀ)ᵀ to avoid the inverse
	var pht mat.Dense
	pht.Mul(cov, kf.update.T())

	var gainT mat.Dense

	if err := gainT.Solve(projCov.T(), pht.T()); err != nil {
		return fmt.Errorf("kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(4, nil)

	for i := 0; i < 4; i++ {
		innovation.SetVec(i, m[i]-projMean.AtVec(i))
	}

	var correction mat.VecDense
	correction.MulVec(gainT.T(), innovation)
	mean.AddVec(mean, &correction)

	// P = P - K S Kᵀ
	var ks, ksk mat.Dense
	ks.Mul(gainT.T(), projCov)
	ksk.Mul(&ks, &gainT)

	var newCov mat.Dense
	newCov.Sub(cov, &ksk)
	cov.Copy(&newCov)

	return nil
}
