package track

import (
	"testing"
)

func TestKalmanInitiate(t *testing.T) {
	kf := newKalmanFilter()

	m := [4]float64{100, 50, 0.5, 80}
	mean, cov := kf.initiate(m)

	for i := 0; i < 4; i++ {
		if mean.AtVec(i) != m[i] {
			t.Errorf("mean[%d] = %v, want %v", i, mean.AtVec(i), m[i])
		}
	}

	for i := 4; i < 8; i++ {
		if mean.AtVec(i) != 0 {
			t.Errorf("velocity mean[%d] = %v, want 0", i, mean.AtVec(i))
		}
	}

	for i := 0; i < 8; i++ {
		if cov.At(i, i) <= 0 {
			t.Errorf("covariance diagonal [%d] = %v, want > 0", i, cov.At(i, i))
		}
	}
}

func TestKalmanPredictKeepsStationaryPosition(t *testing.T) {
	kf := newKalmanFilter()

	mean, cov := kf.initiate([4]float64{100, 50, 0.5, 80})

	before := cov.At(0, 0)

	kf.predict(mean, cov)

	// zero velocity, so position is unchanged while uncertainty grows
	if mean.AtVec(0) != 100 || mean.AtVec(1) != 50 {
		t.Errorf("predicted position = (%v, %v), want (100, 50)",
			mean.AtVec(0), mean.AtVec(1))
	}

	if cov.At(0, 0) <= before {
		t.Errorf("position variance %v did not grow from %v", cov.At(0, 0), before)
	}
}

func TestKalmanCorrectMovesTowardMeasurement(t *testing.T) {
	kf := newKalmanFilter()

	mean, cov := kf.initiate([4]float64{100, 50, 0.5, 80})
	kf.predict(mean, cov)

	if err := kf.correct(mean, cov, [4]float64{110, 50, 0.5, 80}); err != nil {
		t.Fatalf("correct: %v", err)
	}

	cx := mean.AtVec(0)

	if cx <= 100 || cx >= 110 {
		t.Errorf("corrected cx = %v, want strictly between 100 and 110", cx)
	}
}
