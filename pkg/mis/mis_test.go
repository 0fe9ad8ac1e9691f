package mis

import (
	"math"
	"testing"
)

func TestEngineWithoutMergingReducesToPlainBalance(t *testing.T) {
	e := NewEngine(1000, 0, false)
	if got := e.misWeightVC(); got != 1 {
		t.Errorf("misWeightVC() without merging = %v, want 1", got)
	}
	if got := e.misWeightVM(); got != 0 {
		t.Errorf("misWeightVM() without merging = %v, want 0", got)
	}
}

func TestBounceSpecularZeroesDVCM(t *testing.T) {
	e := NewEngine(1000, 0.01, true)
	s := State{DVCM: 3, DVC: 2, DVM: 1}
	next := e.Bounce(s, 0.7, 0, 0, true)
	if next.DVCM != 0 {
		t.Errorf("specular bounce must zero DVCM, got %v", next.DVCM)
	}
	if math.Abs(next.DVC-s.DVC*0.7) > 1e-12 {
		t.Errorf("specular DVC = %v, want %v", next.DVC, s.DVC*0.7)
	}
}

func TestWeightDirectHitBoundedByOne(t *testing.T) {
	e := NewEngine(1000, 0.01, true)
	camera := e.InitCamera(0.001)
	w := e.WeightDirectHit(camera, 0.002, 0.0005)
	if w <= 0 || w > 1 {
		t.Errorf("WeightDirectHit() = %v, want in (0, 1]", w)
	}
}

func TestWeightConnectionSymmetric(t *testing.T) {
	e := NewEngine(1000, 0.01, true)
	camera := State{DVCM: 1.5, DVC: 0.5, DVM: 0.2}
	lightVertex := State{DVCM: 1.2, DVC: 0.4, DVM: 0.1}

	w1 := e.WeightConnection(camera, lightVertex, 0.3, 0.2, 0.25, 0.15)
	w2 := e.WeightConnection(lightVertex, camera, 0.25, 0.15, 0.3, 0.2)
	if math.Abs(w1-w2) > 1e-9 {
		t.Errorf("WeightConnection should be symmetric under swapping camera/light roles, got %v vs %v", w1, w2)
	}
}

func TestEtaVCMZeroWhenRadiusZero(t *testing.T) {
	e := NewEngine(1000, 0, true)
	if got := e.etaVCM(); got != 0 {
		t.Errorf("etaVCM() with zero radius = %v, want 0", got)
	}
}
