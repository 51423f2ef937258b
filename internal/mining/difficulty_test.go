package mining

import (
	"math"
	"math/rand"
	"sync"
	"testing"
)

func testController() *Controller {
	return NewController(Params{NLimit: 1000, MinDigits: 7, MinProb: 0.01}, 10.0)
}

func TestRetarget_FastRoundRatchetsUp(t *testing.T) {
	c := testController()

	params, changed := c.Retarget(3.0)
	if !changed {
		t.Fatal("expected a parameter change")
	}
	if params.NLimit != 1500 {
		t.Errorf("NLimit = %d, want 1500", params.NLimit)
	}
	if params.MinDigits != 8 {
		t.Errorf("MinDigits = %d, want 8", params.MinDigits)
	}
	if math.Abs(params.MinProb-0.012) > 1e-9 {
		t.Errorf("MinProb = %v, want 0.012", params.MinProb)
	}
}

func TestRetarget_SlowRoundRatchetsDown(t *testing.T) {
	c := testController()

	params, changed := c.Retarget(16.0)
	if !changed {
		t.Fatal("expected a parameter change")
	}
	if params.NLimit != 700 {
		t.Errorf("NLimit = %d, want 700", params.NLimit)
	}
	if params.MinDigits != 7 {
		t.Errorf("MinDigits = %d, want 7 (unchanged on the down path)", params.MinDigits)
	}
	if math.Abs(params.MinProb-0.008) > 1e-9 {
		t.Errorf("MinProb = %v, want 0.008", params.MinProb)
	}
}

func TestRetarget_InBandLeavesParamsAlone(t *testing.T) {
	c := testController()
	before := c.Snapshot()

	for _, elapsed := range []float64{6.0, 10.0, 14.0} {
		params, changed := c.Retarget(elapsed)
		if changed {
			t.Errorf("Retarget(%v) changed params", elapsed)
		}
		if params != before {
			t.Errorf("Retarget(%v) = %+v, want %+v", elapsed, params, before)
		}
	}
}

func TestRetarget_CapsAndFloors(t *testing.T) {
	c := testController()

	// Many consecutive fast rounds must saturate at the caps.
	for i := 0; i < 100; i++ {
		c.Retarget(1.0)
	}
	up := c.Snapshot()
	if up.NLimit > NLimitCap {
		t.Errorf("NLimit %d exceeds cap", up.NLimit)
	}
	if up.MinDigits > MaxMinDigits {
		t.Errorf("MinDigits %d exceeds cap", up.MinDigits)
	}
	if up.MinProb > MinProbCap+1e-12 {
		t.Errorf("MinProb %v exceeds cap", up.MinProb)
	}

	// And the saturated set must still construct valid candidates.
	if _, err := NewGenerator(up, rand.New(rand.NewSource(1))); err != nil {
		t.Errorf("saturated params rejected by generator: %v (%+v)", err, up)
	}

	// Many consecutive slow rounds must saturate at the floors.
	for i := 0; i < 100; i++ {
		c.Retarget(100.0)
	}
	down := c.Snapshot()
	if down.NLimit < NLimitFloor {
		t.Errorf("NLimit %d below floor", down.NLimit)
	}
	if down.MinProb < MinProbFloor-1e-12 {
		t.Errorf("MinProb %v below floor", down.MinProb)
	}
}

// Snapshots taken while the controller retargets must always be internally
// consistent: NLimit and MinProb move together on the down path, so a torn
// read would show one scaled and the other not.
func TestController_SnapshotIsAtomic(t *testing.T) {
	c := testController()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				c.Retarget(1.0)
			} else {
				c.Retarget(100.0)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		p := c.Snapshot()
		if p.NLimit < NLimitFloor || p.NLimit > NLimitCap {
			t.Errorf("snapshot NLimit %d outside clamps", p.NLimit)
			break
		}
		if p.MinProb < MinProbFloor-1e-12 || p.MinProb > MinProbCap+1e-12 {
			t.Errorf("snapshot MinProb %v outside clamps", p.MinProb)
			break
		}
	}

	close(stop)
	wg.Wait()
}
