package behavior

import (
	"errors"
	"math"
	"testing"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

const dt = 1.0 / 60.0

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

// headingDelta returns the absolute shortest angular distance between two
// headings.
func headingDelta(a, b float64) float64 {
	d := geometry.NormalizeAngle(b) - geometry.NormalizeAngle(a)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return math.Abs(d)
}

func TestNew_RejectsEmptyPopulation(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(n); !errors.Is(err, ErrEmptyFlock) {
			t.Errorf("New(%d) error = %v; want ErrEmptyFlock", n, err)
		}
	}
}

func TestNew_SpawnLayout(t *testing.T) {
	f, err := New(3)
	if err != nil {
		t.Fatalf("New(3) failed: %v", err)
	}
	if f.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", f.Len())
	}

	for i, a := range f.Agents() {
		want := geometry.Vector2D{X: 20 * float64(i), Y: 200}
		if !a.Pos.Eq(want) {
			t.Errorf("agent %d spawned at %v; want %v", i, a.Pos, want)
		}
		if a.Heading != 0 {
			t.Errorf("agent %d heading = %v; want 0", i, a.Heading)
		}
		if a.ID != i {
			t.Errorf("agent at index %d has ID %d; want %d", i, a.ID, i)
		}
	}
}

func TestUpdate_RejectsNegativeDelta(t *testing.T) {
	f, _ := New(2)
	before := *f.Agents()[0]

	if err := f.Update(-0.01); !errors.Is(err, ErrNegativeDelta) {
		t.Fatalf("Update(-0.01) error = %v; want ErrNegativeDelta", err)
	}
	if after := *f.Agents()[0]; after != before {
		t.Errorf("agent mutated by rejected update: %+v -> %+v", before, after)
	}
}

func TestUpdate_EmptyFlockFailsFast(t *testing.T) {
	var f Flock
	if err := f.Update(dt); !errors.Is(err, ErrEmptyFlock) {
		t.Errorf("Update on empty flock error = %v; want ErrEmptyFlock", err)
	}
	if _, err := f.Centroid(); !errors.Is(err, ErrEmptyFlock) {
		t.Errorf("Centroid on empty flock error = %v; want ErrEmptyFlock", err)
	}
}

func TestUpdate_SingleAgent(t *testing.T) {
	f, err := New(1)
	if err != nil {
		t.Fatalf("New(1) failed: %v", err)
	}
	a := f.Agents()[0]
	a.Heading = 37

	start := a.Pos
	if err := f.Update(dt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// No neighbors, centroid on itself, mean heading is its own: the three
	// steering phases leave the heading untouched.
	if !floatEquals(a.Heading, 37) {
		t.Errorf("heading = %v; want 37 (unchanged)", a.Heading)
	}

	// Movement integrates exactly speed*dt along the heading.
	rad := geometry.DegreesToRadians(37)
	want := start.Add(geometry.Vector2D{
		X: math.Cos(rad) * 10 * dt,
		Y: math.Sin(rad) * 10 * dt,
	})
	if !a.Pos.Eq(want) {
		t.Errorf("position = %v; want %v", a.Pos, want)
	}
}

func TestUpdate_TwoAgentSeparation(t *testing.T) {
	// Two agents 20 apart inside the separation ring, both heading east.
	tuning := DefaultTuning()
	tuning.SeparationRadius = 25
	f, err := NewWithTuning(2, tuning)
	if err != nil {
		t.Fatalf("NewWithTuning failed: %v", err)
	}
	a0, a1 := f.Agents()[0], f.Agents()[1]

	if err := f.Update(dt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Phase by phase:
	// Separation: a0 sees a1 at bearing 0, opposite 180, turns +1.5 (90*dt).
	//             a1 sees a0 at bearing 180, opposite 0, already there.
	// Cohesion:   centroid (10,200); a0 pulled back toward 0 by 1.0 (60*dt)
	//             -> 0.5; a1 pulled toward 180 -> 1.0.
	// Alignment:  mean heading 0.75; both reach it (0.25 < 50*dt).
	if !floatEquals(a0.Heading, 0.75) {
		t.Errorf("agent 0 heading = %v; want 0.75", a0.Heading)
	}
	if !floatEquals(a1.Heading, 0.75) {
		t.Errorf("agent 1 heading = %v; want 0.75", a1.Heading)
	}

	// Movement: both displaced by speed*dt along the final heading.
	rad := geometry.DegreesToRadians(0.75)
	step := geometry.Vector2D{X: math.Cos(rad) * 10 * dt, Y: math.Sin(rad) * 10 * dt}
	want0 := geometry.Vector2D{X: 0, Y: 200}.Add(step)
	want1 := geometry.Vector2D{X: 20, Y: 200}.Add(step)
	if !a0.Pos.Eq(want0) {
		t.Errorf("agent 0 position = %v; want %v", a0.Pos, want0)
	}
	if !a1.Pos.Eq(want1) {
		t.Errorf("agent 1 position = %v; want %v", a1.Pos, want1)
	}
}

func TestUpdate_CohesionActsJustOffCentroid(t *testing.T) {
	// Two agents straddle the centroid a micron apart: far outside the
	// coincidence tolerance, so cohesion must still steer them. The tiny
	// separation radius keeps the first phase out of the picture.
	tuning := DefaultTuning()
	tuning.SeparationRadius = 1e-9
	f, err := NewWithTuning(2, tuning)
	if err != nil {
		t.Fatalf("NewWithTuning failed: %v", err)
	}
	a0, a1 := f.Agents()[0], f.Agents()[1]
	a0.Pos = geometry.Vector2D{X: 0, Y: 0}
	a1.Pos = geometry.Vector2D{X: 2e-6, Y: 0}
	a0.Heading, a1.Heading = 90, 90

	if err := f.Update(dt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Cohesion pulls a0 toward bearing 0 and a1 toward 180 by one full
	// step each; alignment then pulls both partway back toward the mean 90.
	cohStep := tuning.CohesionForce * dt
	alignStep := tuning.AlignmentForce * dt
	if !floatEquals(a0.Heading, 90-cohStep+alignStep) {
		t.Errorf("agent 0 heading = %v; want %v", a0.Heading, 90-cohStep+alignStep)
	}
	if !floatEquals(a1.Heading, 90+cohStep-alignStep) {
		t.Errorf("agent 1 heading = %v; want %v", a1.Heading, 90+cohStep-alignStep)
	}
}

func TestUpdate_SeparationSkipsOutOfRange(t *testing.T) {
	// Default radius is 20 and the spawn distance is exactly 20: the strict
	// less-than comparison means the neighbor is NOT inside the ring.
	f, _ := New(2)
	if err := f.Update(dt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	// With no separation the only pulls are cohesion (a0 toward 0, already
	// there; a1 toward 180 by 1.0) and alignment toward the mean 0.5.
	a0, a1 := f.Agents()[0], f.Agents()[1]
	if !floatEquals(a0.Heading, 0.5) {
		t.Errorf("agent 0 heading = %v; want 0.5", a0.Heading)
	}
	if !floatEquals(a1.Heading, 0.5) {
		t.Errorf("agent 1 heading = %v; want 0.5", a1.Heading)
	}
}

func TestUpdate_HeadingChangeIsBounded(t *testing.T) {
	tuning := DefaultTuning()
	tuning.SeparationRadius = 50
	f, err := NewWithTuning(5, tuning)
	if err != nil {
		t.Fatalf("NewWithTuning failed: %v", err)
	}
	// Scatter headings so every phase has work to do.
	for i, a := range f.Agents() {
		a.Heading = float64(i * 73)
	}

	before := make([]float64, f.Len())
	for i, a := range f.Agents() {
		before[i] = a.Heading
	}

	if err := f.Update(dt); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Each phase clamps independently; the total per-tick turn is bounded
	// by the sum of the three phase budgets.
	bound := (tuning.SeparationForce + tuning.CohesionForce + tuning.AlignmentForce) * dt
	for i, a := range f.Agents() {
		if d := headingDelta(before[i], a.Heading); d > bound+1e-9 {
			t.Errorf("agent %d turned %v degrees; bound is %v", i, d, bound)
		}
	}
}

func TestUpdate_ZeroDeltaIsNoOp(t *testing.T) {
	f, _ := New(3)
	for i, a := range f.Agents() {
		a.Heading = float64(i * 40)
	}
	before := make([]Agent, f.Len())
	for i, a := range f.Agents() {
		before[i] = *a
	}

	if err := f.Update(0); err != nil {
		t.Fatalf("Update(0) failed: %v", err)
	}
	for i, a := range f.Agents() {
		if *a != before[i] {
			t.Errorf("agent %d changed on zero delta: %+v -> %+v", i, before[i], *a)
		}
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	run := func() *Flock {
		f, err := New(10)
		if err != nil {
			t.Fatalf("New(10) failed: %v", err)
		}
		for i := 0; i < 300; i++ {
			if err := f.Update(dt); err != nil {
				t.Fatalf("Update failed at tick %d: %v", i, err)
			}
		}
		return f
	}

	f1, f2 := run(), run()
	for i := range f1.Agents() {
		a, b := f1.Agents()[i], f2.Agents()[i]
		if a.Pos != b.Pos || a.Heading != b.Heading {
			t.Errorf("run divergence at agent %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestCentroid(t *testing.T) {
	f, _ := New(3) // (0,200), (20,200), (40,200)
	got, err := f.Centroid()
	if err != nil {
		t.Fatalf("Centroid failed: %v", err)
	}
	want := geometry.Vector2D{X: 20, Y: 200}
	if !got.Eq(want) {
		t.Errorf("Centroid() = %v; want %v", got, want)
	}

	f.Agents()[0].Pos = geometry.Vector2D{X: -60, Y: 230}
	got, _ = f.Centroid()
	want = geometry.Vector2D{X: 0, Y: 210}
	if !got.Eq(want) {
		t.Errorf("Centroid() after move = %v; want %v", got, want)
	}
}

func TestAgents_StableOrder(t *testing.T) {
	f, _ := New(5)
	for i := 0; i < 50; i++ {
		if err := f.Update(dt); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	for i, a := range f.Agents() {
		if a.ID != i {
			t.Errorf("agent at index %d has ID %d; insertion order broken", i, a.ID)
		}
	}
}

func TestReset(t *testing.T) {
	f, _ := New(2)
	for i := 0; i < 20; i++ {
		if err := f.Update(dt); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	f.Reset()

	for i, a := range f.Agents() {
		want := geometry.Vector2D{X: 20 * float64(i), Y: 200}
		if !a.Pos.Eq(want) || a.Heading != 0 {
			t.Errorf("agent %d after reset: pos %v heading %v; want %v / 0", i, a.Pos, a.Heading, want)
		}
	}
}

func TestSetTuning(t *testing.T) {
	f, _ := New(1)
	tun := f.Tuning()
	tun.MovementSpeed = 42
	f.SetTuning(tun)

	start := f.Agents()[0].Pos
	if err := f.Update(1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	moved := f.Agents()[0].Pos.DistanceTo(start)
	if !floatEquals(moved, 42) {
		t.Errorf("agent moved %v; want 42 after speed change", moved)
	}
}
