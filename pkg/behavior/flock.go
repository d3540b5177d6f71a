package behavior

import (
	"errors"
	"fmt"
	"math"

	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
)

var (
	// ErrEmptyFlock is returned when an aggregate (centroid, mean heading)
	// is requested from a flock with no agents.
	ErrEmptyFlock = errors.New("flock has no agents")
	// ErrNegativeDelta is returned by Update when the time delta is negative.
	ErrNegativeDelta = errors.New("negative delta time")
)

// Tuning controls the steering rules. The three forces are in degrees per
// second, MovementSpeed in world units per second, SeparationRadius in world
// units. Spawn fields control the initial row layout.
type Tuning struct {
	SeparationForce  float64
	CohesionForce    float64
	AlignmentForce   float64
	MovementSpeed    float64
	SeparationRadius float64

	SpawnSpacing float64
	SpawnRow     float64
}

// DefaultTuning returns the classic constants: a strong separation push,
// weaker cohesion and alignment, and a gentle forward speed.
func DefaultTuning() Tuning {
	return Tuning{
		SeparationForce:  90,
		CohesionForce:    60,
		AlignmentForce:   50,
		MovementSpeed:    10,
		SeparationRadius: 20,
		SpawnSpacing:     20,
		SpawnRow:         200,
	}
}

// Flock owns an ordered, fixed-size population of agents and the per-tick
// update algorithm. The member order is insertion order and never changes.
type Flock struct {
	agents []*Agent
	tuning Tuning

	// Reusable bearing buffer for the separation scan.
	scratch []float64
}

// New creates a flock of n agents with the default tuning.
func New(n int) (*Flock, error) {
	return NewWithTuning(n, DefaultTuning())
}

// NewWithTuning creates a flock of n agents, n >= 1. Agents are placed
// evenly spaced along one row with heading zero; IDs follow insertion order.
func NewWithTuning(n int, t Tuning) (*Flock, error) {
	if n < 1 {
		return nil, fmt.Errorf("population must be at least 1, got %d: %w", n, ErrEmptyFlock)
	}
	f := &Flock{
		agents: make([]*Agent, n),
		tuning: t,
	}
	for i := range f.agents {
		f.agents[i] = &Agent{
			Pos: geometry.Vector2D{X: t.SpawnSpacing * float64(i), Y: t.SpawnRow},
			ID:  i,
		}
	}
	return f, nil
}

// Update advances the simulation by dt seconds of simulated time.
//
// The four phases run in strict sequence over the whole population:
// separation, cohesion, alignment, movement. Later phases read headings
// produced by earlier ones, so the ordering is part of the contract. Each
// phase clamps its own heading correction independently; after one call an
// agent's heading has changed by at most the sum of the three per-phase
// bounds, and its position by at most MovementSpeed*dt.
func (f *Flock) Update(dt float64) error {
	if len(f.agents) == 0 {
		return ErrEmptyFlock
	}
	if dt < 0 {
		return fmt.Errorf("delta time %v: %w", dt, ErrNegativeDelta)
	}

	f.separate(dt)
	f.cohere(dt)
	f.align(dt)
	f.move(dt)
	return nil
}

// separate steers each agent away from the mean bearing of all neighbors
// closer than SeparationRadius. Agents with no neighbors in range keep
// their heading. The mean is taken over raw bearing angles, not unit
// vectors, so widely spread neighbor bearings can partially cancel.
func (f *Flock) separate(dt float64) {
	radiusSq := f.tuning.SeparationRadius * f.tuning.SeparationRadius
	maxDelta := f.tuning.SeparationForce * dt

	for _, a := range f.agents {
		bearings := f.scratch[:0]
		for _, other := range f.agents {
			if other.ID == a.ID {
				continue
			}
			if a.Pos.DistanceSquaredTo(other.Pos) < radiusSq {
				bearings = append(bearings, geometry.Bearing(a.Pos, other.Pos))
			}
		}
		f.scratch = bearings

		if len(bearings) == 0 {
			continue
		}
		sum := 0.0
		for _, b := range bearings {
			sum += b
		}
		target := geometry.OppositeAngle(sum / float64(len(bearings)))
		a.Heading = geometry.SteeringNudge(a.Heading, target, maxDelta)
	}
}

// cohere steers every agent toward the flock centroid. The centroid is
// computed once, before any heading changes, over current positions.
func (f *Flock) cohere(dt float64) {
	center := f.centroid()
	maxDelta := f.tuning.CohesionForce * dt

	for _, a := range f.agents {
		// An agent within Epsilon of the centroid has no defined bearing to
		// it; its heading stays put.
		if a.Pos.DistanceSquaredTo(center) < geometry.Epsilon*geometry.Epsilon {
			continue
		}
		a.Heading = geometry.SteeringNudge(a.Heading, geometry.Bearing(a.Pos, center), maxDelta)
	}
}

// align steers every agent toward the arithmetic mean of all current
// headings, including the corrections applied by the earlier phases.
func (f *Flock) align(dt float64) {
	sum := 0.0
	for _, a := range f.agents {
		sum += a.Heading
	}
	mean := sum / float64(len(f.agents))
	maxDelta := f.tuning.AlignmentForce * dt

	for _, a := range f.agents {
		a.Heading = geometry.SteeringNudge(a.Heading, mean, maxDelta)
	}
}

// move integrates each position along its fully updated heading.
func (f *Flock) move(dt float64) {
	step := f.tuning.MovementSpeed * dt
	for _, a := range f.agents {
		rad := geometry.DegreesToRadians(a.Heading)
		a.Pos = a.Pos.Add(geometry.Vector2D{
			X: math.Cos(rad) * step,
			Y: math.Sin(rad) * step,
		})
	}
}

// centroid assumes len(f.agents) >= 1; callers inside Update guarantee it.
func (f *Flock) centroid() geometry.Vector2D {
	var sum geometry.Vector2D
	for _, a := range f.agents {
		sum = sum.Add(a.Pos)
	}
	c, _ := sum.Div(float64(len(f.agents)))
	return c
}

// Centroid returns the arithmetic mean position over all agents.
func (f *Flock) Centroid() (geometry.Vector2D, error) {
	if len(f.agents) == 0 {
		return geometry.Vector2D{}, ErrEmptyFlock
	}
	return f.centroid(), nil
}

// Agents returns the members in stable insertion order. The slice is owned
// by the flock; callers must treat it as read-only.
func (f *Flock) Agents() []*Agent {
	return f.agents
}

// Len returns the population size.
func (f *Flock) Len() int {
	return len(f.agents)
}

// Tuning returns the current steering constants.
func (f *Flock) Tuning() Tuning {
	return f.tuning
}

// SetTuning replaces the steering constants. Safe between ticks; must not
// be called while Update is running.
func (f *Flock) SetTuning(t Tuning) {
	f.tuning = t
}

// Reset puts every agent back on its spawn slot with heading zero.
func (f *Flock) Reset() {
	for i, a := range f.agents {
		a.Pos = geometry.Vector2D{X: f.tuning.SpawnSpacing * float64(i), Y: f.tuning.SpawnRow}
		a.Heading = 0
	}
}
