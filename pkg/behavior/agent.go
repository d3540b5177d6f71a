// Package behavior implements the flocking update: three local steering
// rules (separation, cohesion, alignment) plus forward motion, applied to a
// fixed population of agents once per tick.
package behavior

import "github.com/flocklab/go-flocking-simulation/pkg/geometry"

// Agent is a single flock member.
//
// Pos is in world coordinates. Heading is in degrees; it is not kept
// normalized between ticks, normalization happens at point of use.
// ID is assigned by the flock constructor, is unique within the flock and
// never changes; it exists only for self-exclusion during neighbor scans.
type Agent struct {
	Pos     geometry.Vector2D
	Heading float64
	ID      int
}
