// Package ui provides the small set of immediate-mode widgets used by the
// simulation window: sliders, checkboxes, buttons and the panel that hosts
// them.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal drag slider for a float value in [Min, Max].
// A drag that starts on the track keeps following the cursor until the
// button is released, even after the cursor leaves the hit area.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64

	dragging bool
}

// NewSlider creates a slider with the default height.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label: label,
		Value: value,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     10,
	}
}

// Update tracks mouse drags on the slider.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.dragging = false
		return
	}
	mx, my := ebiten.CursorPosition()
	if !s.dragging && !s.hit(float64(mx), float64(my)) {
		return
	}
	s.dragging = true
	s.setFromCursor(float64(mx))
}

// hit reports whether the point is on the track, with a little vertical
// slack for the knob.
func (s *Slider) hit(mx, my float64) bool {
	return mx >= s.X && mx <= s.X+s.W && my >= s.Y-4 && my <= s.Y+s.H+4
}

// setFromCursor maps a cursor x position onto the value range, clamped to
// the ends of the track.
func (s *Slider) setFromCursor(mx float64) {
	ratio := (mx - s.X) / s.W
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	s.Value = s.Min + ratio*(s.Max-s.Min)
}

// Draw renders the track, the filled portion and the knob.
func (s *Slider) Draw(screen *ebiten.Image) {
	cy := float32(s.Y + s.H/2)
	ratio := float32((s.Value - s.Min) / (s.Max - s.Min))

	vector.FillRect(screen, float32(s.X), cy-2, float32(s.W), 4,
		color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), cy-2, float32(s.W)*ratio, 4,
		color.RGBA{R: 160, G: 160, B: 170, A: 255}, true)
	vector.FillCircle(screen, float32(s.X)+float32(s.W)*ratio, cy, 5,
		color.RGBA{R: 220, G: 220, B: 220, A: 255}, true)
}
