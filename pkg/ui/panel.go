package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is the common surface of everything a panel can host.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
}

type panelEntry struct {
	widget  Widget
	label   string
	section bool // section header rows carry no widget
}

// Panel stacks widgets vertically with section headers and labels.
// Widgets are positioned once at Add time; the panel does not scroll.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string

	entries []panelEntry
	nextY   float64

	BGColor     color.RGBA
	BorderColor color.RGBA
}

// NewPanel creates an empty panel at the given screen position.
func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       title,
		nextY:       y + 30,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection adds a header row.
func (p *Panel) AddSection(title string) {
	p.entries = append(p.entries, panelEntry{label: title, section: true})
	p.nextY += 25
}

// AddSlider adds a labeled slider and returns it for value reads.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, p.nextY+18, p.Width-20, label, min, max, value)
	p.entries = append(p.entries, panelEntry{widget: s, label: label})
	p.nextY += 38
	return s
}

// AddCheckbox adds a labeled checkbox and returns it.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, p.nextY+4, label, value)
	p.entries = append(p.entries, panelEntry{widget: c, label: label})
	p.nextY += 28
	return c
}

// AddButton adds a full-width button with a click callback.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, p.nextY+4, p.Width-20, 24, label, onClick)
	p.entries = append(p.entries, panelEntry{widget: b})
	p.nextY += 34
	return b
}

// Update forwards input handling to every widget.
func (p *Panel) Update() {
	for _, e := range p.entries {
		if e.widget != nil {
			e.widget.Update()
		}
	}
}

// Draw renders the panel chrome, then every entry top to bottom.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + 30
	for _, e := range p.entries {
		switch {
		case e.section:
			vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, e.label, int(p.X+10), int(y+3))
			y += 25
		default:
			switch w := e.widget.(type) {
			case *Slider:
				ebitenutil.DebugPrintAt(screen,
					fmt.Sprintf("%s: %.2f", e.label, w.Value), int(p.X+10), int(y))
				w.Draw(screen)
				y += 38
			case *Checkbox:
				w.Draw(screen)
				ebitenutil.DebugPrintAt(screen, e.label, int(w.X+w.Size+8), int(w.Y))
				y += 28
			case *Button:
				w.Draw(screen)
				y += 34
			}
		}
	}
}
