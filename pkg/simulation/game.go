package simulation

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/flocklab/go-flocking-simulation/pkg/behavior"
	"github.com/flocklab/go-flocking-simulation/pkg/geometry"
	"github.com/flocklab/go-flocking-simulation/pkg/telemetry"
	"github.com/flocklab/go-flocking-simulation/pkg/ui"
)

// agentSprite is the shared 1x4 sliver every agent is drawn as.
var agentSprite *ebiten.Image

func init() {
	agentSprite = ebiten.NewImage(1, 4)
	agentSprite.Fill(color.White)
}

// Game is the windowed driver. It owns timing (wall-clock frame deltas),
// the repetition count of simulation steps per frame, the camera that
// follows the flock centroid, and the tuning panel.
type Game struct {
	cfg   *Config
	flock *behavior.Flock

	panel            *ui.Panel
	widgetSeparation *ui.Slider
	widgetCohesion   *ui.Slider
	widgetAlignment  *ui.Slider
	widgetSpeed      *ui.Slider
	widgetRadius     *ui.Slider
	widgetUpdates    *ui.Slider
	widgetCentroid   *ui.Checkbox

	recorder *telemetry.Recorder

	lastFrame time.Time
	tick      int
	simTime   float64

	// Rolling averages in ms, for the stats overlay.
	updateAvg float64
	drawAvg   float64
}

// NewGame builds the driver around a fresh flock. rec may be nil to disable
// telemetry recording.
func NewGame(cfg *Config, rec *telemetry.Recorder) (*Game, error) {
	flock, err := behavior.NewWithTuning(cfg.NumAgents, cfg.Tuning())
	if err != nil {
		return nil, fmt.Errorf("failed to create flock: %w", err)
	}

	panel := ui.NewPanel(10, 10, 220, float64(cfg.WindowHeight)-20, "Tuning")

	panel.AddSection("Steering (deg/s)")
	widgetSeparation := panel.AddSlider("Separation", 0, 360, cfg.SeparationForce)
	widgetCohesion := panel.AddSlider("Cohesion", 0, 360, cfg.CohesionForce)
	widgetAlignment := panel.AddSlider("Alignment", 0, 360, cfg.AlignmentForce)

	panel.AddSection("Motion")
	widgetSpeed := panel.AddSlider("Speed", 0, 100, cfg.MovementSpeed)
	widgetRadius := panel.AddSlider("Separation Radius", 1, 100, cfg.SeparationRadius)

	panel.AddSection("Driver")
	widgetUpdates := panel.AddSlider("Updates / Frame", 1, 10, float64(cfg.UpdatesPerFrame))
	widgetCentroid := panel.AddCheckbox("Show Centroid", false)
	panel.AddButton("Reset Flock", flock.Reset)

	return &Game{
		cfg:              cfg,
		flock:            flock,
		panel:            panel,
		widgetSeparation: widgetSeparation,
		widgetCohesion:   widgetCohesion,
		widgetAlignment:  widgetAlignment,
		widgetSpeed:      widgetSpeed,
		widgetRadius:     widgetRadius,
		widgetUpdates:    widgetUpdates,
		widgetCentroid:   widgetCentroid,
		recorder:         rec,
	}, nil
}

// Flock exposes the simulated population for inspection.
func (g *Game) Flock() *behavior.Flock {
	return g.flock
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Wall-clock delta since the previous frame; the first frame gets zero.
	now := time.Now()
	dt := 0.0
	if !g.lastFrame.IsZero() {
		dt = now.Sub(g.lastFrame).Seconds()
	}
	g.lastFrame = now

	// Push slider values into the flock before stepping.
	t := g.flock.Tuning()
	t.SeparationForce = g.widgetSeparation.Value
	t.CohesionForce = g.widgetCohesion.Value
	t.AlignmentForce = g.widgetAlignment.Value
	t.MovementSpeed = g.widgetSpeed.Value
	t.SeparationRadius = g.widgetRadius.Value
	g.flock.SetTuning(t)

	updates := int(g.widgetUpdates.Value)
	for i := 0; i < updates; i++ {
		if err := g.flock.Update(dt); err != nil {
			return fmt.Errorf("simulation step failed: %w", err)
		}
		g.tick++
		g.simTime += dt
	}

	if g.recorder != nil {
		stats, err := telemetry.Sample(g.tick, g.simTime, g.flock)
		if err != nil {
			return fmt.Errorf("telemetry sample failed: %w", err)
		}
		g.recorder.Record(stats)
	}

	return nil
}

// camera returns the world-to-screen transform: centered on the flock
// centroid, scaled by the configured zoom.
func (g *Game) camera() ebiten.GeoM {
	center, err := g.flock.Centroid()
	if err != nil {
		center = geometry.Vector2D{}
	}

	var m ebiten.GeoM
	m.Translate(-center.X, -center.Y)
	m.Scale(g.cfg.CameraZoom, g.cfg.CameraZoom)
	m.Translate(float64(g.cfg.WindowWidth)/2, float64(g.cfg.WindowHeight)/2)
	return m
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	cam := g.camera()

	for _, a := range g.flock.Agents() {
		op := &ebiten.DrawImageOptions{}
		// Center the sliver, rotate by heading, place in the world.
		op.GeoM.Translate(-0.5, -2)
		op.GeoM.Rotate(geometry.DegreesToRadians(a.Heading))
		op.GeoM.Translate(a.Pos.X, a.Pos.Y)
		op.GeoM.Concat(cam)
		screen.DrawImage(agentSprite, op)
	}

	if g.widgetCentroid.Value {
		if center, err := g.flock.Centroid(); err == nil {
			sx, sy := cam.Apply(center.X, center.Y)
			vector.StrokeCircle(screen, float32(sx), float32(sy), 4, 1,
				color.RGBA{R: 255, G: 200, B: 50, A: 255}, true)
		}
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nAgents: %d\nTicks: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.flock.Len(),
		g.tick,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.WindowWidth-150, 10)
}

func (g *Game) Layout(w, h int) (int, int) {
	return g.cfg.WindowWidth, g.cfg.WindowHeight
}
