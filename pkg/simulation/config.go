// Package simulation wires the flock core to its drivers: configuration
// loading, the windowed ebiten game loop, and the camera that follows the
// flock.
package simulation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/flocklab/go-flocking-simulation/pkg/behavior"
)

type Config struct {
	// Window
	WindowWidth  int     `json:"windowWidth"`
	WindowHeight int     `json:"windowHeight"`
	CameraZoom   float64 `json:"cameraZoom"`

	// Population
	NumAgents int `json:"numAgents"`

	// Driver: how many simulation steps per rendered frame.
	UpdatesPerFrame int `json:"updatesPerFrame"`

	// Steering
	SeparationForce  float64 `json:"separationForce"`
	CohesionForce    float64 `json:"cohesionForce"`
	AlignmentForce   float64 `json:"alignmentForce"`
	MovementSpeed    float64 `json:"movementSpeed"`
	SeparationRadius float64 `json:"separationRadius"`

	// Spawn layout
	SpawnSpacing float64 `json:"spawnSpacing"`
	SpawnRow     float64 `json:"spawnRow"`

	// Telemetry CSV output path; empty disables recording.
	TelemetryPath string `json:"telemetryPath"`

	// Websocket listen address for the headless driver; empty disables it.
	ListenAddr string `json:"listenAddr"`
}

func DefaultConfig() *Config {
	return &Config{
		WindowWidth:      800,
		WindowHeight:     600,
		CameraZoom:       2.0,
		NumAgents:        20,
		UpdatesPerFrame:  3,
		SeparationForce:  90,
		CohesionForce:    60,
		AlignmentForce:   50,
		MovementSpeed:    10,
		SeparationRadius: 20,
		SpawnSpacing:     20,
		SpawnRow:         200,
		TelemetryPath:    "",
		ListenAddr:       "",
	}
}

// Tuning maps the steering fields into the core's tuning struct.
func (c *Config) Tuning() behavior.Tuning {
	return behavior.Tuning{
		SeparationForce:  c.SeparationForce,
		CohesionForce:    c.CohesionForce,
		AlignmentForce:   c.AlignmentForce,
		MovementSpeed:    c.MovementSpeed,
		SeparationRadius: c.SeparationRadius,
		SpawnSpacing:     c.SpawnSpacing,
		SpawnRow:         c.SpawnRow,
	}
}

// Validate applies the semantic checks the schema cannot express alone.
func (c *Config) Validate() error {
	if c.NumAgents < 1 {
		return fmt.Errorf("numAgents must be at least 1, got %d", c.NumAgents)
	}
	if c.UpdatesPerFrame < 1 {
		return fmt.Errorf("updatesPerFrame must be at least 1, got %d", c.UpdatesPerFrame)
	}
	if c.SeparationForce < 0 || c.CohesionForce < 0 || c.AlignmentForce < 0 {
		return fmt.Errorf("steering forces must be non-negative")
	}
	if c.SeparationRadius <= 0 {
		return fmt.Errorf("separationRadius must be positive, got %v", c.SeparationRadius)
	}
	if c.CameraZoom <= 0 {
		return fmt.Errorf("cameraZoom must be positive, got %v", c.CameraZoom)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file and validates it against
// the schema before the semantic checks run.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Start from defaults so omitted optional fields keep sane values.
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
