package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/flocklab/go-flocking-simulation/pkg/simulation"
	"github.com/flocklab/go-flocking-simulation/pkg/telemetry"
)

func main() {
	configFile := flag.String("config", "", "JSON config file (defaults used when empty)")
	schemaFile := flag.String("schema", "config.schema.json", "JSON schema for config validation")
	telemetryPath := flag.String("csv", "", "telemetry CSV output path (overrides config)")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		loaded, err := simulation.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if *telemetryPath != "" {
		cfg.TelemetryPath = *telemetryPath
	}

	rec := telemetry.NewRecorder(cfg.TelemetryPath)

	game, err := simulation.NewGame(cfg, rec)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Flocking")
	runErr := ebiten.RunGame(game)

	// Flush before exiting so a game loop error does not drop the telemetry
	// recorded up to that point.
	if err := rec.Flush(); err != nil {
		if runErr == nil {
			runErr = fmt.Errorf("telemetry flush failed: %w", err)
		} else {
			log.Printf("telemetry flush failed: %v", err)
		}
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
