// Package main runs headless encounters: it loads or creates a character,
// generates enemies, plays the player's turns with a simple policy and
// persists the result.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/config"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	name := flag.String("name", "Wanderer", "character to play; created on first use")
	body := flag.Int("body", 6, "body attribute for a new character")
	mind := flag.Int("mind", 6, "mind attribute for a new character")
	reflex := flag.Int("reflex", 6, "reflex attribute for a new character")
	enemies := flag.Int("enemies", 1, "number of enemies per encounter")
	level := flag.Int("level", 0, "enemy level; 0 = the character's level")
	prompt := flag.String("prompt", "", "free-text concept for the generated enemies")
	encounters := flag.Int("encounters", 1, "number of encounters to play in a row")
	maxTurns := flag.Int("max-turns", 100, "abandon an encounter after this many turns")
	seed := flag.Uint64("seed", 0, "dice seed; 0 = crypto randomness")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("loading secrets: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	sim, cleanup, err := initializeSimulator(ctx, cfg, secrets, Seed(*seed), os.Stdout, logger)
	if err != nil {
		logger.Fatal("initializing simulator", zap.Error(err))
	}
	defer cleanup()

	logger.Info("simulator ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("generator", cfg.Generator.Provider),
		zap.Duration("elapsed", time.Since(start)),
	)

	opts := Options{
		Character:  *name,
		Attributes: combatant.Attributes{Body: *body, Mind: *mind, Reflex: *reflex},
		Prompt:     *prompt,
		Enemies:    *enemies,
		Level:      *level,
		MaxTurns:   *maxTurns,
	}
	for i := 0; i < *encounters; i++ {
		out, err := sim.Run(ctx, opts)
		if err != nil {
			logger.Error("encounter failed", zap.Int("encounter", i+1), zap.Error(err))
			return
		}
		logger.Info("encounter finished",
			zap.Int("encounter", i+1),
			zap.String("phase", out.Phase.String()),
			zap.Int("level", out.Character.Level),
		)
	}
}
