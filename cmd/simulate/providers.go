package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/config"
	"github.com/cory-johannsen/arcanum/internal/content"
	"github.com/cory-johannsen/arcanum/internal/game/ai"
	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combat"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
	"github.com/cory-johannsen/arcanum/internal/game/reward"
	"github.com/cory-johannsen/arcanum/internal/game/status"
	"github.com/cory-johannsen/arcanum/internal/gameserver"
	"github.com/cory-johannsen/arcanum/internal/scripting"
	"github.com/cory-johannsen/arcanum/internal/storage/postgres"
	"github.com/cory-johannsen/arcanum/internal/storage/sqlite"
)

// characterStore is what the simulator needs from a persistence backend.
type characterStore interface {
	gameserver.CharacterStore
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	GetByName(ctx context.Context, name string) (*character.Character, error)
}

// Seed selects a deterministic dice source; zero means crypto randomness.
type Seed uint64

// providerSet builds everything the simulator needs from a Config.
var providerSet = wire.NewSet(
	provideSource,
	provideRoller,
	provideStatusEngine,
	provideDistributor,
	provideScripts,
	providePlanner,
	provideFreestyle,
	provideEngine,
	combat.NewRegistry,
	provideGenerator,
	provideStore,
	provideHandler,
	newSimulator,
)

func provideSource(seed Seed) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(uint64(seed))
}

func provideRoller(src dice.Source, logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(src, logger)
}

func provideStatusEngine(cfg config.Config, src dice.Source, logger *zap.Logger) (*status.Engine, error) {
	catalog := status.DefaultCatalog()
	if dir := cfg.Combat.StatusDir; dir != "" {
		var err error
		if catalog, err = status.LoadCatalog(dir); err != nil {
			return nil, fmt.Errorf("loading status catalog: %w", err)
		}
	}
	return status.NewEngine(catalog, src, logger), nil
}

func provideDistributor(cfg config.Config, src dice.Source, logger *zap.Logger) (*reward.Distributor, error) {
	var loot map[string]reward.LootTable
	if dir := cfg.Rewards.LootDir; dir != "" {
		var err error
		if loot, err = reward.LoadLootTables(dir); err != nil {
			return nil, fmt.Errorf("loading loot tables: %w", err)
		}
	}
	return reward.NewDistributor(cfg.Rewards.Table, loot, src, logger), nil
}

// provideScripts loads <dir>/global as the fallback VM and every other
// subdirectory as a scope named after it.
func provideScripts(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, logger)
	dir := cfg.Scripting.Dir
	if dir == "" {
		return mgr, mgr.Close, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading script root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Name() == "global" {
			err = mgr.LoadGlobal(path, cfg.Scripting.InstructionLimit)
		} else {
			err = mgr.LoadScope(e.Name(), path, cfg.Scripting.InstructionLimit)
		}
		if err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	return mgr, mgr.Close, nil
}

func providePlanner(cfg config.Config, scripts *scripting.Manager) (*ai.Registry, error) {
	reg := ai.NewRegistry()
	if cfg.AI.DomainDir == "" {
		return reg, nil
	}
	domains, err := ai.LoadDomains(cfg.AI.DomainDir)
	if err != nil {
		return nil, err
	}
	for _, d := range domains {
		if err := reg.Register(d, scripts); err != nil {
			return nil, fmt.Errorf("registering AI domain %q: %w", d.ID, err)
		}
	}
	return reg, nil
}

func provideFreestyle(cfg config.Config, scripts *scripting.Manager, roller *dice.Roller, logger *zap.Logger) combat.FreestyleResolver {
	table := combat.NewTableFreestyle(roller)
	if cfg.Combat.Freestyle != config.FreestyleScripted {
		return table
	}
	return combat.NewScriptedFreestyle(scripts, scripting.GlobalScope, table, logger)
}

func provideEngine(
	cfg config.Config,
	st *status.Engine,
	dist *reward.Distributor,
	planner *ai.Registry,
	freestyle combat.FreestyleResolver,
	roller *dice.Roller,
	logger *zap.Logger,
) *combat.Engine {
	return combat.NewEngine(cfg.Combat.Engine(), st, dist, planner, freestyle, roller, logger)
}

func provideGenerator(cfg config.Config, secrets config.Secrets, src dice.Source, logger *zap.Logger) (content.Generator, error) {
	g := cfg.Generator
	switch g.Provider {
	case config.ProviderAnthropic:
		gen, err := content.NewAnthropicGenerator(secrets.AnthropicAPIKey, content.AnthropicConfig{
			Model:     g.Model,
			MaxTokens: g.MaxTokens,
			Timeout:   g.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		lib, err := content.LoadLibrary(g.ContentDir)
		if err != nil {
			return nil, err
		}
		return content.NewStaticGenerator(lib, src, logger), nil
	}
}

func provideStore(ctx context.Context, cfg config.Config) (characterStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.RequireSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewCharacterRepository(pool), pool.Close, nil
	default:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

func provideHandler(
	cfg config.Config,
	engine *combat.Engine,
	registry *combat.Registry,
	generator content.Generator,
	store characterStore,
	logger *zap.Logger,
) *gameserver.EncounterHandler {
	return gameserver.NewEncounterHandler(engine, registry, generator, store, gameserver.EncounterConfig{
		EnemyDelay:          cfg.Host.EnemyDelay,
		PassiveSlotInterval: cfg.Rewards.PassiveSlotInterval,
	}, logger)
}
