// Package config provides Viper-based configuration loading for the combat
// engine, its persistence backends and content generators.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/cory-johannsen/arcanum/internal/game/combat"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/reward"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects the character store.
type StorageConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file for the sqlite driver; ":memory:" is allowed.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Generator providers.
const (
	ProviderStatic    = "static"
	ProviderAnthropic = "anthropic"
)

// GeneratorConfig selects and tunes the content generator.
type GeneratorConfig struct {
	// Provider is "static" or "anthropic".
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	MaxTokens int64         `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// ContentDir holds the YAML library used by the static provider.
	ContentDir string `mapstructure:"content_dir"`
}

// RulesConfig holds the stat formula coefficients for one side.
type RulesConfig struct {
	BaseHP                int     `mapstructure:"base_hp"`
	BaseMP                int     `mapstructure:"base_mp"`
	BaseEP                int     `mapstructure:"base_ep"`
	BaseSpeed             int     `mapstructure:"base_speed"`
	HPPerLevel            int     `mapstructure:"hp_per_level"`
	HPPerBody             int     `mapstructure:"hp_per_body"`
	MPPerLevel            int     `mapstructure:"mp_per_level"`
	MPPerMind             int     `mapstructure:"mp_per_mind"`
	EPPerLevel            int     `mapstructure:"ep_per_level"`
	EPPerReflex           int     `mapstructure:"ep_per_reflex"`
	SpeedPerLevel         int     `mapstructure:"speed_per_level"`
	SpeedPerReflex        int     `mapstructure:"speed_per_reflex"`
	PhysicalPowerPerBody  float64 `mapstructure:"physical_power_per_body"`
	MagicPowerPerMind     float64 `mapstructure:"magic_power_per_mind"`
	DefensePerBody        float64 `mapstructure:"defense_per_body"`
	DefensePerReflex      float64 `mapstructure:"defense_per_reflex"`
	DefendingBonusPercent int     `mapstructure:"defending_bonus_percent"`
}

// Rules converts r into calculator rules.
func (r RulesConfig) Rules() combatant.Rules {
	return combatant.Rules{
		Base:                  combatant.Base{HP: r.BaseHP, MP: r.BaseMP, EP: r.BaseEP, Speed: r.BaseSpeed},
		HPPerLevel:            r.HPPerLevel,
		HPPerBody:             r.HPPerBody,
		MPPerLevel:            r.MPPerLevel,
		MPPerMind:             r.MPPerMind,
		EPPerLevel:            r.EPPerLevel,
		EPPerReflex:           r.EPPerReflex,
		SpeedPerLevel:         r.SpeedPerLevel,
		SpeedPerReflex:        r.SpeedPerReflex,
		PhysicalPowerPerBody:  r.PhysicalPowerPerBody,
		MagicPowerPerMind:     r.MagicPowerPerMind,
		DefensePerBody:        r.DefensePerBody,
		DefensePerReflex:      r.DefensePerReflex,
		DefendingBonusPercent: r.DefendingBonusPercent,
	}
}

func rulesConfigFrom(r combatant.Rules) RulesConfig {
	return RulesConfig{
		BaseHP:                r.Base.HP,
		BaseMP:                r.Base.MP,
		BaseEP:                r.Base.EP,
		BaseSpeed:             r.Base.Speed,
		HPPerLevel:            r.HPPerLevel,
		HPPerBody:             r.HPPerBody,
		MPPerLevel:            r.MPPerLevel,
		MPPerMind:             r.MPPerMind,
		EPPerLevel:            r.EPPerLevel,
		EPPerReflex:           r.EPPerReflex,
		SpeedPerLevel:         r.SpeedPerLevel,
		SpeedPerReflex:        r.SpeedPerReflex,
		PhysicalPowerPerBody:  r.PhysicalPowerPerBody,
		MagicPowerPerMind:     r.MagicPowerPerMind,
		DefensePerBody:        r.DefensePerBody,
		DefensePerReflex:      r.DefensePerReflex,
		DefendingBonusPercent: r.DefendingBonusPercent,
	}
}

// Freestyle resolvers.
const (
	FreestyleTable    = "table"
	FreestyleScripted = "scripted"
)

// CombatConfig holds the combat formula coefficients.
type CombatConfig struct {
	Player                 RulesConfig `mapstructure:"player"`
	Enemy                  RulesConfig `mapstructure:"enemy"`
	BasicAttackBase        int         `mapstructure:"basic_attack_base"`
	BasicAttackType        string      `mapstructure:"basic_attack_type"`
	FleeChance             float64     `mapstructure:"flee_chance"`
	InitiativeDie          int         `mapstructure:"initiative_die"`
	SpellScalingFactor     float64     `mapstructure:"spell_scaling_factor"`
	DefaultSpecialCooldown int         `mapstructure:"default_special_cooldown"`
	// Freestyle is "table" or "scripted".
	Freestyle string `mapstructure:"freestyle"`
	// StatusDir optionally overrides the built-in status catalog.
	StatusDir string `mapstructure:"status_dir"`
}

// Engine converts c into engine rules.
func (c CombatConfig) Engine() combat.Config {
	return combat.Config{
		PlayerRules:            c.Player.Rules(),
		EnemyRules:             c.Enemy.Rules(),
		BasicAttackBase:        c.BasicAttackBase,
		BasicAttackType:        c.BasicAttackType,
		FleeChance:             c.FleeChance,
		InitiativeDie:          c.InitiativeDie,
		SpellScalingFactor:     c.SpellScalingFactor,
		DefaultSpecialCooldown: c.DefaultSpecialCooldown,
	}
}

// RewardsConfig holds the reward tiers and progression settings.
type RewardsConfig struct {
	reward.Table `mapstructure:",squash"`
	// PassiveSlotInterval grants a passive slot every N levels.
	PassiveSlotInterval int `mapstructure:"passive_slot_interval"`
	// StartingXPToNextLevel is the first level-up threshold of a new character.
	StartingXPToNextLevel int `mapstructure:"starting_xp_to_next_level"`
	// LootDir holds the per-enemy loot tables.
	LootDir string `mapstructure:"loot_dir"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	Dir              string `mapstructure:"dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// AIConfig holds the HTN domain location.
type AIConfig struct {
	DomainDir string `mapstructure:"domain_dir"`
}

// HostConfig holds settings for the host driving encounters.
type HostConfig struct {
	// EnemyDelay paces consecutive enemy turns.
	EnemyDelay time.Duration `mapstructure:"enemy_delay"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Rewards   RewardsConfig   `mapstructure:"rewards"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	AI        AIConfig        `mapstructure:"ai"`
	Host      HostConfig      `mapstructure:"host"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateGenerator(c.Generator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRewards(c.Rewards); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Host.EnemyDelay < 0 {
		errs = append(errs, "host.enemy_delay must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite], got %q", s.Driver)
	}
}

func validateGenerator(g GeneratorConfig) error {
	var errs []string
	switch g.Provider {
	case ProviderStatic:
		if g.ContentDir == "" {
			errs = append(errs, "generator.content_dir must not be empty for the static provider")
		}
	case ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("generator.provider must be one of [static, anthropic], got %q", g.Provider))
	}
	if g.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("generator.max_tokens must be >= 0, got %d", g.MaxTokens))
	}
	if g.Timeout < 0 {
		errs = append(errs, "generator.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if err := c.Engine().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Freestyle != FreestyleTable && c.Freestyle != FreestyleScripted {
		errs = append(errs, fmt.Sprintf("combat.freestyle must be one of [table, scripted], got %q", c.Freestyle))
	}
	if c.Player.BaseHP < 1 || c.Enemy.BaseHP < 1 {
		errs = append(errs, "combat.player.base_hp and combat.enemy.base_hp must be >= 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRewards(r RewardsConfig) error {
	var errs []string
	if err := r.Table.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if r.PassiveSlotInterval < 1 {
		errs = append(errs, fmt.Sprintf("rewards.passive_slot_interval must be >= 1, got %d", r.PassiveSlotInterval))
	}
	if r.StartingXPToNextLevel < 1 {
		errs = append(errs, fmt.Sprintf("rewards.starting_xp_to_next_level must be >= 1, got %d", r.StartingXPToNextLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARCANUM_ prefix
	v.SetEnvPrefix("ARCANUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default on v. Combat and reward defaults come
// from the engine's own standard rules.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arcanum")
	v.SetDefault("database.password", "arcanum")
	v.SetDefault("database.name", "arcanum")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "arcanum.db")

	v.SetDefault("generator.provider", ProviderStatic)
	v.SetDefault("generator.model", "claude-sonnet-4-5")
	v.SetDefault("generator.max_tokens", 1024)
	v.SetDefault("generator.timeout", "30s")
	v.SetDefault("generator.content_dir", "content/library")

	cc := combat.DefaultConfig()
	setRulesDefaults(v, "combat.player", rulesConfigFrom(cc.PlayerRules))
	setRulesDefaults(v, "combat.enemy", rulesConfigFrom(cc.EnemyRules))
	v.SetDefault("combat.basic_attack_base", cc.BasicAttackBase)
	v.SetDefault("combat.basic_attack_type", cc.BasicAttackType)
	v.SetDefault("combat.flee_chance", cc.FleeChance)
	v.SetDefault("combat.initiative_die", cc.InitiativeDie)
	v.SetDefault("combat.spell_scaling_factor", cc.SpellScalingFactor)
	v.SetDefault("combat.default_special_cooldown", cc.DefaultSpecialCooldown)
	v.SetDefault("combat.freestyle", FreestyleScripted)
	v.SetDefault("combat.status_dir", "content/status")

	rt := reward.DefaultTable()
	tiers := make([]map[string]any, len(rt.Tiers))
	for i, t := range rt.Tiers {
		tiers[i] = map[string]any{
			"name":      t.Name,
			"max_level": t.MaxLevel,
			"xp":        t.XP,
			"gold":      map[string]any{"min": t.Gold.Min, "max": t.Gold.Max},
			"essence":   map[string]any{"min": t.Essence.Min, "max": t.Essence.Max},
		}
	}
	v.SetDefault("rewards.tiers", tiers)
	v.SetDefault("rewards.elite_xp_multiplier", rt.EliteXPMultiplier)
	v.SetDefault("rewards.elite_gold_multiplier", rt.EliteGoldMultiplier)
	v.SetDefault("rewards.elite_essence_multiplier", rt.EliteEssenceMultiplier)
	v.SetDefault("rewards.chest_chance", rt.ChestChance)
	v.SetDefault("rewards.elite_chests", rt.EliteChests)
	v.SetDefault("rewards.passive_slot_interval", 5)
	v.SetDefault("rewards.starting_xp_to_next_level", 100)
	v.SetDefault("rewards.loot_dir", "content/loot")

	v.SetDefault("scripting.dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("ai.domain_dir", "content/ai")

	v.SetDefault("host.enemy_delay", "750ms")
}

func setRulesDefaults(v *viper.Viper, prefix string, r RulesConfig) {
	set := func(key string, val any) { v.SetDefault(prefix+"."+key, val) }
	set("base_hp", r.BaseHP)
	set("base_mp", r.BaseMP)
	set("base_ep", r.BaseEP)
	set("base_speed", r.BaseSpeed)
	set("hp_per_level", r.HPPerLevel)
	set("hp_per_body", r.HPPerBody)
	set("mp_per_level", r.MPPerLevel)
	set("mp_per_mind", r.MPPerMind)
	set("ep_per_level", r.EPPerLevel)
	set("ep_per_reflex", r.EPPerReflex)
	set("speed_per_level", r.SpeedPerLevel)
	set("speed_per_reflex", r.SpeedPerReflex)
	set("physical_power_per_body", r.PhysicalPowerPerBody)
	set("magic_power_per_mind", r.MagicPowerPerMind)
	set("defense_per_body", r.DefensePerBody)
	set("defense_per_reflex", r.DefensePerReflex)
	set("defending_bonus_percent", r.DefendingBonusPercent)
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: the result passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config.Default: %v", err))
	}
	return cfg
}

// Secrets holds credentials that never live in the YAML file.
type Secrets struct {
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// LoadSecrets reads Secrets from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parsing secrets: %w", err)
	}
	return s, nil
}
