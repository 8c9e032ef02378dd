package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedResponse is returned when the model's reply holds no usable descriptor.
var ErrMalformedResponse = errors.New("content: malformed generator response")

// MessageCreator is the slice of the Anthropic messages API the generator uses.
// *anthropic.MessageService satisfies it.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicConfig configures AnthropicGenerator.
type AnthropicConfig struct {
	Model     string
	MaxTokens int64
	// Timeout bounds one generation call; 0 means no bound beyond ctx.
	Timeout time.Duration
}

// AnthropicGenerator asks a Claude model for descriptors as JSON.
type AnthropicGenerator struct {
	messages MessageCreator
	cfg      AnthropicConfig
	logger   *zap.Logger
}

// NewAnthropicGenerator creates a generator backed by the Anthropic API.
// Extra options (base URL, HTTP client, retries) are passed to the client.
//
// Precondition: apiKey must be non-empty; logger must not be nil.
func NewAnthropicGenerator(apiKey string, cfg AnthropicConfig, logger *zap.Logger, opts ...option.RequestOption) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("content: anthropic API key must not be empty")
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return NewAnthropicGeneratorWith(&client.Messages, cfg, logger), nil
}

// NewAnthropicGeneratorWith creates a generator over an existing messages client.
//
// Precondition: messages and logger must not be nil.
func NewAnthropicGeneratorWith(messages MessageCreator, cfg AnthropicConfig, logger *zap.Logger) *AnthropicGenerator {
	if messages == nil || logger == nil {
		panic("content.NewAnthropicGeneratorWith: messages and logger must not be nil")
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &AnthropicGenerator{messages: messages, cfg: cfg, logger: logger}
}

// Generate requests one descriptor of kind for a player of the given level.
//
// Postcondition: on nil error the descriptor passes Validate and every
// entity carries an ID.
func (g *AnthropicGenerator) Generate(ctx context.Context, level int, kind Kind, prompt string) (Descriptor, error) {
	if !kind.Valid() {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: g.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt(kind)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(level, kind, prompt))),
		},
	})
	if err != nil {
		return Descriptor{}, fmt.Errorf("content: generating %s: %w", kind, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	d, err := decodeDescriptor(kind, text.String())
	if err != nil {
		g.logger.Warn("generator response rejected",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return Descriptor{}, err
	}
	g.logger.Info("content generated",
		zap.String("kind", string(kind)),
		zap.String("name", d.Name()),
		zap.Int("level", level),
		zap.Duration("elapsed", time.Since(start)),
	)
	return d, nil
}

var kindSchemas = map[Kind]string{
	KindSpell: `{"name": string, "description": string, "manaCost": int, "damage": int, "damageType": string,
 "scalesWith": "body"|"mind"|"reflex"|"", "selfTargeted": bool,
 "statusEffectInflict": {"name": string, "chance": 0-100, "duration": int, "magnitude": int} | null,
 "resourceCost": [{"itemId": string, "quantity": int}]}`,
	KindEnemy: `{"name": string, "description": string, "level": int,
 "attributes": {"body": int, "mind": int, "reflex": int},
 "weakness": string, "resistance": string, "specialAbilityName": string,
 "special": {"name": string, "damage": int, "damageType": string, "cooldown": int,
   "statusEffectInflict": {"name": string, "chance": 0-100, "duration": int, "magnitude": int} | null} | null,
 "droppedResources": [{"item_id": string, "quantity": int}], "elite": bool,
 "lootTableId": string, "aiDomain": string}`,
	KindAbility: `{"name": string, "description": string, "epCost": int,
 "effectType": "damage"|"heal"|"buff"|"debuff", "magnitude": int, "damageType": string, "voice": bool,
 "targetStatusEffect": {"name": string, "chance": 0-100, "duration": int, "magnitude": int} | null}`,
	KindConsumable: `{"id": string, "name": string, "description": string,
 "effectType": "RestoreHP"|"RestoreMP"|"RestoreEP"|"Cure"|"Buff"|"Damage", "magnitude": int,
 "statusToCure": string, "buffToApply": {"name": string, "chance": 0-100, "duration": int, "magnitude": int} | null}`,
	KindEquipment: `{"name": string, "slot": "head"|"body"|"hands"|"weapon"|"trinket",
 "bonuses": {"hp": int, "mp": int, "ep": int, "speed": int, "body": int, "mind": int, "reflex": int,
   "defense": int, "reflection_percent": int}}`,
}

const statusNames = "Burn, Poison, Bleed, Stun, Freeze, Silence, Root, StrengthenBody, StrengthenMind, " +
	"StrengthenReflex, WeakenBody, WeakenMind, WeakenReflex, TempSpeedUp, TempMaxHPUp, Regeneration, DamageReflection"

func systemPrompt(kind Kind) string {
	return "You design content for a turn-based fantasy RPG. Reply with a single JSON object and nothing else.\n" +
		"Schema for a " + string(kind) + ":\n" + kindSchemas[kind] + "\n" +
		"Status effect names must be one of: " + statusNames + ".\n" +
		"Keep numbers modest and balanced for the requested level."
}

func userPrompt(level int, kind Kind, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Sprintf("Create a %s for a level %d player.", kind, level)
	}
	return fmt.Sprintf("Create a %s for a level %d player. Concept: %s", kind, level, prompt)
}

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON returns the outermost JSON object in text, looking inside a
// Markdown code fence first.
func extractJSON(text string) (string, bool) {
	if m := fence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func decodeDescriptor(kind Kind, text string) (Descriptor, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}
	d := Descriptor{Kind: kind}
	var target any
	switch kind {
	case KindSpell:
		d.Spell = &Spell{}
		target = d.Spell
	case KindEnemy:
		d.Enemy = &Enemy{}
		target = d.Enemy
	case KindAbility:
		d.Ability = &Ability{}
		target = d.Ability
	case KindConsumable:
		d.Consumable = &Consumable{}
		target = d.Consumable
	case KindEquipment:
		d.Equipment = &Equipment{}
		target = d.Equipment
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	assignIDs(&d)
	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return d, nil
}

// assignIDs fills missing IDs. Consumable IDs double as inventory keys, so
// they are derived from the name rather than random.
func assignIDs(d *Descriptor) {
	switch {
	case d.Spell != nil && d.Spell.ID == "":
		d.Spell.ID = uuid.NewString()
	case d.Enemy != nil && d.Enemy.ID == "":
		d.Enemy.ID = uuid.NewString()
	case d.Ability != nil && d.Ability.ID == "":
		d.Ability.ID = uuid.NewString()
	case d.Equipment != nil && d.Equipment.ID == "":
		d.Equipment.ID = uuid.NewString()
	case d.Consumable != nil && d.Consumable.ID == "":
		d.Consumable.ID = Slug(d.Consumable.Name)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and joins its alphanumeric runs with underscores.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
}
