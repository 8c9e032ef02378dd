package reward

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/character"
	"github.com/cory-johannsen/arcanum/internal/game/combatant"
	"github.com/cory-johannsen/arcanum/internal/game/dice"
)

// Grant is everything awarded for one defeated enemy.
type Grant struct {
	EnemyID   string
	EnemyName string
	Tier      string
	Elite     bool
	XP        int
	Gold      int
	Essence   int
	Items     []combatant.ResourceDrop
	Chests    []character.LootChest
}

// Add folds o into g's totals. Enemy identity fields are left unchanged.
func (g *Grant) Add(o Grant) {
	g.XP += o.XP
	g.Gold += o.Gold
	g.Essence += o.Essence
	g.Items = append(g.Items, o.Items...)
	g.Chests = append(g.Chests, o.Chests...)
}

// Distributor rolls and applies rewards. It holds no per-encounter state.
type Distributor struct {
	table  Table
	loot   map[string]LootTable
	src    dice.Source
	logger *zap.Logger
	now    func() time.Time
}

// NewDistributor creates a Distributor.
//
// Precondition: table must have passed Validate; src and logger must be
// non-nil. loot may be nil.
func NewDistributor(table Table, loot map[string]LootTable, src dice.Source, logger *zap.Logger) *Distributor {
	return &Distributor{table: table, loot: loot, src: src, logger: logger, now: time.Now}
}

// Roll computes the grant for a defeated enemy without applying it.
//
// Precondition: enemy.Kind == combatant.KindEnemy.
// Postcondition: XP equals the tier XP (times the elite multiplier for elites);
// Gold and Essence lie in the tier ranges (scaled for elites, essence >= 1).
func (d *Distributor) Roll(enemy *combatant.Combatant) Grant {
	tier := d.table.TierFor(enemy.Level)
	elite := enemy.Enemy != nil && enemy.Enemy.Elite

	g := Grant{
		EnemyID:   enemy.ID,
		EnemyName: enemy.Name,
		Tier:      tier.Name,
		Elite:     elite,
		XP:        tier.XP,
		Gold:      dice.Between(d.src, tier.Gold.Min, tier.Gold.Max),
		Essence:   dice.Between(d.src, tier.Essence.Min, tier.Essence.Max),
	}
	if elite {
		g.XP = int(math.Floor(float64(g.XP) * d.table.EliteXPMultiplier))
		g.Gold = int(math.Floor(float64(g.Gold) * d.table.EliteGoldMultiplier))
		g.Essence = max(1, int(math.Floor(float64(g.Essence)*d.table.EliteEssenceMultiplier)))
	}

	if enemy.Enemy != nil {
		for _, drop := range enemy.Enemy.Drops {
			if drop.ItemID != "" && drop.Quantity > 0 {
				g.Items = append(g.Items, drop)
			}
		}
		if lt, ok := d.loot[enemy.Enemy.LootTableID]; ok {
			g.Items = append(g.Items, lt.Roll(d.src)...)
		} else if enemy.Enemy.LootTableID != "" {
			d.logger.Debug("unknown loot table", zap.String("loot_table_id", enemy.Enemy.LootTableID))
		}
	}

	chests := 0
	switch {
	case elite:
		chests = d.table.EliteChests
	case dice.Percent(d.src) < d.table.ChestChance:
		chests = 1
	}
	for i := 0; i < chests; i++ {
		g.Chests = append(g.Chests, character.LootChest{
			ID:     uuid.New().String(),
			Tier:   tier.Name,
			Source: enemy.Name,
			Elite:  elite,
		})
	}
	return g
}

// Apply credits g to the player: items go to the live inventory so they are
// usable for the rest of the encounter; XP, currency, chests and the bestiary
// kill go to the working character.
//
// Postcondition: ch.Bestiary[g.EnemyName].Kills is incremented by 1.
func (d *Distributor) Apply(g Grant, player *combatant.Combatant, ch *character.Character) {
	for _, it := range g.Items {
		player.AddItem(it.ItemID, it.Quantity)
	}
	ch.Experience += g.XP
	ch.Gold += g.Gold
	ch.Essence += g.Essence
	ch.LootChests = append(ch.LootChests, g.Chests...)
	ch.RecordKill(g.EnemyName, d.now())

	d.logger.Info("reward granted",
		zap.String("enemy", g.EnemyName),
		zap.String("tier", g.Tier),
		zap.Bool("elite", g.Elite),
		zap.Int("xp", g.XP),
		zap.Int("gold", g.Gold),
		zap.Int("essence", g.Essence),
		zap.Int("items", len(g.Items)),
		zap.Int("chests", len(g.Chests)),
	)
}

// Distribute rolls and applies the grant for enemy in one step.
func (d *Distributor) Distribute(enemy *combatant.Combatant, player *combatant.Combatant, ch *character.Character) Grant {
	g := d.Roll(enemy)
	d.Apply(g, player, ch)
	return g
}
