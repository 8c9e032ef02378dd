package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// Every roll is logged at debug level so encounters can be audited.
//
// Roller itself satisfies Source, so it can be handed to any component that
// only needs Intn.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the underlying Source without logging.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Roll rolls one die with the given number of sides and adds modifier.
//
// Precondition: sides >= 1.
// Postcondition: result.Dice has exactly one value in [1, sides].
func (r *Roller) Roll(sides, modifier int) RollResult {
	result := RollResult{
		Expression: Expression(sides, modifier),
		Dice:       []int{r.src.Intn(sides) + 1},
		Modifier:   modifier,
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Between returns a uniform int in [lo, hi] and logs it.
func (r *Roller) Between(lo, hi int) int {
	v := Between(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("value", v),
	)
	return v
}

// Percent returns a logged value in [0, 100).
func (r *Roller) Percent() float64 {
	v := Percent(r.src)
	r.logger.Debug("percent roll", zap.Float64("value", v))
	return v
}
