package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcanum/internal/game/combat"
)

// ZapSink writes every combat event as a structured log line. Warning events
// are logged at warn level, everything else at info.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a sink writing to logger.
//
// Precondition: logger must not be nil.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		panic("observability.NewZapSink: logger must not be nil")
	}
	return &ZapSink{logger: logger}
}

// Append logs e.
func (s *ZapSink) Append(e combat.Event) {
	fields := []zap.Field{
		zap.Int("turn", e.Turn),
		zap.Stringer("actor", e.Actor),
		zap.String("actor_name", e.ActorName),
		zap.Stringer("category", e.Category),
	}
	if e.Category == combat.CategoryWarning {
		s.logger.Warn(e.Message, fields...)
		return
	}
	s.logger.Info(e.Message, fields...)
}
