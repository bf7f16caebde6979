package trace

import (
	"maps"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapTracer mirrors events to a zap logger at debug level. Heartbeats log at
// info so a hung load is visible without debug logging.
type ZapTracer struct {
	log   *zap.Logger
	level Level
}

// NewZapTracer creates a ZapTracer. A nil logger yields a no-op logger.
func NewZapTracer(log *zap.Logger, level Level) *ZapTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapTracer{log: log.Named("trace"), level: level}
}

func (t *ZapTracer) Emit(ev *Event) {
	if ev == nil || (!t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat) {
		return
	}
	lvl := zapcore.DebugLevel
	if ev.Kind == KindHeartbeat {
		lvl = zapcore.InfoLevel
	}
	ce := t.log.Check(lvl, ev.Name)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 5+len(ev.Extra))
	fields = append(fields,
		zap.Stringer("kind", ev.Kind),
		zap.Stringer("scope", ev.Scope),
		zap.Uint64("span", ev.SpanID),
	)
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		fields = append(fields, zap.String(k, ev.Extra[k]))
	}
	ce.Write(fields...)
}

// Flush syncs the logger. Sync errors on terminals are common and ignored.
func (t *ZapTracer) Flush() error {
	_ = t.log.Sync() //nolint:errcheck
	return nil
}

func (t *ZapTracer) Close() error  { return t.Flush() }
func (t *ZapTracer) Level() Level  { return t.level }
func (t *ZapTracer) Enabled() bool { return t.level > LevelOff }
