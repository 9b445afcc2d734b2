package zaplogger

import (
	"sort"

	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct{ l *zap.Logger }

// Wrap hides a zap logger behind the observability.Logger port.
func Wrap(l *zap.Logger, fixed ...observability.Field) observability.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fixed) > 0 {
		l = l.With(toZapFields(fixed)...)
	}
	return &logger{l: l}
}

func (z *logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return &logger{l: z.l}
	}
	return &logger{l: z.l.With(toZapFields(fields)...)}
}

func (z *logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}
func (z *logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZapFields(fields)...)
}
func (z *logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}
func (z *logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func (z *logger) Sync() error {
	return z.l.Sync()
}

// logFielder is satisfied by values that know how to describe themselves to
// operators, such as checkout failures.
type logFielder interface {
	LogFields() map[string]any
}

func toZapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		out = append(out, toZapField(f.Key, f.Value))
	}
	return out
}

func toZapField(key string, v any) zap.Field {
	switch x := v.(type) {
	case logFielder:
		return zap.Object(key, objectMarshaler(x.LogFields()))
	case error:
		return zap.NamedError(key, x)
	default:
		return zap.Any(key, v)
	}
}

// objectMarshaler renders a field map as a nested object, recursing into
// values that expose their own LogFields.
type objectMarshaler map[string]any

func (m objectMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch x := m[k].(type) {
		case nil:
			continue
		case logFielder:
			if err := enc.AddObject(k, objectMarshaler(x.LogFields())); err != nil {
				return err
			}
		case string:
			if x == "" {
				continue
			}
			enc.AddString(k, x)
		default:
			if err := enc.AddReflected(k, x); err != nil {
				return err
			}
		}
	}
	return nil
}
