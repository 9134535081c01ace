package log

import (
	"context"
	"fmt"

	"github.com/on-the-ground/fleeting_state/store"
	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// InterceptedMessage is the message logged for every intercepted action.
const InterceptedMessage = "action intercepted"

// Intercept returns an effect that logs every committed action with its
// state type, kind and new state.
func Intercept(logger *zap.Logger, level LogLevel) store.EffectFunc[store.AnyAction] {
	return func(ctx context.Context, action store.AnyAction, d *store.Dispatcher) error {
		fields := []zap.Field{
			zap.String("type", action.StateType()),
			zap.String("kind", string(action.Kind())),
			zap.String("newState", fmt.Sprintf("%+v", action.StateValue())),
		}
		write(logger, level, InterceptedMessage, fields...)
		return nil
	}
}

// InterceptAll registers Intercept on d under the name "log.intercept".
func InterceptAll(d *store.Dispatcher, logger *zap.Logger, level LogLevel) {
	store.On(d, "log.intercept", Intercept(logger, level))
}

func write(logger *zap.Logger, level LogLevel, msg string, fields ...zap.Field) {
	switch level {
	case LogInfo:
		logger.Info(msg, fields...)
	case LogWarn:
		logger.Warn(msg, fields...)
	case LogError:
		logger.Error(msg, fields...)
	case LogDebug:
		logger.Debug(msg, fields...)
	default:
		logger.Info(msg, fields...)
	}
}
