package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx lifecycle events with the "Fx" component name.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) hook(kind, function, caller string, runtimeNs int64, err error) {
	fields := []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
	}
	if runtimeNs >= 0 {
		fields = append(fields, zap.Int64("in", runtimeNs))
	}
	if err != nil {
		l.logger.Error(err, kind+" failed", fields...)
		return
	}
	l.logger.Debug(kind, fields...)
}

func (l *FxXLogger) types(kind, module string, rtypes []string, err error, stack []string, extra ...zap.Field) {
	for _, rtype := range rtypes {
		fields := append([]zap.Field{zap.String("rtype", rtype)}, extra...)
		if module != "" {
			fields = append(fields, zap.String("module", module))
		}
		l.logger.Debug(kind, fields...)
	}
	if err != nil {
		l.logger.Error(err, kind+" failed", zap.Strings("stacktrace", stack))
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.hook("HOOK OnStart", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStartExecuted:
		l.hook("HOOK OnStart executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.OnStopExecuting:
		l.hook("HOOK OnStop", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStopExecuted:
		l.hook("HOOK OnStop executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.Supplied:
		l.types("SUPPLY", e.ModuleName, []string{e.TypeName}, e.Err, e.StackTrace)
	case *fxevent.Provided:
		l.types("PROVIDE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("constructor", e.ConstructorName),
			zap.Bool("private", e.Private),
		)
	case *fxevent.Replaced:
		l.types("REPLACE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace)
	case *fxevent.Decorated:
		l.types("DECORATE", e.ModuleName, e.OutputTypeNames, e.Err, e.StackTrace,
			zap.String("decorator", e.DecoratorName),
		)
	case *fxevent.Invoking:
		fields := []zap.Field{zap.String("function", e.FunctionName)}
		if e.ModuleName != "" {
			fields = append(fields, zap.String("module", e.ModuleName))
		}
		l.logger.Debug("INVOKING", fields...)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Warn("START failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
		} else {
			l.logger.Debug("RUNNING")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
		} else {
			l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
		}
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	if logger == nil {
		return &FxXLogger{}
	}
	return &FxXLogger{logger: componentLogger(logger, "Fx")}
}
