package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	Logger *zap.Logger
}

var (
	ProductionMode  = "release"
	DevelopmentMode = "debug"
)

func New(mode string) *Logger {
	var config zap.Config
	if mode == ProductionMode {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return &Logger{Logger: zapLogger}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

type ctxKey string

var RequestIdKey ctxKey = "request_id"
var UsernameKey ctxKey = "username"

func (l *Logger) withContext(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	if ctx != nil {
		if requestId, ok := ctx.Value(RequestIdKey).(string); ok {
			fields = append(fields, zap.String(string(RequestIdKey), requestId))
		}
		if username, ok := ctx.Value(UsernameKey).(string); ok {
			fields = append(fields, zap.String(string(UsernameKey), username))
		}
	}
	return l.Logger.With(fields...)
}

func (l *Logger) Infof(template string, args ...interface{}) {
	l.Logger.Sugar().Infof(template, args...)
}

func (l *Logger) Warnf(template string, args ...interface{}) {
	l.Logger.Sugar().Warnf(template, args...)
}

func (l *Logger) Errorf(template string, args ...interface{}) {
	l.Logger.Sugar().Errorf(template, args...)
}

// InfoCtx logs msg with the request id and username carried by ctx.
func (l *Logger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.withContext(ctx).Info(msg, fields...)
}

// ErrorCtx logs msg with the request id and username carried by ctx.
func (l *Logger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.withContext(ctx).Error(msg, fields...)
}

func (l *Logger) Sync() {
	_ = l.Logger.Sync()
}
