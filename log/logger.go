package log

import "go.uber.org/zap"

// Logger is the structured logger used across the compilers, the executor and the endpoint.
// Values are passed as alternating keys and values.
type Logger interface {
	Debug(msg string, keyAndValues ...interface{})
	Info(msg string, keyAndValues ...interface{})
	Warn(msg string, keyAndValues ...interface{})
	Error(msg string, keyAndValues ...interface{})
	Fatal(msg string, keyAndValues ...interface{})
	With(keyAndValues ...interface{}) Logger
}

type ZapLogger struct {
	inner *zap.SugaredLogger
}

func NewZapLogger(log *zap.Logger) ZapLogger {
	return ZapLogger{inner: log.Sugar()}
}

// NewNopLogger returns a logger that discards everything. Compilers use it when no logger is provided.
func NewNopLogger() ZapLogger {
	return NewZapLogger(zap.NewNop())
}

// NewDevelopmentLogger logs at debug level in a human readable format
func NewDevelopmentLogger() (ZapLogger, error) {
	log, err := zap.NewDevelopment()
	if err != nil {
		return ZapLogger{}, err
	}
	return NewZapLogger(log), nil
}

func (l ZapLogger) Debug(msg string, keyAndValues ...interface{}) {
	l.inner.Debugw(msg, keyAndValues...)
}

func (l ZapLogger) Info(msg string, keyAndValues ...interface{}) {
	l.inner.Infow(msg, keyAndValues...)
}

func (l ZapLogger) Warn(msg string, keyAndValues ...interface{}) {
	l.inner.Warnw(msg, keyAndValues...)
}

func (l ZapLogger) Error(msg string, keyAndValues ...interface{}) {
	l.inner.Errorw(msg, keyAndValues...)
}

func (l ZapLogger) Fatal(msg string, keyAndValues ...interface{}) {
	l.inner.Fatalw(msg, keyAndValues...)
}

func (l ZapLogger) With(keyAndValues ...interface{}) Logger {
	return ZapLogger{inner: l.inner.With(keyAndValues...)}
}

// Sync flushes buffered entries
func (l ZapLogger) Sync() error {
	return l.inner.Sync()
}
