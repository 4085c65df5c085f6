// Package log builds the process-wide logger and request-scoped child
// loggers. Grounded on the teacher's own logger construction
// (examples/federation/gateway/main.go's zap.NewProduction/NewZapLogger
// pairing): zap does the actual structured logging, wrapped behind
// abstractlogger.Logger so the rest of the module depends on the same
// narrow interface the teacher's engine and HTTP layers use rather than on
// zap directly.
package log

import (
	"time"

	al "github.com/jensneuse/abstractlogger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// New builds the process-wide logger. debug switches between zap's
// development and production presets, matching the teacher's
// NewDevelopmentConfig()/NewProduction() split.
func New(debug bool) al.Logger {
	var zapLogger *zap.Logger
	var err error
	if debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return al.NewZapLogger(zapLogger, al.DebugLevel)
}

// RequestLogger wraps the process logger with the fields that must appear
// on every log line for one client request — request_id and, once set from
// the request's operationName, operation_name. abstractlogger.Logger has no
// child-logger/With primitive, so the fields are stored here and prepended
// to every call instead, the same field set
// original_source/src/worker.rs's request span carries reborn as plain
// structured fields (this module has no tracing layer).
type RequestLogger struct {
	base          al.Logger
	requestID     string
	operationName string
}

// ForRequest returns a RequestLogger carrying a freshly generated
// request_id.
func ForRequest(base al.Logger) *RequestLogger {
	return &RequestLogger{base: base, requestID: uuid.NewString()}
}

// RequestID returns the generated request_id.
func (l *RequestLogger) RequestID() string {
	return l.requestID
}

// WithOperationName returns a copy of l with operation_name set, called
// with the operationName of the request body once it has been decoded. An
// empty name is recorded as "anonymous".
func (l *RequestLogger) WithOperationName(operationName string) *RequestLogger {
	if operationName == "" {
		operationName = "anonymous"
	}
	next := *l
	next.operationName = operationName
	return &next
}

func (l *RequestLogger) fields(extra []al.Field) []al.Field {
	fields := make([]al.Field, 0, len(extra)+2)
	fields = append(fields, al.String("request_id", l.requestID))
	if l.operationName != "" {
		fields = append(fields, al.String("operation_name", l.operationName))
	}
	return append(fields, extra...)
}

func (l *RequestLogger) Debug(msg string, fields ...al.Field) {
	l.base.Debug(msg, l.fields(fields)...)
}

func (l *RequestLogger) Info(msg string, fields ...al.Field) {
	l.base.Info(msg, l.fields(fields)...)
}

func (l *RequestLogger) Warn(msg string, fields ...al.Field) {
	l.base.Warn(msg, l.fields(fields)...)
}

func (l *RequestLogger) Error(msg string, fields ...al.Field) {
	l.base.Error(msg, l.fields(fields)...)
}

// WarnIfSlow logs a warning if time.Since(start) exceeds threshold. Ports
// original_source/src/main.rs's LONG_QUERY_TIME_MS (500ms) slow-query
// warning, generalized to an arbitrary threshold and extra fields.
func WarnIfSlow(logger *RequestLogger, start time.Time, threshold time.Duration, fields ...al.Field) {
	elapsed := time.Since(start)
	if elapsed <= threshold {
		return
	}
	allFields := append([]al.Field{al.Any("duration", elapsed)}, fields...)
	logger.Warn("request exceeded long-query threshold", allFields...)
}
