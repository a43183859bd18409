package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger обертка над zap.SugaredLogger с kv-интерфейсом
// (Debugw/Infow/Warnw/Errorw/Fatalw) для всего приложения.
type Logger struct {
	*zap.SugaredLogger
}

// New создает новый Logger. level: "debug", "info", "warn", "error".
// В production пишем JSON, иначе — человекочитаемый вывод с цветами.
func New(level string, env string) *Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	var encoder zapcore.Encoder
	if env == "production" {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zapLevel)
	z := zap.New(core, zap.AddCaller())

	return &Logger{SugaredLogger: z.Sugar()}
}

// Named возвращает логгер с префиксом компонента.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}

// NewNop возвращает логгер, который ничего не пишет. Для тестов.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
