package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *zap.Logger
var Sugar *zap.SugaredLogger
var Level zap.AtomicLevel
var Hook *lumberjack.Logger

func init() {
	Level = zap.NewAtomicLevel()
	Setup("", "")
}

// Setup rebuilds the process logger. Console output always goes to stdout;
// a non-empty filename adds a rotated JSON file next to it.
func Setup(level, filename string) error {
	if level != "" {
		if err := Level.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(os.Stdout)), Level),
	}
	if Hook != nil {
		Hook.Close()
		Hook = nil
	}
	if filename != "" {
		Hook = &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    128, // MB
			MaxBackups: 30,
			MaxAge:     7, // days
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(Hook), Level))
	}
	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	Sugar = Logger.Sugar()
	return nil
}

func New() *ZapSugarLogger {
	return &ZapSugarLogger{
		s: Sugar,
	}
}

// Wrap adapts an existing zap logger, e.g. one built on zaptest/observer.
func Wrap(l *zap.Logger) *ZapSugarLogger {
	return &ZapSugarLogger{
		s: l.WithOptions(zap.AddCallerSkip(1)).Sugar(),
	}
}

type ZapSugarLogger struct {
	s *zap.SugaredLogger
}

func (l *ZapSugarLogger) Println(msg string, v ...interface{}) {
	l.s.Infow(msg, v...)
}

func (l *ZapSugarLogger) Debugln(msg string, v ...interface{}) {
	l.s.Debugw(msg, v...)
}

func Clean() {
	Logger.Sync()
	if Hook != nil {
		Hook.Close()
	}
}
