// Package logging builds the zap loggers used by the formula binaries.
package logging

import (
	"os"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Out receives entries below the error level and Err the rest. They default to stdout and stderr.
	Out zapcore.WriteSyncer
	Err zapcore.WriteSyncer
	// Console selects the coloured console encoding over JSON. It defaults to whether stdout is a terminal.
	Console *bool
}

func (o Options) console() bool {
	if o.Console != nil {
		return *o.Console
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// New builds a logger that splits error entries from the rest and tags every entry with the host name.
func New(opts Options) (*zap.Logger, error) {
	var minLevel zapcore.Level
	if err := minLevel.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
	}

	errorPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= minLevel
	})

	infoPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= minLevel
	})

	out, errOut := opts.Out, opts.Err
	if out == nil {
		out = zapcore.Lock(os.Stdout)
	}
	if errOut == nil {
		errOut = zapcore.Lock(os.Stderr)
	}

	var encoder zapcore.Encoder
	if opts.console() {
		encoderConf := zap.NewDevelopmentEncoderConfig()
		encoderConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	} else {
		encoderConf := zap.NewProductionEncoderConfig()
		encoderConf.MessageKey = "message"
		encoderConf.EncodeTime = zapcore.TimeEncoder(zapcore.ISO8601TimeEncoder)
		encoder = zapcore.NewJSONEncoder(encoderConf)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, errOut, errorPriority),
		zapcore.NewCore(encoder, out, infoPriority),
	)

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	stackTraceEnabler := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl > zapcore.ErrorLevel
	})

	return zap.New(core, zap.Fields(zap.String("host", host)), zap.AddStacktrace(stackTraceEnabler)), nil
}

// Init builds a logger from opts and installs it as the zap and standard library global.
func Init(name string, opts Options) {
	logger, err := New(opts)
	if err != nil {
		zap.S().Fatalw("Failed to create logger", "error", err)
	}

	zap.ReplaceGlobals(logger.Named(name))
	zap.RedirectStdLog(logger.Named("stdlog"))
}
