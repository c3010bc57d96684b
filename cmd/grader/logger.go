package main

import (
	"fmt"
	"os"

	"github.com/autograde/go-grader/cmd/grader/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var logger *zap.Logger = zap.NewNop()

// initLogger creates the console logger on stderr (stdout is reserved for the
// report) teed with the JSON session log if configured
func initLogger(conf *config.Config) error {
	var cores []zapcore.Core
	if !conf.Silent {
		cores = append(cores, newConsoleCore(conf))
	}
	if conf.SessionLog != "" {
		ws, _, err := zap.Open(conf.SessionLog)
		if err != nil {
			return fmt.Errorf("open session log: %w", err)
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, ws, zap.DebugLevel))
	}
	if len(cores) == 0 {
		logger = zap.NewNop()
		return nil
	}
	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return nil
}

func newConsoleCore(conf *config.Config) zapcore.Core {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if conf.EnableDebug {
		level.SetLevel(zap.DebugLevel)
	}
	stderr := zapcore.Lock(os.Stderr)

	if conf.Release {
		return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), stderr, level)
	}
	encConf := zap.NewDevelopmentEncoderConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		encConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encConf), stderr, level)
}
