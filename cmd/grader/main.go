// Command grader grades a submitted source archive against test cases and
// prints the grading report as JSON, or serves grading requests over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/autograde/go-grader/cmd/grader/config"
	"github.com/autograde/go-grader/cmd/grader/version"
	"github.com/autograde/go-grader/judger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var errNoArchive = errors.New("no submission archive given")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run grades and writes the report to stdout. It returns the exit status, 1
// when an error response is written.
func run(args []string, stdout io.Writer) int {
	var conf config.Config
	if err := conf.Load(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return writeError(stdout, fmt.Errorf("load config: %w", err))
	}
	if conf.Version {
		fmt.Fprintln(stdout, version.Version)
		return 0
	}
	if err := initLogger(&conf); err != nil {
		return writeError(stdout, err)
	}
	defer logger.Sync()
	if ce := logger.Check(zap.DebugLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", conf)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newGradeService(&conf)
	if err != nil {
		logger.Error("Init grader failed", zap.Error(err))
		return writeError(stdout, err)
	}

	if conf.Serve {
		if err := serve(ctx, &conf, svc); err != nil {
			return writeError(stdout, err)
		}
		return 0
	}

	if conf.Archive == "" {
		return writeError(stdout, errNoArchive)
	}
	rt, err := svc.Grade(ctx, conf.Archive, "")
	exportMetrics(&conf)
	if err != nil {
		logger.Error("Grading failed", zap.String("archive", conf.Archive), zap.Error(err))
		return writeError(stdout, err)
	}
	if err := writeJSON(stdout, rt); err != nil {
		logger.Error("Write report failed", zap.Error(err))
		return 1
	}
	return 0
}

func writeError(w io.Writer, err error) int {
	writeJSON(w, judger.NewErrorResponse(err))
	return 1
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func exportMetrics(conf *config.Config) {
	if conf.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(conf.MetricsFile, prometheus.DefaultGatherer); err != nil {
		logger.Warn("Write metrics failed", zap.String("file", conf.MetricsFile), zap.Error(err))
	}
}
