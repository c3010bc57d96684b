package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autograde/go-grader/cmd/grader/config"
	"github.com/autograde/go-grader/judger"
	"github.com/autograde/go-grader/language"
	"github.com/autograde/go-grader/pkg/diff"
	"github.com/autograde/go-grader/submission"
	"go.uber.org/zap"
)

// gradeService grades one submission at a time against the configured cases
type gradeService struct {
	mu       sync.Mutex
	conf     *config.Config
	registry *language.Registry
	cases    []judger.Case
	judger   *judger.Judger
}

func newGradeService(conf *config.Config) (*gradeService, error) {
	registry := language.NewRegistry(language.Limits{
		CompileTimeLimit: conf.CompileTimeLimit,
		RunTimeLimit:     conf.TimeLimit,
	})
	if err := registry.LoadFile(conf.LanguageConf); err != nil {
		return nil, fmt.Errorf("load language profiles: %w", err)
	}
	cmp, err := diff.ByName(conf.Comparator, conf.Tolerance)
	if err != nil {
		return nil, err
	}
	cases, err := loadCases(conf)
	if err != nil {
		return nil, fmt.Errorf("load test cases: %w", err)
	}
	logger.Info("Test cases loaded", zap.Int("count", len(cases)), zap.String("comparator", conf.Comparator))

	return &gradeService{
		conf:     conf,
		registry: registry,
		cases:    cases,
		judger: &judger.Judger{
			Comparator:   cmp,
			Logger:       logger,
			CaseObserver: caseObserve,
		},
	}, nil
}

func loadCases(conf *config.Config) ([]judger.Case, error) {
	if conf.Manifest != "" {
		return judger.LoadManifest(conf.Manifest)
	}
	return judger.Discover(conf.TestDir, conf.TestCount)
}

// Grade grades the archive, the configured language is used if lang is empty
func (g *gradeService) Grade(ctx context.Context, archivePath, lang string) (rt *judger.Report, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer func() { gradeObserve(rt, err) }()

	if lang == "" {
		lang = g.conf.Language
	}
	factory, err := g.registry.Get(lang)
	if err != nil {
		return nil, &submission.Error{Kind: submission.KindHandlerContract, Err: err}
	}

	s, err := submission.New(ctx, submission.Config{
		ArchivePath:  archivePath,
		Factory:      factory,
		TempDir:      g.conf.TempDir,
		KeepWorkDir:  g.conf.KeepWorkDir,
		Logger:       logger.With(zap.String("language", lang)),
		ExecObserver: stageObserve,
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	rt, err = g.judger.Run(ctx, s, g.cases)
	s.Finish()
	if err != nil {
		kind := submission.KindInternal
		if errors.Is(err, language.ErrContractViolation) {
			kind = submission.KindHandlerContract
		}
		return nil, &submission.Error{Kind: kind, Err: err}
	}
	return rt, nil
}

// Languages returns the registered languages
func (g *gradeService) Languages() []string {
	return g.registry.Names()
}
