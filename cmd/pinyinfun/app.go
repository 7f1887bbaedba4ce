package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrischowai/Putonghua-learning/pkg/config"
	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
	"github.com/chrischowai/Putonghua-learning/pkg/db"
	"github.com/chrischowai/Putonghua-learning/pkg/dictionary"
	"github.com/chrischowai/Putonghua-learning/pkg/ingest"
	"github.com/chrischowai/Putonghua-learning/pkg/logging"
	"github.com/chrischowai/Putonghua-learning/pkg/progress"
	"github.com/chrischowai/Putonghua-learning/pkg/recognize"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// app wires the packages together for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	conn     *sql.DB
	corpus   *corpus.Store
	pipeline *ingest.Pipeline
	tracker  *progress.Tracker
	closers  []func()
}

func openApp(ctx context.Context, configPath, dbPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	a.conn = conn
	a.closers = append(a.closers, func() { conn.Close() })
	kv := db.NewStore(conn)

	var system []vocab.Entry
	if cfg.Corpus.SystemVocabPath != "" {
		system, err = dictionary.LoadVocabulary(cfg.Corpus.SystemVocabPath)
	} else {
		system, err = dictionary.SystemVocabulary()
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load system vocabulary: %w", err)
	}
	a.corpus = corpus.New(system, kv, corpus.WithLogger(logger))
	a.tracker = progress.NewTracker(kv, logger)

	var rec recognize.Recognizer
	if cfg.Recognition.Project != "" {
		g, err := recognize.NewGemini(ctx, cfg.Recognition.Project, cfg.Recognition.Region, cfg.Recognition.Model)
		if err != nil {
			// Images end in error without a recognizer; the rest still works.
			logger.Warn("recognition disabled", zap.Error(err))
		} else {
			rec = g
		}
	}

	p := ingest.NewPipeline(ingest.NewFiles(kv, logger), rec)
	p.Logger = logger
	p.Languages = cfg.Recognition.Languages
	p.PlaceholderDelay = cfg.Ingest.PlaceholderDelay
	p.Workers = cfg.Ingest.Workers
	a.pipeline = p

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
