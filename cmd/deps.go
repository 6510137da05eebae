package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/chat"
	"github.com/abhisek/statlab/internal/config"
	"github.com/abhisek/statlab/internal/grading"
	"github.com/abhisek/statlab/internal/llm"
	"github.com/abhisek/statlab/internal/logger"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/metrics"
	"github.com/abhisek/statlab/internal/practice"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

// loadConfig reads .env (or --env-file) and the environment. The database
// path comes from --db, then STATLAB_DB, then the default XDG path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if cfg.DBPath == "" {
		if cfg.DBPath, err = store.DefaultDBPath(); err != nil {
			return config.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
	} else if err := store.EnsureDir(cfg.DBPath); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured database without wiring services.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// app holds the wired services shared by the subcommands.
type app struct {
	cfg         config.Config
	log         *zap.Logger
	store       *store.Store
	metrics     *metrics.Metrics
	provider    llm.Provider
	recommender *recommend.Service
	tracker     *mastery.Tracker
	practice    *practice.Service
	chat        *chat.Service
}

// newApp opens the store and wires every service. withLLM controls whether
// an LLM provider is configured; without one open-ended grading falls back
// and generation and chat are unavailable.
func newApp(ctx context.Context, cmd *cobra.Command, withLLM bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{cfg: cfg, log: log, store: st, metrics: metrics.New()}

	if withLLM {
		p, err := newLLMProvider(ctx, st, log, a.metrics)
		if err != nil {
			log.Warn("LLM provider not configured; open-ended grading falls back and chat is unavailable", zap.Error(err))
		} else {
			a.provider = p
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rnd := recommend.NewRandomSource(seed)

	a.recommender = recommend.NewService(st, recommend.NewPolicy(rnd), log.Named("recommend"), a.metrics)
	a.tracker = mastery.NewTracker(st.ProgressRepo(), log.Named("mastery"))

	deps := practice.Deps{
		Questions:   st.QuestionRepo(),
		Answers:     st.AnswerRepo(),
		Recommender: a.recommender,
		Grader:      grading.New(a.provider, grading.DefaultConfig(), log.Named("grading")),
		Tracker:     a.tracker,
		Random:      rnd,
		Observer:    a.metrics,
		Log:         log.Named("practice"),

		GenerateOnMiss: cfg.GenerateOnMiss,
	}
	if a.provider != nil {
		deps.Generator = questiongen.New(a.provider, questiongen.DefaultConfig(), log.Named("questiongen"))
	}
	a.practice = practice.NewService(deps)
	a.chat = chat.NewService(st.ChatRepo(), a.tracker, a.provider, chat.DefaultConfig(), log.Named("chat"))
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	logger.Sync(a.log)
}

// newLLMProvider prefers STATLAB_* settings and falls back to the vendors'
// standard API key variables.
func newLLMProvider(ctx context.Context, st *store.Store, log *zap.Logger, obs llm.RequestObserver) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, st.EventRepo(), log.Named("llm"), obs)
}
