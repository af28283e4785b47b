package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saideep-g/blue-ninja/internal/authoring"
	"github.com/saideep-g/blue-ninja/internal/cache"
	"github.com/saideep-g/blue-ninja/internal/config"
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/curriculum"
	"github.com/saideep-g/blue-ninja/internal/engine"
	"github.com/saideep-g/blue-ninja/internal/llm"
	"github.com/saideep-g/blue-ninja/internal/logger"
	"github.com/saideep-g/blue-ninja/internal/progress"
	"github.com/saideep-g/blue-ninja/internal/store"
	"github.com/saideep-g/blue-ninja/internal/telemetry"
)

// runtime is everything a command needs, opened from configuration.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	kv     cache.KV
	redis  *cache.Redis // nil when the cache lives in the database
	graph  *curriculum.Graph
	engine *engine.Engine

	closers []func() error
}

// loadConfig reads configuration and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	log, err := logger.New(cfg.Env, debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// resolveDBPath returns the configured DSN, or the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// loadCurriculum reads the configured curriculum, or the built-in one.
func loadCurriculum(cfg *config.Config) (*curriculum.Graph, error) {
	if cfg.Curriculum.Path == "" {
		return curriculum.Default(), nil
	}
	return curriculum.Load(cfg.Curriculum.Path)
}

// openStore opens only the database, for commands that need nothing else.
func openStore(cmd *cobra.Command) (*store.Store, *zap.Logger, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := storeFor(cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, log, nil
}

func storeFor(cfg *config.Config) (*store.Store, error) {
	dsn, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// openRuntime opens the store and cache, loads curriculum and content
// sources, and builds the engine.
func openRuntime(cmd *cobra.Command) (_ *runtime, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()
	rt.closers = append(rt.closers, func() error { _ = log.Sync(); return nil })

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Environment: cfg.Env,
		SampleRatio: cfg.Telemetry.SampleRatio,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	rt.closers = append(rt.closers, func() error { return shutdown(context.Background()) })

	rt.store, err = storeFor(cfg)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, rt.store.Close)

	if cfg.Cache.URL != "" {
		rt.redis, err = cache.NewRedis(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, err
		}
		rt.kv = rt.redis
		rt.closers = append(rt.closers, rt.redis.Close)
	} else {
		rt.kv = rt.store.KV()
	}

	rt.graph, err = loadCurriculum(cfg)
	if err != nil {
		return nil, err
	}

	source, err := rt.contentSource(ctx)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Day.Location()
	if err != nil {
		return nil, err
	}
	rt.engine = engine.New(engine.Options{
		Curriculum:   rt.graph,
		Learners:     rt.store.LearnerRepo(),
		Events:       rt.store.EventRepo(),
		KV:           rt.kv,
		Source:       source,
		Calendar:     progress.Calendar{CutoverHour: cfg.Day.CutoverHour, Location: loc},
		DefaultGrade: cfg.Learner.DefaultGrade,
		Logger:       log,
	})
	return rt, nil
}

// contentSource stacks the configured sources: the database first, then a
// bundle directory, then LLM authoring.
func (rt *runtime) contentSource(ctx context.Context) (content.Source, error) {
	repo := rt.store.ContentRepo()
	if rt.cfg.Content.Seed {
		if err := seedContent(ctx, repo, rt.logger); err != nil {
			return nil, err
		}
	}
	sources := []content.Source{repo}

	if rt.cfg.Content.Path != "" {
		dir, err := content.LoadDir(rt.cfg.Content.Path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, dir)
	}

	if rt.cfg.Content.Authoring.Enabled {
		provider, err := llm.NewProvider(ctx, rt.cfg.LLM, rt.store.EventRepo(), rt.logger)
		if err != nil {
			return nil, fmt.Errorf("content authoring: %w", err)
		}
		acfg := authoring.DefaultConfig()
		if n := rt.cfg.Content.Authoring.ItemsPerAtom; n > 0 {
			acfg.ItemsPerAtom = n
		}
		sources = append(sources, authoring.New(provider, rt.graph, acfg, rt.logger))
	}

	return content.NewMulti(rt.logger, sources...), nil
}

// seedContent imports the built-in bundles that are not in the database yet.
func seedContent(ctx context.Context, repo *store.ContentRepo, log *zap.Logger) error {
	files, err := content.SeedBundles()
	if err != nil {
		return fmt.Errorf("read seed content: %w", err)
	}
	for name, data := range files {
		bf, err := content.ParseBundle(data)
		if err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		_, err = repo.BundleDetail(ctx, bf.Bundle.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, content.ErrBundleNotFound) {
			return err
		}
		if err := repo.ImportBundle(ctx, bf); err != nil {
			return err
		}
		log.Info("seeded content bundle", zap.String("bundle", bf.Bundle.ID), zap.Int("items", len(bf.Items)))
	}
	return nil
}

// health checks the database and, when configured, the cache.
func (rt *runtime) health(ctx context.Context) error {
	if err := rt.store.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if rt.redis != nil {
		if err := rt.redis.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() error {
	var errs []error
	for _, c := range slices.Backward(rt.closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
