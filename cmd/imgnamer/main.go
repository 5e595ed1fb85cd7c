// Command imgnamer renames image files after their best reverse-image
// search result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	imgnamer "github.com/anatolykoptev/go-imgnamer"
	"github.com/anatolykoptev/go-imgnamer/internal/batch"
	"github.com/anatolykoptev/go-imgnamer/internal/config"
	"github.com/anatolykoptev/go-imgnamer/internal/logging"
	"github.com/anatolykoptev/go-imgnamer/internal/metrics"
	"github.com/anatolykoptev/go-imgnamer/internal/rediscache"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.DefaultConfig()
	config.ApplyEnv(&cfg)
	if err := config.ParseFlags(&cfg, args, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if cfg.ShowVersion {
		fmt.Println("imgnamer " + version)
		return 0
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "imgnamer: %v\n", err)
		return 2
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if err := logging.Init(os.Stderr, cfg.LogFormat, level); err != nil {
		fmt.Fprintf(os.Stderr, "imgnamer: %v\n", err)
		return 2
	}
	log := slog.Default().With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := batch.Discover(cfg.Paths, cfg.Recursive)
	if err != nil {
		log.Error("discovery failed", "error", err.Error())
		return 1
	}
	if len(files) == 0 {
		log.Warn("no images found", "paths", cfg.Paths)
		return 0
	}

	m := metrics.New()
	namer, cleanup := newNamer(ctx, &cfg, m, log)
	defer cleanup()
	if cfg.Verbose {
		namer.OnRank = func(path string, ranked []imgnamer.RankedResult) {
			logRanking(log, path, ranked)
		}
	}

	log.Info("starting", "version", version, "files", len(files), "engines", cfg.Engines, "dry_run", cfg.DryRun)
	start := time.Now()
	runner := &batch.Runner{
		Namer: namer,
		Opts: imgnamer.SuggestOpts{
			Hint:            cfg.Hint,
			Sites:           cfg.Sites,
			Num:             cfg.Num,
			UseReference:    cfg.UseReference,
			UseMetadataHint: cfg.MetadataHint,
			Timeout:         cfg.Timeout,
		},
		DryRun:   cfg.DryRun,
		Logger:   log,
		OnRename: m.Rename,
	}
	stats := runner.Run(ctx, files)

	log.Info("done",
		"total", stats.Total,
		"renamed", stats.Renamed,
		"unchanged", stats.Unchanged,
		"no_suggestion", stats.NoSuggestion,
		"failed", stats.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond).String())

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("writing metrics failed", "path", cfg.MetricsFile, "error", err.Error())
		}
	}
	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// logRanking prints every candidate of one file, best first.
func logRanking(log *slog.Logger, path string, ranked []imgnamer.RankedResult) {
	for pos, r := range ranked {
		log.Info("candidate",
			"file", filepath.Base(path),
			"rank", pos+1,
			"index", r.Index,
			"provider", r.Result.Provider,
			"title", r.Result.Title,
			"location", r.Result.Location,
			"dimensions", r.Result.Dimensions.String(),
			"score", r.Score,
			"adjusted", r.Adjusted)
	}
}

// newNamer wires providers, cache and metrics into an imgnamer.Config.
// The returned cleanup releases the browser and Redis connection.
func newNamer(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *slog.Logger) (*imgnamer.Config, func()) {
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	client := imgnamer.Client{UserAgent: cfg.UserAgent}
	if cfg.Render {
		r := &imgnamer.ChromeRenderer{UserAgent: cfg.UserAgent}
		closers = append(closers, r.Close)
		client.Renderer = r
	}

	var providers []imgnamer.SearchProvider
	for _, e := range cfg.Engines {
		switch e {
		case config.EngineGoogle:
			providers = append(providers, &imgnamer.GoogleProvider{Client: client})
		case config.EngineTinEye:
			providers = append(providers, &imgnamer.TinEyeProvider{Client: client})
		}
	}

	namer := &imgnamer.Config{
		Rules:        imgnamer.LoadRuleSetOrDefault(cfg.RulesFile),
		Providers:    providers,
		UserAgent:    cfg.UserAgent,
		OnSearch:     m.OnSearch,
		OnSuggestion: m.OnSuggestion,
	}

	if cfg.RedisAddr != "" {
		rc := rediscache.New(cfg.RedisAddr, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err.Error())
			_ = rc.Close()
			namer.Cache = imgnamer.NewMemoryCache()
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			namer.Cache = rc
		}
	} else {
		namer.Cache = imgnamer.NewMemoryCache()
	}
	return namer, cleanup
}
