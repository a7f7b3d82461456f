package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"PropertyProspector/internal/catalog"
	"PropertyProspector/internal/classifier"
	"PropertyProspector/internal/config"
	"PropertyProspector/internal/engine"
	"PropertyProspector/internal/intake"
	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/recorder"
	"PropertyProspector/internal/report"
	"PropertyProspector/internal/rng"
	"PropertyProspector/internal/scheduler"
)

func main() {
	inputPath := flag.String("input", "", "Path to property attributes JSON")
	imagePath := flag.String("image", "", "Optional property photo to classify")
	userID := flag.String("user", "", "Owner of the saved analysis")
	allCategories := flag.Bool("all", false, "Draw prospects from every category")
	format := flag.String("format", "text", "Output format: text or json")
	list := flag.Bool("list", false, "List stored analyses of -user")
	serve := flag.Bool("serve", false, "Run the archive scheduler until interrupted")
	metricsAddr := flag.String("metrics-addr", ":9090", "Metrics listen address in -serve mode")
	flag.Parse()

	if _, err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	store := openStore(cfg, log)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case *serve:
		runServe(ctx, cfg, store, *metricsAddr, log)
	case *list:
		summaries, err := store.ListByUser(ctx, *userID)
		if err != nil {
			log.Fatal("list analyses", zap.Error(err))
		}
		emit(*format, summaries, report.FormatSummaries(summaries), log)
	default:
		eng, err := newEngine(cfg, store, log)
		if err != nil {
			log.Fatal("init engine", zap.Error(err))
		}
		req, err := buildRequest(*inputPath, *imagePath, *userID, *allCategories)
		if err != nil {
			log.Fatal("read input", zap.Error(err))
		}
		result, err := eng.Analyze(ctx, req)
		if result == nil {
			log.Fatal("analysis failed", zap.Error(err))
		}
		if err != nil {
			log.Warn("analysis not saved", zap.Error(err))
		}
		emit(*format, result, report.FormatAnalysis(result), log)
		if *format != "json" {
			highlightWarnings(result)
		}
	}
}

func openStore(cfg *config.Config, log *zap.Logger) recorder.Store {
	var store recorder.Store
	if cfg.Database.SQLitePath != "" {
		s, err := recorder.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite store failed, using noop", zap.Error(err))
			store = recorder.NewNoopStore()
		} else {
			store = s
		}
	} else {
		store = recorder.NewNoopStore()
	}

	if cfg.Redis.Address == "" {
		return store
	}
	rdb := recorder.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, cache disabled", zap.String("address", cfg.Redis.Address), zap.Error(err))
		rdb.Close()
		return store
	}
	return recorder.NewCachedStore(store, rdb, cfg.CacheTTL(), log)
}

func newEngine(cfg *config.Config, store recorder.Store, log *zap.Logger) (*engine.Engine, error) {
	var cat *catalog.Catalog
	var err error
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	log.Info("prospect catalog loaded", zap.String("version", cat.Version()), zap.Int("templates", len(cat.All())))

	var cls classifier.Classifier
	if cfg.Classifier.Endpoint != "" {
		cls = classifier.NewHTTPClassifier(cfg.Classifier.Endpoint, cfg.Classifier.APIKey, cfg.Proxy, cfg.ClassifierTimeout())
		log.Info("image classifier configured", zap.String("endpoint", cfg.Classifier.Endpoint))
	}

	return engine.New(engine.Options{
		Classifier:        cls,
		Catalog:           cat,
		Store:             store,
		Random:            rng.NewFactory(cfg.Engine.Seed),
		Logger:            log,
		ClassifierTimeout: cfg.ClassifierTimeout(),
		ProspectCount:     cfg.Engine.ProspectCount,
	})
}

func buildRequest(inputPath, imagePath, userID string, all bool) (engine.AnalysisRequest, error) {
	req := engine.AnalysisRequest{UserID: userID, AllCategories: all}
	if inputPath == "" {
		return req, errors.New("missing required -input")
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return req, err
	}
	if req.Attributes, err = intake.DecodeAttributes(data); err != nil {
		return req, err
	}

	if imagePath != "" {
		if req.Image, err = os.ReadFile(imagePath); err != nil {
			return req, err
		}
	}
	return req, nil
}

func emit(format string, v any, text string, log *zap.Logger) {
	if format != "json" {
		fmt.Print(text)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal("encode output", zap.Error(err))
	}
}

// highlightWarnings repeats degradations on stderr, colored when it is a terminal.
func highlightWarnings(r *model.PropertyAnalysisResult) {
	if r.Rejected {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "image rejected: no prospects generated")
	}
	warn := color.New(color.FgYellow)
	for _, w := range r.Warnings {
		warn.Fprintf(os.Stderr, "warning %s: %s\n", w.Code, w.Message)
	}
}

func runServe(ctx context.Context, cfg *config.Config, store recorder.Store, metricsAddr string, log *zap.Logger) {
	sched := scheduler.NewScheduler(ctx, store, cfg.ArchiveMaxAge(), log)
	if err := sched.RegisterArchive(cfg.Archive.Cron); err != nil {
		log.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, archiving now")
		go func() {
			if _, err := sched.RunArchiveNow(); err != nil {
				log.Warn("archive on start failed", zap.Error(err))
			}
		}()
	}

	log.Info("prospector is running, press Ctrl+C to stop", zap.String("metrics", metricsAddr))
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
