package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/ecole-ece/vitrine/apps/api/echo"
	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
	appfs "github.com/ecole-ece/vitrine/fs"
	logsvc "github.com/ecole-ece/vitrine/services/logger"
	metricsvc "github.com/ecole-ece/vitrine/services/metrics"
	rediscache "github.com/ecole-ece/vitrine/storage/cache/redis"
	"github.com/ecole-ece/vitrine/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	ctx := context.Background()

	// set up DB
	repo, closeDB, err := database.OpenContentRepository(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	if conf.Database.Driver == database.DriverInMem {
		seedInMem(ctx, repo, conf, dbLogger)
	}

	// set up cache
	var cache content.Cache
	if conf.Redis.Enabled {
		client, err := rediscache.NewClient(conf.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
		}
		defer func() { _ = client.Close() }()
		cache = rediscache.NewPageCache(client, conf.Redis.TTL)
	}

	// set up services
	metrics := metricsvc.New()
	pages := content.NewCollection(
		repo, logger,
		content.WithCache(cache),
		content.WithObserver(metrics),
		content.WithLabels(content.DefaultLabels.With(conf.Content.Labels)),
	)
	site := content.NewSite(repo, cache, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// failures are logged by Refresh; POST /v1/content/refresh retries
	_ = pages.Refresh(ctx)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Pages:      pages,
			Site:       site,
			Metrics:    metrics.Handler(),
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// seedInMem fills the in-memory store with the embedded seed pages.
func seedInMem(ctx context.Context, repo content.Repository, conf *core.Config, logger core.Logger) {
	docs, err := content.LoadSeeds(appfs.FS, conf.Content.SeedPattern)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading seeds: %v", err), err)
	}
	for _, doc := range docs {
		if _, err = repo.CreateDocument(ctx, doc); err != nil {
			logger.Fatal(fmt.Sprintf("seeding %q: %v", doc.Key, err), err)
		}
	}
	logger.Info("in-memory store seeded", map[string]interface{}{"documents": len(docs)})
}
