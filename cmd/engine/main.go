package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/config"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/engine"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/server/rest"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	configFile = flag.String("config", "", "yaml config file, flags below override it")
	listenAddr = flag.String("listenaddr", "", "server listen address")
	graphFile  = flag.String("f", "", "contraction hierarchies graph file")
	cacheBytes = flag.Int64("cache", 0, "block cache budget in bytes")
	noMmap     = flag.Bool("nommap", false, "read blocks with pread instead of mmap")
	logLevel   = flag.String("loglevel", "", "logrus level")
)

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return config.Config{}, err
		}
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *graphFile != "" {
		cfg.GraphFile = *graphFile
	}
	if *cacheBytes > 0 {
		cfg.CacheByteBudget = *cacheBytes
	}
	if *noMmap {
		cfg.UseMmap = false
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	log := cfg.Logger()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	var opts []engine.Option
	if cfg.SimplifyThreshold > 0 {
		opts = append(opts, engine.WithSimplification(cfg.SimplifyThreshold))
	}
	eng, err := engine.Open(cfg.GraphFile, cfg.GraphOptions(log, reg), opts...)
	if err != nil {
		log.WithError(err).Fatal("failed to open graph")
	}
	defer eng.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	navigatorSvc := service.NewNavigationService(eng, cfg.QueryTimeout, cfg.NearestRadius)
	rest.NavigatorRouter(r, navigatorSvc, m)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "graph": cfg.GraphFile}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server shut down")
}
