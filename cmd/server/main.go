package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/logging"
	tracing "recharge-mcp-go/internal/monitoring/tracing"
	"recharge-mcp-go/internal/runtime"
	srv "recharge-mcp-go/internal/server"
	"recharge-mcp-go/internal/tools"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 0, "Override listen port")
	debug := flag.Bool("debug", false, "Enable debug mode")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(constants.GetFullVersion())
		return
	}

	hub := events.NewHub()
	cfgMgr, err := config.NewManager(*configPath, hub)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	cfg := cfgMgr.Current()
	if *debug {
		cfg.Server.Debug = true
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := logging.Setup(cfg.Server.Debug, cfg.Server.LogFile); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}
	log.WithField("config", *configPath).Infof("Starting %s %s", constants.MCPServerName, constants.GetFullVersion())

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	if cfg.Upstream.APIKey == "" {
		log.Warn("recharge_api_key is not configured; email lookup and session minting will be unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := upstream.New(upstream.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		APIVersion:     cfg.Upstream.APIVersion,
		AdminKey:       cfg.Upstream.APIKey,
		ProxyURL:       cfg.Upstream.ProxyURL,
		RequestTimeout: cfg.Upstream.RequestTimeout,
		RPS:            cfg.Upstream.RPS,
		Burst:          cfg.Upstream.Burst,
	})
	broker := upstream.NewBroker(upstream.BrokerOptions{
		Client:    client,
		Publisher: hub,
	})
	tracker := usage.NewTracker()
	registry := tools.NewRegistry(broker, tracker)

	if cfg.Server.Debug {
		hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debugf("config event: %v", evt.Payload)
		})
		hub.Subscribe(events.TopicSessionCreated, func(_ context.Context, evt events.Event) {
			log.WithField("topic", evt.Topic).Debugf("session event: %v", evt.Payload)
		})
	}

	tasks := runtime.NewTaskManager(ctx)
	startBackgroundTasks(tasks, cfgMgr, broker, tracker)
	cfgMgr.Watch(ctx)

	engine := srv.BuildEngine(cfg, srv.Dependencies{
		ConfigManager: cfgMgr,
		Broker:        broker,
		Registry:      registry,
		Usage:         tracker,
		Hub:           hub,
		Tasks:         tasks,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}

	go func() {
		log.Infof("MCP server listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancelShutdown()

	cfgMgr.StopWatch()
	tasks.StopAll()
	_ = httpSrv.Shutdown(shutdownCtx)
	tasks.Wait()

	time.Sleep(constants.ServerGracefulWait)
	tracker.LogSummary()
	log.Info("Server stopped")
}
