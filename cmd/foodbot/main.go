package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"foodbot/internal/cart"
	"foodbot/internal/config"
	"foodbot/internal/connections/database"
	"foodbot/internal/connections/rabbitmq"
	"foodbot/internal/logger"
	"foodbot/internal/repository"
	"foodbot/internal/service"
	"foodbot/internal/webhook"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (default: auto-discover)")
	port := flag.Int("port", 0, "http port, overrides config")
	flag.Parse()

	lg := logger.New("bootstrap")
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := *cfgPath
	if path == "" {
		var err error
		if path, err = config.Find(); err != nil {
			lg.Error("config_not_found", err, nil)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		lg.Error("config_invalid", err, map[string]any{"path": path})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		lg.Error("db_connect_failed", err, nil)
		os.Exit(1)
	}
	defer pool.Close()

	mq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		lg.Error("mq_connect_failed", err, nil)
		os.Exit(1)
	}
	defer mq.Close()
	if err := mq.DeclareTopology(); err != nil {
		lg.Error("mq_declare_failed", err, nil)
		os.Exit(1)
	}

	svc := service.New(
		cart.NewStore(),
		repository.NewOrdersPG(pool),
		mq,
		logger.New("order-service"),
	)
	h := webhook.NewHandler(svc, logger.New("webhook"))

	lg.Info("service_started", map[string]any{"service": "foodbot", "port": cfg.Server.Port})
	if err := webhook.Run(ctx, cfg.Server.Port, h); err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
}
