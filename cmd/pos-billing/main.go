package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "pos-billing/internal/app/billing"
	"pos-billing/internal/app/notify"
	"pos-billing/internal/app/terminal"
	"pos-billing/internal/auth"
	"pos-billing/internal/common/config"
	"pos-billing/internal/common/db"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/common/mq"
)

const modes = "billing-service | pos-terminal | notification-subscriber | issue-token | check"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "", "path to YAML config (default: config.yaml or deploy/config.example.yaml)")
	port := flag.Int("port", 0, "billing-service: http port, overrides config")
	endpoint := flag.String("endpoint", "", "pos-terminal: billing service base URL, overrides config")
	location := flag.String("location", "", "pos-terminal: default bill location")
	user := flag.String("user", "", "issue-token: username the token is issued to")
	flag.Parse()

	lg := logger.New(serviceName(*mode))
	defer lg.Sync()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, nil)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	if *endpoint != "" {
		cfg.Terminal.Endpoint = *endpoint
	}
	if *location != "" {
		cfg.Terminal.Location = *location
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "billing-service":
		lg.Info("service_started", map[string]any{"service": "billing-service", "port": cfg.HTTP.Port})
		err = appbilling.Run(ctx, cfg, lg)
	case "pos-terminal":
		err = terminal.Run(ctx, cfg, os.Stdin, os.Stdout, lg)
	case "notification-subscriber":
		lg.Info("service_started", map[string]any{"service": "notification-subscriber"})
		err = notify.Run(ctx, cfg, lg)
	case "issue-token":
		name := *user
		if name == "" {
			name = cfg.Auth.AdminUser
		}
		var tok string
		tok, err = auth.GenerateToken(cfg.Auth.JWTSecret, name, time.Now())
		if err == nil {
			fmt.Println(tok)
		}
	case "check":
		err = check(ctx, cfg, lg)
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", err, nil)
		lg.Sync()
		os.Exit(1)
	}
}

func loadConfig(path string) (config.App, error) {
	if path != "" {
		return config.Load(path)
	}
	found, err := config.FindConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), nil
	}
	if err != nil {
		return config.App{}, err
	}
	return config.Load(found)
}

// check verifies that postgres and rabbitmq are reachable with the given config.
func check(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	if err := cfg.ValidateService(); err != nil {
		return err
	}
	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "port": cfg.Database.Port, "database": cfg.Database.Name})

	if err := cfg.ValidateSubscriber(); err != nil {
		return err
	}
	c, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Ping(); err != nil {
		return err
	}
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port, "vhost": cfg.Rabbit.VHost})
	return nil
}

func serviceName(mode string) string {
	if mode == "" {
		return "bootstrap"
	}
	return mode
}
