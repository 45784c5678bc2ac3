package billing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos-billing/internal/auth"
	bills "pos-billing/internal/billing"
	"pos-billing/internal/common/config"
	"pos-billing/internal/common/db"
	"pos-billing/internal/common/httpx"
	"pos-billing/internal/common/logger"
	"pos-billing/internal/common/mq"
	"pos-billing/internal/repository"
	"pos-billing/internal/router"
	"pos-billing/internal/shop"
	"pos-billing/internal/storage"
)

func Run(ctx context.Context, cfg config.App, lg *logger.Logger) error {
	if err := cfg.ValidateService(); err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Migrate(ctx); err != nil {
		return err
	}
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "port": cfg.Database.Port, "database": cfg.Database.Name})
	repo := repository.NewPG(conn)

	opts := []bills.Option{bills.WithLogger(lg.Named("bills"))}

	if cfg.Rabbit.Host != "" {
		mqc, err := mq.Dial(cfg.Rabbit)
		if err != nil {
			return err
		}
		defer mqc.Close()
		if err := mqc.DeclareAll(); err != nil {
			return fmt.Errorf("failed to declare rabbitmq topology: %w", err)
		}
		opts = append(opts, bills.WithPublisher(mq.NewBillPublisher(mqc)))
		lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port, "vhost": cfg.Rabbit.VHost})
	}

	if cfg.Storage.Bucket != "" {
		store, err := storage.NewReceiptStore(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		opts = append(opts, bills.WithArchive(store))
		lg.Info("receipt_storage_enabled", map[string]any{"bucket": cfg.Storage.Bucket})
	}

	shopSvc := shop.NewService(repo.Menu, repo.Settings, cfg.Shop,
		shop.WithOwner(cfg.Auth.AdminUser),
		shop.WithLogger(lg.Named("shop")),
	)
	if err := shopSvc.SeedMenu(ctx, cfg.Menu); err != nil {
		return err
	}

	authSvc := auth.NewService(repo.Users, cfg.Auth.JWTSecret, lg.Named("auth"))
	if err := authSvc.Seed(ctx, cfg.Auth.AdminUser, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if cfg.Auth.AdminPassword != "" {
		if err := shopSvc.InitSettings(ctx, cfg.Auth.AdminUser); err != nil {
			return err
		}
	}
	authSvc.OnSignup(shopSvc.InitSettings)
	if !authSvc.Enabled() {
		lg.Warn("auth_disabled", nil, map[string]any{"reason": "auth.jwt_secret is empty"})
	}

	opts = append(opts, bills.WithProfile(shopSvc))
	svc := bills.NewService(repo.Bills, cfg.Shop, cfg.CurrencySymbol, opts...)
	r := router.NewRouter(router.Deps{
		Bills:        bills.NewHandler(svc, lg),
		Shop:         shop.NewHandler(shopSvc, lg),
		Auth:         authSvc,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Log:          lg,
	})

	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port})
	srv := httpx.New(":"+strconv.Itoa(cfg.HTTP.Port), r)
	return srv.Run(ctx)
}
