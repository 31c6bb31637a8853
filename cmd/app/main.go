package main

import (
	"context"
	"net/http"
	"time"

	"marketplace/cmd"
	httpadapter "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/postgres"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := cmd.LoadConfig()
		if err != nil {
			return err
		}
		return run(ctx, lg, m, cfg)
	})
}

func run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg cmd.Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.HTTPAddr))
	otel.SetTracerProvider(m.TracerProvider())

	db, err := gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrap(err, "connect database")
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return errors.Wrap(err, "migrate")
	}

	root, err := cmd.NewCompositionRoot(cfg, db, lg)
	if err != nil {
		return err
	}

	opts := httpadapter.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		RateLimit:      cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
		Logger:         lg,
		TracerProvider: m.TracerProvider(),
	}
	router, err := httpadapter.NewRouter(httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:              root.CreateCreateOrderCommandHandler(),
		UpdateOrderStatus:        root.CreateUpdateOrderStatusCommandHandler(),
		RequestRefund:            root.CreateRequestRefundCommandHandler(),
		ResolveRefund:            root.CreateResolveRefundCommandHandler(),
		AssignDelivery:           root.CreateAssignDeliveryCommandHandler(),
		UpdateDeliveryAssignment: root.CreateUpdateDeliveryAssignmentCommandHandler(),
		AutoAssignDeliveries:     root.CreateAutoAssignDeliveriesCommandHandler(),
		CreateDeliveryPartner:    root.CreateCreateDeliveryPartnerCommandHandler(),
		GetOrderView:             root.CreateGetOrderViewQueryHandler(),
		GetDeliveryPartners:      root.CreateGetDeliveryPartnersQueryHandler(),
		GetActiveDeliveries:      root.CreateGetActiveDeliveriesQueryHandler(),
	}), opts)
	if err != nil {
		return errors.Wrap(err, "create router")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpadapter.Handler(router, opts),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	jobManager := root.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
