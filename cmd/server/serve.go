package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"landingCms/internal/config"
	"landingCms/internal/modules/homepage/infrastructure"
	"landingCms/internal/modules/homepage/infrastructure/migrations"
	transport "landingCms/internal/modules/homepage/interface"
	"landingCms/internal/platform/broker"
	"landingCms/internal/shared/auth"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closer, err := bootstrap()
		if err != nil {
			return err
		}
		defer closer.Close()
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply database migrations before serving")
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate && a.chain.Pool != nil {
		if err := migrations.RunMigrationsUp(ctx, a.chain.Pool); err != nil {
			return err
		}
	}

	hub := infrastructure.NewHub()
	defer hub.Close()
	relay := infrastructure.NewLiveViewRelay(hub, a.bus, a.resolver, cfg.Homepage.SiteID)
	if err := relay.Start(); err != nil {
		return err
	}
	defer relay.Stop()
	commands := infrastructure.NewCommandProcessor(hub, nil)
	relay.RegisterCommands(commands)

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		bridge := broker.NewInvalidationBridge(a.origin, cfg.Homepage.SiteID, a.bus, a.resolver, publisher)
		if err := bridge.Start(); err != nil {
			return err
		}
		defer bridge.Stop()
		registry := broker.NewHandlerRegistry()
		registry.Register(bridge)
		group := broker.InstanceGroupID(cfg.Kafka.GroupID, a.origin)
		broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, group, []string{cfg.Kafka.Topic})
		slog.Info("kafka invalidation enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.Topic), slog.String("group", group))
	}

	var validator auth.TokenValidator
	if v, err := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey); err != nil {
		return err
	} else if v.Configured() {
		validator = v
	} else {
		slog.Warn("admin api disabled, no JWT key configured")
	}

	pingers := map[string]transport.Pinger{}
	if a.chain.Postgres != nil {
		pingers[infrastructure.PostgresAdapterName] = a.chain.Postgres
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	transport.RegisterRoutes(e, transport.Routes{
		Read:      transport.NewReadHandlers(a.resolver, pingers, hub.ClientCount),
		Admin:     transport.NewAdminHandlers(a.editor),
		AdminAuth: transport.AdminAuth(validator, cfg.Security.AdminRole),
		Websocket: transport.NewWebsocketHandler(hub, relay, commands, cfg.Homepage.SiteID, cfg.Websocket.SendBuffer),
	})

	res := a.resolver.ResolveDetailed(ctx)
	slog.Info("homepage warmed", slog.String("source", res.Source), slog.Bool("stale", res.Stale), slog.String("origin", a.origin))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
