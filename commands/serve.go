package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"recipe-api/auth"
	"recipe-api/config"
	"recipe-api/controllers"
	"recipe-api/database"
	"recipe-api/filters"
	grpcserver "recipe-api/grpc_server"
	reg "recipe-api/registry"
	"recipe-api/repositories"
	"recipe-api/services"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// serveCmd starts the HTTP and gRPC listeners
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Long: `Wait for the database, migrate the schema and serve the API.

HTTP listens on http_port, gRPC on grpc_port. With consul.enabled both
listeners are registered with the local Consul agent and removed again on
shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), config.AppConfig, logger)
	},
}

// app is the wired application: one set of services behind both transports.
type app struct {
	container *restful.Container
	grpc      *grpcserver.Server
}

func newApp(db *gorm.DB, cfg config.Config, log *zap.Logger, registry reg.ServiceRegistry) *app {
	repos := repositories.NewManager()
	users := services.NewUserService(repos.Users(db))
	recipes := services.NewRecipeService(db, repos)
	authenticator := auth.NewAuthenticator(auth.NewTokenManager(cfg.JwtSecret, cfg.TokenTTL, cfg.ServiceName), users)

	var metrics *filters.Metrics
	if cfg.Metrics.Enabled {
		promRegistry := prometheus.NewRegistry()
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = filters.NewMetrics(promRegistry, promRegistry)
	}

	container := controllers.NewContainer(controllers.Services{
		DB:            db,
		Authenticator: authenticator,
		Users:         users,
		Recipes:       recipes,
		Categories:    services.NewCategoryService(repos.Categories(db)),
		Ingredients:   services.NewIngredientService(repos.Ingredients(db)),
	}, log, metrics)

	grpcServer := grpcserver.NewServer(grpcserver.Deps{
		Authenticator: authenticator,
		Users:         users,
		Recipes:       recipes,
		Registry:      registry,
		Logger:        log.Named("grpc"),
	})

	return &app{container: container, grpc: grpcServer}
}

func runServe(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.InsecureSecret() {
		log.Warn("jwt_secret is the built-in default, set RECEITA_JWT_SECRET")
	}

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Database.WaitTimeout)
	db, err := database.WaitForDB(waitCtx, cfg.Database, time.Second, log)
	cancel()
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	var registry reg.ServiceRegistry
	if cfg.Consul.Enabled {
		registry, err = reg.NewConsulRegistry(cfg.Consul.Address, log.Sugar())
		if err != nil {
			return err
		}
	}

	a := newApp(db, cfg, log, registry)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.container,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port %d: %w", cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("gRPC server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := a.grpc.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	withdraw := func(context.Context) {}
	if registry != nil {
		if w, regErr := reg.Announce(ctx, registry, instances(cfg)...); regErr != nil {
			log.Warn("Service registration failed, continuing unregistered", zap.Error(regErr))
		} else {
			withdraw = w
		}
	}

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-errCh:
		log.Error("Server failed, shutting down", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	withdraw(shutdownCtx)
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("HTTP shutdown", zap.Error(shutdownErr))
	}
	a.grpc.GracefulStop()
	return err
}

// instances describes the two listeners for Consul.
func instances(cfg config.Config) []reg.Instance {
	httpID := reg.InstanceID(cfg.ServiceName, cfg.ServiceHost, cfg.HTTPPort)
	grpcName := cfg.ServiceName + "-grpc"
	grpcID := reg.InstanceID(grpcName, cfg.ServiceHost, cfg.GRPCPort)

	return []reg.Instance{
		{
			ID:      httpID,
			Name:    cfg.ServiceName,
			Address: cfg.ServiceHost,
			Port:    cfg.HTTPPort,
			Tags:    []string{"http"},
			Check:   reg.CreateHTTPCheck(httpID, cfg.ServiceHost, cfg.HTTPPort, "/healthz", "10s", "2s"),
		},
		{
			ID:      grpcID,
			Name:    grpcName,
			Address: cfg.ServiceHost,
			Port:    cfg.GRPCPort,
			Tags:    []string{"grpc"},
			Check:   reg.CreateGRPCCheck(grpcID, fmt.Sprintf("%s:%d", cfg.ServiceHost, cfg.GRPCPort), "10s", "2s", false),
		},
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
