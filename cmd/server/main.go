package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	adapterports "github.com/partnerhub/commission-service/internal/adapters/ports"
	"github.com/partnerhub/commission-service/internal/adapters/postgres"
	s3adapter "github.com/partnerhub/commission-service/internal/adapters/s3"
	"github.com/partnerhub/commission-service/internal/adapters/secrets"
	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/config"
	"github.com/partnerhub/commission-service/internal/handlers/api"
	balanceService "github.com/partnerhub/commission-service/internal/services/balance"
	commissionService "github.com/partnerhub/commission-service/internal/services/commission"
	documentService "github.com/partnerhub/commission-service/internal/services/document"
	payoutService "github.com/partnerhub/commission-service/internal/services/payout"
	"github.com/partnerhub/commission-service/pkg/logging"
	"github.com/partnerhub/commission-service/pkg/middleware"
	"github.com/partnerhub/commission-service/pkg/observability"
	"github.com/partnerhub/commission-service/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting commission service",
		zap.Int("port", cfg.Server.Port),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
	)

	ctx := context.Background()

	if err := resolveDBPassword(ctx, cfg, logger); err != nil {
		logger.Fatal("Failed to resolve database password", zap.Error(err))
	}

	dbAdapter, err := postgres.NewAdapter(ctx, &postgres.Config{
		DatabaseURL: databaseURL(&cfg.Database),
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	documentStore, err := s3adapter.NewDocumentStore(ctx, &s3adapter.Config{
		Region:       cfg.Documents.Region,
		Endpoint:     cfg.Documents.Endpoint,
		UsePathStyle: cfg.Documents.UsePathStyle,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize document store", zap.Error(err))
	}

	publicKeyPEM, err := os.ReadFile(cfg.Auth.JWTPublicKeyPath)
	if err != nil {
		logger.Fatal("Failed to read JWT public key", zap.Error(err))
	}
	verifier, err := auth.NewVerifier(publicKeyPEM, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal("Failed to initialize JWT verifier", zap.Error(err))
	}

	// Repositories
	commissionRepo := postgres.NewCommissionRepository()
	requestRepo := postgres.NewPaymentRequestRepository()
	sellerRepo := postgres.NewSellerRepository()
	tokenRepo := postgres.NewAccessTokenRepository()

	// Services
	portLogger := logging.NewZapLogger(logger)
	window := cfg.RequestWindow()
	commissions := commissionService.NewService(dbAdapter, commissionRepo, sellerRepo, portLogger, commissionService.Config{
		PendingIncludesReserved: cfg.Policy.PendingIncludesReserved,
	})
	balances := balanceService.NewService(dbAdapter, commissionRepo, requestRepo, sellerRepo, portLogger, window)
	payouts := payoutService.NewService(dbAdapter, commissionRepo, requestRepo, sellerRepo, portLogger, window)
	documents := documentService.NewService(dbAdapter, documentStore, tokenRepo, sellerRepo, portLogger)

	// HTTP surface
	authn := api.NewAuthenticator(verifier, logger)
	mux := api.Routes(
		api.NewSellerHandler(commissions, balances, payouts, logger),
		api.NewPayoutAdminHandler(payouts, logger),
		api.NewDocumentHandler(documents, logger),
		authn,
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      rateLimiter.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthChecker := observability.NewHealthChecker(dbAdapter.GetDB())
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker, logger)

	// Shutdown in reverse registration order: servers first, pool last.
	shutdownManager := shutdown.NewManager(logger, 30*time.Second)
	shutdownManager.RegisterNoErr("database", dbAdapter.Close)
	shutdownManager.RegisterNoErr("rate_limiter", rateLimiter.Shutdown)
	shutdownManager.RegisterHTTPServer("metrics_server", metricsServer)
	shutdownManager.RegisterHTTPServer("http_server", server)

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	shutdownManager.WaitForShutdown()
}

// resolveDBPassword swaps the configured secret path for its value when a
// secret manager backend is selected.
func resolveDBPassword(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Database.PasswordSecretPath == "" {
		return nil
	}

	manager, err := newSecretManager(ctx, &cfg.Secrets, logger)
	if err != nil {
		return err
	}
	if manager == nil {
		// Provider "env": the password already came from the environment.
		return nil
	}

	secret, err := manager.GetSecret(ctx, cfg.Database.PasswordSecretPath)
	if err != nil {
		return fmt.Errorf("failed to fetch database password: %w", err)
	}
	cfg.Database.Password = secret.Value
	return nil
}

func newSecretManager(ctx context.Context, cfg *config.SecretsConfig, logger *zap.Logger) (adapterports.SecretManagerAdapter, error) {
	switch cfg.Provider {
	case "env":
		return nil, nil
	case "local":
		return secrets.NewLocalSecretManager(cfg.LocalBasePath, logger), nil
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Endpoint = cfg.AWSEndpoint
		return secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.MountPath = cfg.VaultMountPath
		return secrets.NewVaultAdapter(ctx, vaultCfg, logger)
	default:
		return nil, fmt.Errorf("unknown secrets provider: %q", cfg.Provider)
	}
}

func databaseURL(db *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		db.Host, db.Port, db.Database, db.SSLMode,
	)
}

func initLogger(cfg config.LoggerConfig) *zap.Logger {
	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
