package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"imagerelay/internal/http/handlers"
	httpapi "imagerelay/internal/http/httpapi"
	"imagerelay/internal/imagegen"
	"imagerelay/internal/infra"
	"imagerelay/internal/infra/credentials"
	"imagerelay/internal/relay"
	"imagerelay/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	creds := credentials.NewStore(cfg.ClientAPIKey, cfg.ServerAPIKey)
	clientKey, _ := creds.ClientKey(ctx)
	if clientKey == "" {
		logger.Warn().Msg("API_CLIENT_KEY is not set, every relay request will be rejected")
	}
	if serverKey, _ := creds.ServerKey(ctx); serverKey == "" {
		logger.Warn().Msg("API_SERVER_KEY is not set")
	}

	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialise storage")
	}

	generator := imagegen.NewClient(imagegen.Options{
		BaseURL:     cfg.GenerationURL,
		Credentials: creds,
		Timeout:     cfg.GenerationTimeout,
	})
	service := relay.NewService(generator, store, logger)

	action := relay.NewClient(relay.ClientOptions{
		BaseURL: cfg.RelayURL,
		APIKey:  clientKey,
		Logger:  logger,
	})

	app := handlers.NewApp(cfg, logger, creds, service, action)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("storage", cfg.StorageDriver).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newObjectStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (storage.ObjectStore, error) {
	if cfg.StorageDriver == infra.StorageDriverS3 {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			ACL:           cfg.S3ObjectACL,
			UsePathStyle:  cfg.S3UsePathStyle,
		}, logger)
	}
	return storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
}
