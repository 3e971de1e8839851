package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/productimport/internal/cache"
	"github.com/JonMunkholm/productimport/internal/config"
	"github.com/JonMunkholm/productimport/internal/importer"
	"github.com/JonMunkholm/productimport/internal/logging"
	"github.com/JonMunkholm/productimport/internal/media"
	"github.com/JonMunkholm/productimport/internal/product"
	"github.com/JonMunkholm/productimport/internal/store/postgres"
	"github.com/JonMunkholm/productimport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logFile := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logFile.Close()

	slog.Info("configuration loaded", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		logFile.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("schema applied")
	}

	store := postgres.New(pool,
		postgres.WithLogger(slog.Default().With("component", "store")),
		postgres.WithDefaultManageStock(cfg.Import.ManageStock),
	)

	var taxonomies importer.TaxonomyResolver = store
	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("taxonomy cache unavailable, lookups go to the database", "addr", cfg.Cache.Addr, "error", err)
		}
		taxonomies = cache.NewTaxonomyCache(store, rdb, cfg.Cache.TTL, slog.Default().With("component", "cache"))
		slog.Info("taxonomy cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	}

	var images importer.ImageFetcher = media.Disabled{}
	if cfg.Media.MediaEnabled() {
		uploader, err := media.NewS3Uploader(ctx, cfg.Media.Region, cfg.Media.Endpoint)
		if err != nil {
			return err
		}
		fetcher := media.NewHTTPFetcher(cfg.Media.FetchTimeout, cfg.Media.FetchRate, cfg.Media.FetchBurst)
		images = media.NewImageStore(fetcher, uploader, store, media.Options{
			Bucket:   cfg.Media.Bucket,
			Prefix:   cfg.Media.Prefix,
			MaxBytes: cfg.Media.MaxBytes,
			Logger:   slog.Default().With("component", "media"),
		})
		slog.Info("image import enabled", "bucket", cfg.Media.Bucket, "region", cfg.Media.Region)
	}

	loc, err := cfg.Import.Location()
	if err != nil {
		return err
	}

	deps := importer.Deps{
		Products:    store,
		Taxonomies:  taxonomies,
		Attachments: store,
		Images:      images,
		Settings:    store,
	}
	registry := product.NewRegistry()
	stockAmount := cfg.Import.StockAmount()

	server := web.NewServer(web.Deps{
		NewImporter: func(pos importer.Position, logger *slog.Logger) web.RowImporter {
			return importer.New(deps, importer.Config{
				Registry:      registry,
				UploadBaseURL: cfg.Import.UploadBaseURL,
				Location:      loc,
				StockAmount:   stockAmount,
				Position:      pos,
				Logger:        logger,
			})
		},
		DB: pool,
	}, cfg)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Shutdown stops accepting requests; running imports finish their rows.
		if err := server.WaitForImports(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	slog.Info("server stopped")
	return nil
}
