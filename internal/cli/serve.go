package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/msomdec/catalog-admin/internal/config"
	"github.com/msomdec/catalog-admin/internal/domain"
	"github.com/msomdec/catalog-admin/internal/handler"
	"github.com/msomdec/catalog-admin/internal/repository/sqlite"
	"github.com/msomdec/catalog-admin/internal/rewrite"
	"github.com/msomdec/catalog-admin/internal/service"
	"github.com/msomdec/catalog-admin/internal/storage"
)

const (
	// Five login or registration attempts per IP, refilling one per 12s.
	loginRate  = 1.0 / 12
	loginBurst = 5

	shutdownTimeout = 5 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				opts.Config.Port = opts.Port
			}
			return opts.run(cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func (o *ServeOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := o.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := o.openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	assets, err := newAssetStore(ctx, cfg, db)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := handler.NewMetrics(reg)
	if err != nil {
		return err
	}

	limiter := service.NewTokenBucket(loginRate, loginBurst)
	defer limiter.Close()

	rewriter := rewrite.NewClient(rewrite.Config{
		APIKey:          cfg.Rewrite.APIKey,
		BaseURL:         cfg.Rewrite.BaseURL,
		Model:           cfg.Rewrite.Model,
		Timeout:         cfg.Rewrite.Timeout,
		BannedWordsPath: cfg.Rewrite.BannedWordsPath,
	})
	if !rewriter.Enabled() {
		slog.Warn("no DEEPSEEK_API_KEY or OPENAI_API_KEY set; copy rewrite will echo its input")
	}

	opts := handler.Options{
		CookieSecure:    cfg.CookieSecure,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		UploadURLPrefix: cfg.UploadURLPrefix,
		LoginLimiter:    limiter,
		Metrics:         metrics,
		DB:              db.SqlDB,
	}
	switch a := assets.(type) {
	case *storage.LocalStore:
		opts.UploadDir = a.Root()
	case *sqlite.AssetStore:
		opts.Assets = a
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.New(handler.Services{
			Auth:       service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost),
			Categories: service.NewCategoryService(db.Categories(), db.Materials()),
			Catalog:    service.NewCatalogService(db.Materials(), db.Categories(), assets),
			Secrets:    service.NewSecretService(db.Secrets()),
			Rewriter:   rewriter,
		}, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func newAssetStore(ctx context.Context, cfg *config.Config, db *sqlite.DB) (domain.AssetStore, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		return db.Assets(cfg.UploadURLPrefix), nil
	case config.StorageS3:
		opts := storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			KeyPrefix: "uploads",
			PublicURL: cfg.S3.PublicURL,
		}
		client, err := storage.NewS3Client(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return storage.NewS3Store(client, opts), nil
	default:
		return storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix), nil
	}
}
