package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Skufu/heartcheck/internal/app"
	"github.com/Skufu/heartcheck/internal/config"
	"github.com/Skufu/heartcheck/internal/logging"
	"github.com/Skufu/heartcheck/internal/server"
)

var (
	verbose bool
	variant string
)

var rootCmd = &cobra.Command{
	Use:   "heartcheck",
	Short: "Heart disease predictor form",
	Long: `heartcheck collects thirteen clinical measurements, runs them through a
pre-trained classifier and reports whether the model predicts heart disease.

Run without arguments to serve the web form.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and JSON API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "form variant (standard, plain); overrides FORM_VARIANT")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config and logger and builds the application context.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config error: %w", err)
	}
	if variant != "" {
		cfg.FormVariant = variant
	}

	logger, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, nil, nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, a, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer a.Close()

	gin.SetMode(cfg.GinMode)
	router, err := server.NewRouter(a, server.Options{StaticDir: cfg.StaticDir})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
