package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/japaniel/milim/pkg/config"
	"github.com/japaniel/milim/pkg/db"
	"github.com/japaniel/milim/pkg/ingest"
	"github.com/japaniel/milim/pkg/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.config()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// serve runs the HTTP server until ctx is done. The concordance is built in
// the background; a failed build only leaves the occurrence sections empty.
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Env == config.EnvDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := loadCorpus(ctx, cfg, logger)
	if err != nil {
		return err
	}
	conn, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	srv := web.New(c, web.Options{
		DB:       conn,
		Logger:   logger.Named("http"),
		PageSize: cfg.PageSize,
		PageStep: cfg.PageStep,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ig := ingest.NewIngester(conn, srv.Analyzer())
		ig.Workers = cfg.Workers
		ig.Logger = logger.Named("ingest")
		if _, err := ig.IndexCorpus(gctx, c.Texts); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("concordance build failed", zap.Error(err))
			}
			return nil
		}
		if links, err := db.CountLinks(conn); err == nil {
			logger.Info("concordance ready", zap.Int("links", links))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.Int("words", len(c.Vocabulary)),
			zap.Int("surfaces", srv.Analyzer().Index().Len()),
			zap.Int("texts", len(c.Texts)))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
