package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"parceldash/ui"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var variant, port, root, datasetFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard pages and API",
		Long: `Serve the dashboard. "/" maps to index.html and "/enhanced" to
index_enhanced.html; the session API lives under /api.

Example: parceldash serve --variant gin --port 8080 --root ./public`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("variant") {
				cfg.Server.Variant = variant
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("root") {
				cfg.Server.StaticRoot = root
			}
			if cmd.Flags().Changed("dataset") {
				cfg.Data.DatasetFile = datasetFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			static, err := ui.StaticRoot(cfg.Server.StaticRoot)
			if err != nil {
				return err
			}
			gin.SetMode(cfg.Server.GinMode)
			handler, err := ui.NewHandler(cfg.Server.Variant, ui.Options{
				Session: rt.session,
				Static:  static,
				Logger:  logger,
				CORS:    cfg.Server.CORSEnabled,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("[Server] %s variant listening on http://localhost%s", cfg.Server.Variant, srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("[Server] shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "chi", "server variant: chi or gin")
	cmd.Flags().StringVar(&port, "port", "3000", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&root, "root", "", "directory to serve instead of the bundled pages")
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "dataset file: json, yaml, xlsx or csv")
	return cmd
}
