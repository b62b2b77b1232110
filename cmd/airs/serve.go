package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/airs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the incident classifier over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine()
		if err != nil {
			logger.Error("failed to load engine", zap.Error(err))
			return err
		}
		defer func() {
			if err := eng.Close(); err != nil {
				logger.Warn("engine close", zap.Error(err))
			}
		}()

		if os.Getenv("GIN_MODE") == "" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx := cmd.Context()
		router := server.NewRouter(ctx, eng, server.Options{
			DefaultModel: cfg.Engine.DefaultModel,
			RateLimitRPS: cfg.Server.RateLimitRPS,
			BodyLimit:    cfg.Server.BodyLimit,
		}, logger)

		logger.Info("airs starting",
			zap.String("version", versionString()),
			zap.String("addr", cfg.Server.Addr),
			zap.String("default_model", cfg.Engine.DefaultModel),
		)
		if err := server.Serve(ctx, cfg.Server.Addr, router, cfg.Server.ShutdownTimeout, logger); err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().Int("rate-limit", 0, "per-IP requests per second (0 disables)")
	bindFlag(serveCmd, "server.addr", "addr")
	bindFlag(serveCmd, "server.rate_limit_rps", "rate-limit")
}
