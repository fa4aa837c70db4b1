package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the local admin dashboard",
	Long:  `Serve a local HTTP dashboard with poll stats, moderation actions and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRuntime()
		if err != nil {
			return err
		}
		defer r.Close()

		if r.cfg.Dashboard.Env == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		engine := gin.New()
		engine.Use(gin.Recovery())
		engine.Use(r.logger.GinLogger())
		handler := dashboard.NewHandler(r.session, r.client, r.zapLogger)
		handler.RegisterRoutes(engine)

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", r.cfg.Dashboard.Port),
			Handler: engine,
		}

		go func() {
			r.logger.Info("Starting dashboard",
				zap.Int("port", r.cfg.Dashboard.Port),
			)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				r.logger.Fatal("Failed to start dashboard", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		r.logger.Info("Shutting down dashboard...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("Dashboard forced to shutdown", err)
			return fmt.Errorf("dashboard shutdown: %w", err)
		}

		r.logger.Info("Dashboard exited properly")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
