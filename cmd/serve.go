package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.Addr = addr
		}
		gin.SetMode(a.cfg.GinMode)

		router := server.NewRouter(server.Deps{
			Practice:    a.practice,
			Recommender: a.recommender,
			Chat:        a.chat,
			Metrics:     a.metrics,
			Ping:        func(ctx context.Context) error { return a.store.DB().PingContext(ctx) },
			CORSOrigins: a.cfg.CORSOrigins,
			Log:         a.log.Named("http"),
		})

		a.log.Info("starting statlab",
			zap.String("version", version),
			zap.String("db", a.cfg.DBPath),
			zap.Bool("llm", a.provider != nil),
			zap.Bool("generate", a.practice.CanGenerate()),
			zap.Bool("generate_on_miss", a.practice.GeneratesOnMiss()))

		return server.New(router, a.cfg.Addr, a.cfg.ShutdownTimeout, a.log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides STATLAB_ADDR)")
}
