package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saideep-g/blue-ninja/internal/api"
	"github.com/saideep-g/blue-ninja/internal/store"
	"github.com/saideep-g/blue-ninja/internal/sweeper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, false)
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve the HTTP API and run scheduled mission expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, true)
	},
}

func runServer(cmd *cobra.Command, withSweeper bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = rt.cfg.Server.Addr
	}
	srv := &http.Server{
		Addr: addr,
		Handler: api.NewRouter(api.Config{
			Engine:       rt.engine,
			Logger:       rt.logger,
			ServiceName:  rt.cfg.Telemetry.ServiceName,
			AllowOrigins: rt.cfg.Server.AllowOrigins,
			Health:       rt.health,
		}),
		ReadTimeout:  rt.cfg.Server.ReadTimeout,
		WriteTimeout: rt.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	if withSweeper {
		// The SQL-backed cache needs explicit purging; Redis expires keys itself.
		var purger sweeper.Purger
		if kv, ok := rt.kv.(*store.KV); ok {
			purger = kv
		}
		loc, err := rt.cfg.Day.Location()
		if err != nil {
			return err
		}
		sw, err := sweeper.New(sweeper.Config{
			ExpirySchedule: rt.cfg.Daemon.ExpirySchedule,
			PurgeSchedule:  rt.cfg.Daemon.PurgeSchedule,
			Location:       loc,
		}, rt.engine, purger, rt.logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			sw.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		rt.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rt.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	daemonCmd.Flags().String("addr", "", "Listen address (default from config)")
}
