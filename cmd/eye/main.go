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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	router "github.com/dkeye/MillenniumEye/internal/adapters/http"
	"github.com/dkeye/MillenniumEye/internal/adapters/capture"
	"github.com/dkeye/MillenniumEye/internal/adapters/janus"
	"github.com/dkeye/MillenniumEye/internal/adapters/rtc"
	"github.com/dkeye/MillenniumEye/internal/app/orch"
	"github.com/dkeye/MillenniumEye/internal/config"
	"github.com/dkeye/MillenniumEye/internal/media"
)

// feedKickLimit is how many consecutive snapshots a state feed client may
// miss before it is disconnected.
const feedKickLimit = 8

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string
	root := &cobra.Command{
		Use:           "eye",
		Short:         "Face and field camera calls through a Janus videocall gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
			if env != "" {
				_ = os.Setenv("CONFIG_ENV", env)
			}
		},
	}
	root.PersistentFlags().StringVar(&env, "env", "", "config environment (reads config/config.<env>.yaml)")
	root.AddCommand(newServeCmd(), newDevicesCmd())
	return root
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func applyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("log_level", level).Msg("unknown log level, keeping current")
		return
	}
	if lvl != zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(lvl)
		log.Info().Str("log_level", lvl.String()).Msg("log level applied")
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the gateway and serve the call control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}
	applyLogLevel(cfg.LogLevel)
	cfg.Watch(func(next *config.Config) { applyLogLevel(next.LogLevel) })

	api, err := rtc.NewAPI(rtc.Config(cfg.Gateway.ICEServers))
	if err != nil {
		log.Error().Err(err).Msg("failed to create webrtc api")
		return err
	}

	client, err := janus.Dial(ctx, janus.Config{
		URL:             cfg.Gateway.URL,
		KeepalivePeriod: cfg.Gateway.KeepalivePeriod,
		RequestTimeout:  cfg.Gateway.RequestTimeout,
	}, api)
	if err != nil {
		log.Error().Err(err).Str("url", cfg.Gateway.URL).Msg("failed to reach gateway")
		return err
	}
	defer client.Close()
	go func() {
		<-client.Done()
		if ctx.Err() == nil {
			log.Warn().Uint64("session", client.SessionID()).Msg("gateway session ended")
		}
	}()

	o := orch.New(client, orch.Options{
		Plugin:      cfg.Gateway.Plugin,
		OpaqueID:    cfg.Gateway.OpaqueIDPrefix + "-" + uuid.NewString(),
		Dual:        cfg.Call.DualChannel,
		FieldSuffix: cfg.Call.FieldSuffix,
		Policy:      orch.KickPolicy{Limit: feedKickLimit},
	})
	if err := o.Start(ctx); err != nil {
		// channels that failed to attach report CONNECTION_FAILED on the API
		log.Error().Err(err).Msg("channel attach failed")
	}

	r := router.SetupRouter(ctx, cfg, o, capture.NewLister())
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("state", o.State().String()).Msg("MillenniumEye started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		return err
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = o.Hangup(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List capture devices selectable for a call",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := capture.NewLister().ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			mics, cams := media.FilterDevices(all)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Microphones:")
			for _, d := range mics {
				fmt.Fprintf(out, "  %s\t%s\n", d.DeviceID, d.Label)
			}
			fmt.Fprintln(out, "Cameras:")
			for _, d := range cams {
				fmt.Fprintf(out, "  %s\t%s\n", d.DeviceID, d.Label)
			}
			return nil
		},
	}
}
