package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/yourorg/checkout-relay/internal/config"
)

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "checkout-relay",
		Short:         "Relay between the checkout UI and the Klarna and Paytrail APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")
	root.AddCommand(newServeCmd(&configFile), newConfigCmd(&configFile))
	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddr = addr
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			shutdownTracing, err := setupTracing(cfg)
			if err != nil {
				return err
			}
			defer shutdownTracing()

			if cfg.SentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
					return fmt.Errorf("initialising sentry: %w", err)
				}
				defer sentry.Flush(2 * time.Second)
			}

			srv, err := buildServer(cfg, log)
			if err != nil {
				log.WithError(err).Error("relay setup failed")
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, cfg.ServerAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides SERVER_ADDR)")
	return cmd
}

func newConfigCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the public configuration view",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			orch, err := buildOrchestrator(cfg, log)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(orch.Config(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
