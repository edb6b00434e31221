package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"apdash-backend/internal/assistant"
	"apdash-backend/internal/config"
	"apdash-backend/internal/server"
	"apdash-backend/internal/types"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd(cfg config.Config, log *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "apdash-server",
		Short:         "Accounts-payable insights assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, log)
		},
	}
	root.PersistentFlags().StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "path to a catalog YAML file (default: embedded)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg, log)
		},
	}
	serve.Flags().StringVar(&cfg.Port, "port", cfg.Port, "listen port")
	serve.Flags().DurationVar(&cfg.ResponseDelay, "delay", cfg.ResponseDelay, "typing delay before replies are appended")

	ask := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Resolve a query against the catalog and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := assistant.LoadCatalogFile(cfg.CatalogFile)
			if err != nil {
				return err
			}
			p, rule := assistant.NewQueryResolver(c).Match(strings.Join(args, " "))
			return printJSON(cmd, types.ResolveResponse{Payload: p, Rule: rule})
		},
	}

	action := &cobra.Command{
		Use:   "action <action-id>",
		Short: "Resolve an action id and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := assistant.LoadCatalogFile(cfg.CatalogFile)
			if err != nil {
				return err
			}
			return printJSON(cmd, assistant.NewActionResolver(c).Resolve(args[0]))
		},
	}

	root.AddCommand(serve, ask, action)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServe(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := server.NewServer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":   srv.Addr,
			"delay":  cfg.ResponseDelay,
			"policy": cfg.SupersedePolicy,
		}).Info("AP insights server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
