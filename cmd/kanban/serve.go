package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amonks/kanban/internal/config"
	"github.com/amonks/kanban/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP for `kanban --server` clients",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, "+config.DefaultServerAddr+")")
}

func runServe(cmd *cobra.Command, args []string) error {
	if rootServer != "" {
		return errors.New("serve cannot be combined with --server")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if logger.GetLevel() < logrus.InfoLevel {
		logger.SetLevel(logrus.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, values, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer values.Close()

	srv, err := server.New(server.Options{Store: store, Logger: logger})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return srv.ServeContext(ctx, addr)
}
