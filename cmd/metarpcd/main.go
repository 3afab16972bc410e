// Command metarpcd runs the Server Runtime against a MySQL-backed Engine
// Adapter, listening for RPC requests over HTTP.
package main

import (
	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"

	"github.com/metarpc/metarpc"
	"github.com/metarpc/metarpc/engine/sqlengine"
	"github.com/metarpc/metarpc/session"
)

func main() {
	logger := slog.Default()

	cfg, err := metarpc.LoadConfig()
	if err != nil {
		logger.Error("failed loading configuration", "err", err)
		os.Exit(1)
	}

	eng, err := sqlengine.Open("mysql", cfg.EngineDSN, logger)
	if err != nil {
		logger.Error("failed opening engine", "err", err)
		os.Exit(1)
	}

	store := session.NewStore(
		cfg.ConnectionCapacity, cfg.ConnectionTTL,
		cfg.StatementCapacity, cfg.StatementTTL,
		logger,
	)

	srv, err := metarpc.NewServer(eng,
		metarpc.WithLogger(logger),
		metarpc.WithMaxHeaderBytes(cfg.MaxHeaderBytes),
		metarpc.WithSessionStore(store),
	)
	if err != nil {
		logger.Error("failed constructing server", "err", err)
		os.Exit(1)
	}

	logger.Info("starting metarpcd", "addr", cfg.ListenAddress)
	if err := srv.ListenAndServe(cfg.ListenAddress); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}
