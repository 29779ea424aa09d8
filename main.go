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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-backend/internal/app"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/logging"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "library-backend",
		Short:         "Library circulation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		// サブコマンド無しなら serve
		RunE: runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the YAML config")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the database tables if they do not exist",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup は設定・ロガー・DB 接続をまとめて用意する
func setup() (*db.Config, *zap.Logger, *db.DB, error) {
	cfg, err := db.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logging.New(cfg.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, nil, err
	}
	zap.ReplaceGlobals(log)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	log.Info("connected to DB", zap.String("driver", string(cfg.DB.Driver)), zap.String("dbname", cfg.DB.DBName))
	return cfg, log, conn, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	_, log, conn, err := setup()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer log.Sync()

	if err := db.Migrate(cmd.Context(), conn); err != nil {
		return err
	}
	log.Info("schema is up to date")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, conn, err := setup()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer log.Sync()

	clk, err := clock.NewReal(cfg.Server.TimeZone)
	if err != nil {
		return err
	}

	if cfg.DB.Driver == db.DialectSQLite {
		// 開発用の SQLite はその場でテーブルを作る
		if err := db.Migrate(cmd.Context(), conn); err != nil {
			return err
		}
	}

	r := app.NewRouter(app.Deps{
		DB:    conn,
		Log:   log,
		Clock: clk,
		IDs:   clock.NewULID(),
		Mode:  cfg.Mode,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			log.Info("listening (TLS)", zap.String("addr", cfg.Server.Addr), zap.String("mode", cfg.Mode))
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("mode", cfg.Mode))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
