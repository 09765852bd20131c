package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/robby/lostfound/internal/devserver"
	"github.com/robby/lostfound/internal/logging"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	envSecret       = "LOSTFOUND_DEV_SECRET"
)

var (
	// CLI flags
	addrFlag     string
	dbFlag       string
	secretFlag   string
	tokenTTLFlag time.Duration
	logFileFlag  string
	logLevelFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lostfound-devserver",
		Short: "Local lost-and-found API for development",
		Long: `lostfound-devserver serves the lost-and-found REST API from a local
SQLite file, so the client can be used without the public service.

Point the client at it with:
  lostfound --base-url http://127.0.0.1:8080/api/v1`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&addrFlag, "addr", devserver.DefaultAddr, "Listen address")
	rootCmd.Flags().StringVar(&dbFlag, "db", "lostfound-dev.db", "SQLite database file")
	rootCmd.Flags().StringVar(&secretFlag, "secret", "", "Token signing key (default $"+envSecret+")")
	rootCmd.Flags().DurationVar(&tokenTTLFlag, "token-ttl", 24*time.Hour, "Lifetime of issued tokens")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Log to this file instead of stderr")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	secret := secretFlag
	if secret == "" {
		secret = os.Getenv(envSecret)
	}
	if secret == "" {
		return errors.New("a signing secret is required: pass --secret or set " + envSecret)
	}

	level, err := logging.ParseLevel(logLevelFlag)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, level)
	if logFileFlag != "" {
		if err := logging.Init(logFileFlag, logLevelFlag); err != nil {
			return err
		}
		defer logging.Close()
		logger = logging.WithPrefix("devserver")
	}

	srv, err := devserver.New(devserver.Config{
		DSN:      dbFlag,
		Secret:   secret,
		TokenTTL: tokenTTLFlag,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start dev server: %w", err)
	}

	go func() {
		if err := srv.Listen(addrFlag); err != nil {
			logger.Error("server stopped", "err", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"devserver": func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		},
	)
	if code := <-wait; code != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", code)
	}
	return nil
}
