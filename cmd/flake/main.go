package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/flake/internal/cmd/client"
	serverrun "github.com/rzbill/flake/internal/cmd/server"
	pebblestore "github.com/rzbill/flake/internal/storage/pebble"
	logpkg "github.com/rzbill/flake/pkg/log"
)

func main() {
	// CLI logger; server start builds its own from the loaded config.
	level := os.Getenv("FLAKE_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	rootCmd := &cobra.Command{
		Use:           "flake",
		Short:         "flake id service CLI",
		Long:          "flake issues 64-bit, time-ordered ids. This CLI runs the server and talks to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServerCommand(), serverrun.NewWatermarkCommand())
	clientcmd.Register(rootCmd, clientcmd.HTTPURLFromEnv)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

func newServerCommand() *cobra.Command {
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start flake server (gRPC and HTTP)",
		Aliases: []string{"run"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode, err := pebblestore.ParseFsyncMode(fsyncMode)
			if err != nil {
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}
			// Flags win over FLAKE_LOG_* which win over the file.
			if logLevel != "" {
				_ = os.Setenv("FLAKE_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("FLAKE_LOG_FORMAT", logFormat)
			}
			cfg, err := clientcmd.LoadEffective(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				GRPCAddr:      grpcAddr,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("grpc", ":50051", "gRPC listen address (empty disables)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address (empty disables)")
	serverStartCmd.Flags().String("config", os.Getenv("FLAKE_CONFIG"), "Config file (yaml or json)")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", "", "Log level: debug|info|warn|error (overrides FLAKE_LOG_LEVEL)")
	serverStartCmd.Flags().String("log-format", "", "Log format: text|json (overrides FLAKE_LOG_FORMAT)")
	serverCmd.AddCommand(serverStartCmd)
	return serverCmd
}
