package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/server"
	"github.com/de-tools/case-atlas/pkg/services/config"
	"github.com/de-tools/case-atlas/pkg/store/duckdb"
	"github.com/de-tools/case-atlas/pkg/store/duckdb/runs"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Case Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	deps := server.Dependencies{}

	registry, err := config.NewRegistry(cfg.ProfilesPath)
	if err != nil {
		logger.Warn().Err(err).Msg("report profiles not loaded")
	} else {
		deps.Registry = registry
		logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfg.ProfilesPath)
		profiles, _ := registry.GetProfiles(ctx)
		for _, profile := range profiles {
			logger.Info().Msgf("Profile: `%s`", profile)
		}
	}

	if cfg.History.DBPath != "" {
		db, err := duckdb.NewDB(duckdb.Settings{
			DbPath:  cfg.History.DBPath,
			Threads: cfg.History.Threads,
		})
		if err != nil {
			return fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		defer db.Close()

		archive, err := runs.NewStore(db)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
		deps.Archive = archive
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return fmt.Errorf("missing SERVER_HOST or SERVER_PORT in the environment")
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:         net.JoinHostPort(host, port),
		Dependencies: deps,
	})
	return api.Start()
}
