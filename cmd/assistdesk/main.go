// Package main provides the assistdesk CLI entry point. assistdesk manages
// document-grounded assistants hosted behind an HTTP backend: multiple
// upstream credentials ("projects"), per-assistant conversations, and
// usage/cost analytics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"assistdesk/internal/config"
	"assistdesk/internal/logger"
	"assistdesk/internal/services"
	"assistdesk/internal/storage"
	"assistdesk/internal/store"
	"assistdesk/internal/version"
)

var (
	logLevel string
	logFile  string
)

// app bundles the wired orchestration layer for the command handlers.
type app struct {
	cfg         *config.Config
	store       *store.Store
	credentials *services.CredentialService
	assistants  *services.AssistantService
	sessions    *services.ChatSessionService
	messaging   *services.MessagingService
	analytics   *services.AnalyticsService
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "assistdesk",
	Short: "assistdesk - manage hosted document assistants",
	Long: `assistdesk is a client for a hosted assistant backend. It manages upstream
credential projects, document-grounded assistants, their conversations, and
aggregated usage and cost analytics.`,
	SilenceUsage: true,
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log to file instead of stderr")
	rootCmd.PersistentFlags().String("backend-url", "", "Backend base URL (overrides ADESK_BACKEND_URL)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides ADESK_DB)")

	viper.SetEnvPrefix("ADESK")
	_ = viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newAssistantCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newStatsCmd())
}

// setup wires the whole orchestration layer: configuration, persistence, the
// shared state store, and the services, then bootstraps the credential store.
func setup() (*app, error) {
	if err := logger.Configure(logLevel, logFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if v := viper.GetString("backend_url"); v != "" {
		cfg.BackendURL = v
	}
	if v := viper.GetString("db"); v != "" {
		cfg.DatabasePath = v
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open project database: %w", err)
	}
	repo := storage.NewProjectRepository(db)

	st := store.New()
	if cfg.SessionToken != "" {
		st.SetSessionToken(cfg.SessionToken)
	}

	gateway := services.NewGatewayService(cfg.BackendURL, st)
	gateway.SetTimeout(cfg.Timeout)

	probe := services.NewProbeService(cfg.UpstreamURL)
	probe.SetTimeout(cfg.Timeout)

	creation := services.NewCreationService(st, gateway)
	sessions := services.NewChatSessionService(st, gateway)
	assistants := services.NewAssistantService(st, gateway, creation, sessions)
	messaging := services.NewMessagingService(st, gateway)
	analytics := services.NewAnalyticsService(st, gateway)
	credentials := services.NewCredentialService(st, repo, probe)
	credentials.AttachInvalidation(assistants, sessions)

	registry := services.NewRegistry()
	for _, svc := range []services.Service{
		gateway, probe, creation, sessions, assistants, messaging, analytics, credentials,
	} {
		if err := registry.RegisterService(svc); err != nil {
			return nil, err
		}
	}
	if err := registry.InitializeAll(); err != nil {
		return nil, err
	}

	if err := credentials.Bootstrap(cfg.FallbackAPIKey); err != nil {
		return nil, fmt.Errorf("failed to bootstrap credential store: %w", err)
	}

	return &app{
		cfg:         cfg,
		store:       st,
		credentials: credentials,
		assistants:  assistants,
		sessions:    sessions,
		messaging:   messaging,
		analytics:   analytics,
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
