// Package main provides the legalai CLI: a terminal client for the
// legal-document assistant backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ggokuldas06/LegalAI/internal/api"
	"github.com/ggokuldas06/LegalAI/internal/config"
	"github.com/ggokuldas06/LegalAI/internal/credstore"
	"github.com/ggokuldas06/LegalAI/internal/documents"
	"github.com/ggokuldas06/LegalAI/internal/history"
	"github.com/ggokuldas06/LegalAI/internal/logging"
	"github.com/ggokuldas06/LegalAI/internal/session"
)

var (
	// Global flags
	verbose    bool
	baseURL    string
	configPath string

	// Wired in PersistentPreRunE, shared by every command.
	cfg       config.Config
	logger    *zap.Logger
	creds     credstore.Store
	apiClient *api.Client
	sess      *session.Session
	docStore  *documents.Store
	histStore *history.Store
)

// rootCmd is the base command; run without arguments it launches the
// interactive chat.
var rootCmd = &cobra.Command{
	Use:   "legalai",
	Short: "LegalAI - terminal client for the legal document assistant",
	Long: `legalai talks to the LegalAI backend: log in once, then chat with the
assistant about your uploaded documents, classify clauses, or research
case law, and manage documents and chat history.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// initApp loads config and wires the credential store, pipeline and
// stores. The credential store is opened first; it seeds the initial
// authenticated state everything else reads.
func initApp() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger = logging.New(level, cfg.Logging.File)

	tokenPath, err := credstore.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolving token path: %w", err)
	}
	creds, err = credstore.NewFileStore(tokenPath)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	apiClient = api.New(cfg.API.BaseURL, creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.RequestTimeout()),
	)
	sess = session.New(apiClient, creds, logger)
	docStore = documents.NewStore(apiClient)
	histStore = history.NewStore(apiClient)
	return nil
}

// requireLogin guards commands that only make sense when logged in.
func requireLogin() error {
	if !sess.Authenticated() {
		return fmt.Errorf("not logged in; run 'legalai auth login' first")
	}
	return nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := apiClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}
		fmt.Printf("Backend %s: %s\n", apiClient.BaseURL(), hs.Status)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.legalai/config.yaml)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(orgCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
