// Package main implements the perplex terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tgienger/perplex/internal/api"
	"github.com/tgienger/perplex/internal/config"
	"github.com/tgienger/perplex/internal/db"
	"github.com/tgienger/perplex/internal/logging"
	"github.com/tgienger/perplex/internal/query"
	"github.com/tgienger/perplex/internal/session"
	"github.com/tgienger/perplex/internal/ui"
	"github.com/tgienger/perplex/internal/ui/styles"
)

var errNotTerminal = errors.New("perplex needs an interactive terminal")

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "perplex",
	Short:        "Perplex - meeting agendas in the terminal",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runApp,
}

var (
	apiFlag    string
	configFlag string
	debugFlag  bool
)

func init() {
	rootCmd.Flags().StringVar(&apiFlag, "api", "", "API base URL (overrides config)")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "config file to use instead of the default locations")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "write debug records to the log file")
	setFlagAliases(rootCmd.Flags(), globalFlagAliases)
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadFiles(configFlag)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		cfg, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	if apiFlag != "" {
		cfg.API.URL = apiFlag
	}
	return cfg, cfg.Validate()
}

func runApp(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath, err := logging.DefaultPath()
	if err != nil {
		return err
	}
	logger, logFile, err := logging.Open(logPath, debugFlag)
	if err != nil {
		return err
	}
	defer logFile.Close()

	theme, err := styles.ThemeByName(cfg.Theme())
	if err != nil {
		return err
	}
	styles.Current = theme

	dbPath, err := db.DefaultPath()
	if err != nil {
		return err
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer database.Close()
	prefs := db.NewPreferences(database, logger)

	// Validate already parsed both durations
	timeout, _ := cfg.Timeout()
	delay, _ := cfg.RetryDelay()

	client := api.NewClient(cfg.APIURL(), cfg.API.Token,
		api.WithTimeout(timeout),
		api.WithLogger(logger),
	)
	cache := query.NewCache(query.RetryPolicy{Retries: cfg.Retries(), Delay: delay}, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sess := session.New(ctx, client, cache, cfg.API.UID, logger)
	defer sess.Close()

	logger.Info("starting", "api", cfg.APIURL(), "version", version)
	app := ui.NewApp(sess, prefs, time.Now)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
