package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/napolitain/citysim/internal/journal"
	"github.com/napolitain/citysim/internal/loader"
	"github.com/napolitain/citysim/internal/metrics"
	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/scenario"
	"github.com/napolitain/citysim/internal/server"
	"github.com/napolitain/citysim/internal/sim"
	"github.com/napolitain/citysim/internal/tui"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	journalPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "citysim",
		Short: "Tile-based city economy simulator",
		Long: `Simulates a grid city: place and bulldoze buildings, collect revenue
under police, fire and hospital coverage, and ride out the timed crises.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory holding city.yaml (used when --config is empty)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML city config (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", "", "Path to a SQLite event journal (disabled when empty)")

	rootCmd.AddCommand(newRunCmd(), newServeCmd(), newWatchCmd(), newCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func loadConfig() (*models.Config, error) {
	if configFile == "" && dataDir != "" {
		return loader.LoadConfigDir(dataDir)
	}
	return loader.LoadConfig(configFile)
}

func openJournal() (*journal.Store, error) {
	if journalPath == "" {
		return nil, nil
	}
	return journal.Open(journalPath)
}

func newRunCmd() *cobra.Command {
	var (
		asJSON bool
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a scripted scenario and print the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg, err := newLogger()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := loader.LoadScenario(args[0])
			if err != nil {
				return err
			}

			store, err := openJournal()
			if err != nil {
				return err
			}
			var opts []sim.Option
			var j *journal.Journal
			if store != nil {
				defer store.Close()
				j = store.Session(uuid.NewString())
				opts = append(opts, sim.WithObserver(j))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			slog.SetDefault(lg)
			start := time.Now()
			report, city, err := scenario.Run(ctx, cfg, s, opts...)
			if err != nil {
				return err
			}
			lg.Debug("scenario finished", "scenario", s.Name, "wall", time.Since(start))
			if j != nil {
				if err := j.Err(); err != nil {
					lg.Warn("journal write failed", "error", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report, city, quiet)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary")
	return cmd
}

func newServeCmd() *cobra.Command {
	var accessLog bool
	cfg, envErr := server.FromEnv()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cities over HTTP with a websocket render feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			lg, err := newLogger()
			if err != nil {
				return err
			}
			base, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			m := metrics.NewMetrics(nil)
			mgr := server.NewManager(base, cfg, m, store, lg)
			var access io.Writer
			if accessLog {
				access = os.Stdout
			}
			srv := server.New(cfg, lg, mgr, m, access)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address (env CITYSIM_ADDR)")
	cmd.Flags().DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Real-time tick interval, 0 disables (env CITYSIM_TICK)")
	cmd.Flags().IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "Maximum concurrent cities (env CITYSIM_MAX_SESSIONS)")
	cmd.Flags().BoolVar(&accessLog, "access-log", false, "Write Apache-style access lines to stdout")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		interval     time.Duration
		scenarioFile string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Play a city interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openJournal()
			if err != nil {
				return err
			}
			var opts []sim.Option
			if store != nil {
				defer store.Close()
				opts = append(opts, sim.WithObserver(store.Session(uuid.NewString())))
			}
			city, err := sim.NewCity(cfg, opts...)
			if err != nil {
				return err
			}
			model := tui.New(city, interval)
			if scenarioFile != "" {
				s, err := loader.LoadScenario(scenarioFile)
				if err != nil {
					return err
				}
				runner, err := scenario.NewRunner(city, s, slog.New(slog.NewTextHandler(io.Discard, nil)))
				if err != nil {
					return err
				}
				model = model.WithRunner(runner)
			}
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Wall time between ticks")
	cmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "", "Drive the city with a scenario script")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the building catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			printCatalog(cfg)
			return nil
		},
	}
}
