package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"relaterm/cmd/relaterm/tui"
	"relaterm/cmd/relaterm/ui"
	"relaterm/internal/api"
	"relaterm/internal/config"
	"relaterm/internal/querycache"
	"relaterm/internal/session"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string

	logger *zap.Logger
	cfg    *config.Config

	app     *tui.App
	program *tea.Program
)

var rootCmd = &cobra.Command{
	Use:   "relaterm",
	Short: "relaterm - terminal client for the Relatorio shift-operations log",
	Long: `relaterm is the terminal interface for a power plant's shift-operations
backend: the superintendent's live shift log (events, novelties, equipment
status, tank readings, routine tasks, readings, generation ramps), the
two-party shift handover, and the manager's catalogs and report archive.

Run without arguments to start the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if apiURL != "" {
			cfg.Server.BaseURL = apiURL
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		app = buildApp(cfg, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// buildLogger writes to the configured log file so the interactive
// interface never shares the terminal with log output.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose || cfg.Logging.Level == "debug" {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return nil, err
		}
		zc.OutputPaths = []string{cfg.Logging.File}
		zc.ErrorOutputPaths = []string{cfg.Logging.File}
	}
	return zc.Build()
}

// buildApp wires the transport, cache and session store together. The
// client's token source closes over the store variable so the two can
// reference each other without a package cycle.
func buildApp(cfg *config.Config, logger *zap.Logger) *tui.App {
	var store *session.Store
	cache := querycache.New()

	client := api.New(cfg.Server.BaseURL,
		api.WithTimeout(cfg.GetTimeout()),
		api.WithRetryMax(cfg.Server.RetryMax),
		api.WithLogger(logger),
		api.WithTokenSource(func() string {
			if store == nil {
				return ""
			}
			return store.Token()
		}),
		api.WithUnauthorizedHandler(func() {
			if program != nil {
				program.Send(tui.UnauthorizedMsg{})
			}
		}),
	)

	store = session.New(client, &session.FileTokenStore{Path: config.TokenPath()}, cache, logger)

	return &tui.App{
		Client:  client,
		Session: store,
		Cache:   cache,
		Logger:  logger,
		Styles:  ui.DefaultStyles(),
	}
}

func runInteractive() error {
	program = tea.NewProgram(tui.NewModel(app), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// --- Non-interactive subcommands ---

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Authenticate and persist a session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "Password: ")
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := app.Session.Login(ctx, args[0], string(pw)); err != nil {
			return fmt.Errorf("%s", app.Session.Err())
		}
		u := app.Session.User()
		fmt.Printf("Logged in as %s (%s)\n", u.Username, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Session.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		app.Session.CheckAuth(ctx)
		u := app.Session.User()
		if u == nil {
			return fmt.Errorf("not logged in")
		}
		fmt.Printf("%s (%s, RPE %s)\n", u.Username, u.Role, u.RPE)
		return nil
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse the closed-shift report archive",
}

var (
	reportDate       string
	reportDesignator string
	reportLimit      int
)

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List closed shift reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		reports, err := app.Client.ListReports(ctx, api.ReportFilter{
			Date:       reportDate,
			Designator: reportDesignator,
			Limit:      reportLimit,
		})
		if err != nil {
			return err
		}
		for _, r := range reports {
			end := "open"
			if r.EndTime != nil {
				end = r.EndTime.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-6d %-12s shift %-2s closed %s\n", r.ID, r.ShiftDate, r.ShiftDesignator, end)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one closed shift report with its logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("report id must be a number")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		r, err := app.Client.GetReport(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Report %d: %s", r.ID, r.StartTime.Format("2006-01-02 15:04"))
		if r.EndTime != nil {
			fmt.Printf(" → %s", r.EndTime.Format("2006-01-02 15:04"))
		}
		fmt.Println()
		for _, e := range r.EventLogs {
			fmt.Printf("  event    %s  %-20s %s\n", e.Timestamp.Format("15:04"), e.EventType, e.Description)
		}
		for _, n := range r.NoveltyLogs {
			fmt.Printf("  novelty  %s  %-20s %s\n", n.Timestamp.Format("15:04"), n.NoveltyType, n.Description)
		}
		for _, t := range r.TaskLogs {
			name := strconv.Itoa(t.ScheduledTaskID)
			if t.ScheduledTask != nil {
				name = t.ScheduledTask.Name
			}
			fmt.Printf("  task     %s  %s\n", t.CompletionTime.Format("15:04"), name)
		}
		return nil
	},
}

var equipmentCmd = &cobra.Command{
	Use:   "equipment",
	Short: "Inspect the equipment catalog",
}

var equipmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List equipment with its current status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		equipment, err := app.Client.ListEquipment(ctx)
		if err != nil {
			return err
		}
		for _, eq := range equipment {
			reason := ""
			if eq.UnavailabilityReason != nil {
				reason = "  (" + *eq.UnavailabilityReason + ")"
			}
			fmt.Printf("%-6d %-30s %-15s%s\n", eq.ID, eq.Name, eq.Status, reason)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides config)")

	reportsListCmd.Flags().StringVar(&reportDate, "date", "", "operational date (YYYY-MM-DD)")
	reportsListCmd.Flags().StringVar(&reportDesignator, "designator", "", "shift designator (1, 2 or 3)")
	reportsListCmd.Flags().IntVar(&reportLimit, "limit", 50, "maximum reports to list")
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd)

	equipmentCmd.AddCommand(equipmentListCmd)

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, reportsCmd, equipmentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
