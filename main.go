package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sadopc/learntrack/internal/config"
	"github.com/sadopc/learntrack/internal/export"
	"github.com/sadopc/learntrack/internal/provider"
	"github.com/sadopc/learntrack/internal/store"
	"github.com/sadopc/learntrack/internal/timer"
	"github.com/sadopc/learntrack/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Flags

	root := &cobra.Command{
		Use:           "learntrack",
		Short:         "Track courses, tasks and focused study time",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.DBPath, "db", "", "database file (default: user config dir)")
	root.PersistentFlags().StringVar(&flags.LogPath, "log", "", "log file (default: user config dir)")

	root.AddCommand(newExportCmd(&flags))
	root.AddCommand(newDumpCmd(&flags))
	return root
}

// setup loads the configuration, starts logging to the log file and opens
// the database. The returned func flushes the logger.
func setup(flags config.Flags) (*store.Store, func(), error) {
	cfg, err := config.Load(flags, ".env")
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	// The terminal belongs to the TUI, so logs only go to the file.
	zcfg := zap.NewDevelopmentConfig()
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zcfg.OutputPaths = []string{cfg.LogPath}
	zcfg.ErrorOutputPaths = []string{cfg.LogPath}
	if !cfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	s, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Sync()
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	zap.S().Infow("database opened", "path", cfg.DBPath)

	return s, func() { logger.Sync() }, nil
}

func runTUI(flags config.Flags) error {
	s, sync, err := setup(flags)
	if err != nil {
		return err
	}
	defer sync()
	defer s.Close()

	deps := tui.Deps{
		Store:     s,
		Auth:      provider.NewAuth(s),
		Courses:   provider.NewCourses(s),
		Tasks:     provider.NewTasks(s),
		Study:     provider.NewStudy(s),
		Scheduler: timer.TickerScheduler{},
		Clock:     timer.SystemClock{},
	}
	deps.Auth.Subscribe(deps.Courses)
	deps.Auth.Subscribe(deps.Tasks)
	deps.Auth.Subscribe(deps.Study)

	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen())
	final, err := p.Run()
	if app, ok := final.(tui.App); ok {
		app.Close()
	}
	if err != nil {
		zap.S().Errorw("tui exited", "error", err)
		return err
	}
	return nil
}

func newExportCmd(flags *config.Flags) *cobra.Command {
	var email, password, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's study sessions",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, sync, err := setup(*flags)
			if err != nil {
				return err
			}
			defer sync()
			defer s.Close()

			u, err := s.AuthenticateUser(email, password)
			if err != nil {
				return err
			}
			sessions, err := s.ListSessions(u.ID)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("learntrack-sessions.%s", format)
			}
			if err := export.Sessions(format, sessions, out); err != nil {
				return err
			}
			zap.S().Infow("sessions exported", "user_id", u.ID, "count", len(sessions), "path", out)
			fmt.Printf("Exported %d sessions to %s\n", len(sessions), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json or yaml")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDumpCmd(flags *config.Flags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every table as JSON, for backups and debugging",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, sync, err := setup(*flags)
			if err != nil {
				return err
			}
			defer sync()
			defer s.Close()

			snap, err := s.Snapshot()
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return export.Dump(snap, w)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}
