package main

import (
	"fmt"
	"io"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/kvstore"
	"trade-journal-go/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// session is what every subcommand works against.
type session struct {
	repo   *journal.Repository
	logger *zap.Logger
	close  func()
}

// opener builds a session from the configuration directory.
type opener func(configDir string) (*session, error)

func defaultOpener(configDir string) (*session, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return nil, fmt.Errorf("could not initialize logger: %w", err)
	}
	store, closer, err := kvstore.New(&cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{
		repo:   journal.NewRepository(store, log),
		logger: log,
		close: func() {
			_ = closer.Close()
			_ = log.Sync()
		},
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "journalctl",
		Short:         "Maintain and inspect the trade journal store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "./configs", "directory containing config.yml")

	// run opens a session for the duration of fn.
	run := func(fn func(cmd *cobra.Command, s *session) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			s, err := open(configDir)
			if err != nil {
				return err
			}
			defer s.close()
			return fn(cmd, s)
		}
	}

	root.AddCommand(
		newInitCmd(run),
		newSeedCmd(run),
		newPingCmd(run),
		newRecountCmd(run),
		newExportCmd(run),
		newStatsCmd(run),
		newTokenCmd(&configDir),
	)
	return root
}

type runner func(fn func(cmd *cobra.Command, s *session) error) func(*cobra.Command, []string) error

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
