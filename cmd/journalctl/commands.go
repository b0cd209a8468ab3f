package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"trade-journal-go/internal/api"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/history"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/stats"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the journal keys if they are missing",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			if err := s.repo.Initialize(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "journal initialized\n")
			return nil
		}),
	}
}

func newSeedCmd(run runner) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the journal with sample symbols and trades",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			if !yes {
				ok, err := confirm("This deletes every symbol and trade in the store. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					printf(cmd.OutOrStdout(), "aborted\n")
					return nil
				}
			}
			if err := s.repo.Seed(cmd.Context(), journal.SampleSymbols, journal.SampleTrades); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "seeded %d symbols and %d trades\n",
				len(journal.SampleSymbols), len(journal.SampleTrades))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newPingCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the store accepts writes and reads",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			start := time.Now()
			if err := s.repo.Ping(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "store ok (%s)\n", time.Since(start).Round(time.Millisecond))
			return nil
		}),
	}
}

func newRecountCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute symbol trade counts from the trade list",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			corrected, err := s.repo.RecountSymbols(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "corrected %d symbols\n", corrected)
			return nil
		}),
	}
}

func newExportCmd(run runner) *cobra.Command {
	var out, term string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the trade history as CSV",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			trades, err := s.repo.Trades(cmd.Context())
			if err != nil {
				return err
			}
			filtered := history.Filter(trades, term)
			history.SortByDateDesc(filtered)

			if out == "-" {
				return history.WriteCSV(cmd.OutOrStdout(), filtered)
			}
			if out == "" {
				out = history.ExportFilename(time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("could not create %s: %w", out, err)
			}
			if err := history.WriteCSV(f, filtered); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			s.logger.Info("Trades exported", zap.String("file", out), zap.Int("trades", len(filtered)))
			printf(cmd.OutOrStdout(), "exported %d trades to %s\n", len(filtered), out)
			return nil
		}),
	}
	cmd.Flags().StringVar(&out, "out", "", `output file, "-" for stdout (default trades_export_<date>.csv)`)
	cmd.Flags().StringVar(&term, "q", "", "only export trades whose symbol or notes contain this")
	return cmd
}

func newStatsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print journal statistics as JSON",
		RunE: run(func(cmd *cobra.Command, s *session) error {
			trades, err := s.repo.Trades(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats.BuildReport(trades, time.Now()))
		}),
	}
}

func newTokenCmd(configDir *string) *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				cfg, err := config.LoadConfig(*configDir)
				if err != nil {
					return fmt.Errorf("could not load config: %w", err)
				}
				secret = cfg.Server.AuthSecret
			}
			if secret == "" {
				return errors.New("no auth secret: set server.auth_secret or pass --secret")
			}

			tok, exp, err := api.JWT{Secret: []byte(secret), TokenTTL: ttl}.Sign(subject)
			if err != nil {
				return fmt.Errorf("could not sign token: %w", err)
			}
			printf(cmd.OutOrStdout(), "%s\n", tok)
			if !exp.IsZero() {
				printf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default server.auth_secret)")
	cmd.Flags().StringVar(&subject, "subject", "journalctl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}

func confirm(message string) (bool, error) {
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
