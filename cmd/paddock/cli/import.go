package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mkoziy/paddock/internal/cache"
	"github.com/mkoziy/paddock/internal/importer"
	"github.com/mkoziy/paddock/internal/metrics"
	"github.com/mkoziy/paddock/internal/migrations"
	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/ratelimit"
	"github.com/mkoziy/paddock/internal/sources/openf1"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import sessions from OpenF1",
	}

	cmd.AddCommand(newImportSessionCmd(opts))
	cmd.AddCommand(newImportSeasonCmd(opts))
	return cmd
}

func newImportSessionCmd(opts *rootOptions) *cobra.Command {
	var replaceLaps bool

	cmd := &cobra.Command{
		Use:     "session <year> <event> <type>",
		Short:   "Import one session, e.g. 2024 Silverstone R",
		Args:    cobra.ExactArgs(3),
		Example: "  paddock import session 2024 \"British Grand Prix\" Q",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			if replaceLaps {
				opts.cfg.Importer.ReplaceLaps = true
			}

			return opts.withImporter(cmd.Context(), func(ctx context.Context, env *importEnv) error {
				report, run, err := env.runs.Session(ctx, env.sessions, year, args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"imported %d %s %s: session %d, %d laps (%d skipped), %d pit stops [run %s]\n",
					report.Year, report.Event, report.Type, report.SessionID,
					report.LapsInserted, report.LapsSkipped, report.PitStops, run.RunID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&replaceLaps, "replace-laps", false, "Delete the session's stored laps and pit stops before inserting")
	return cmd
}

func newImportSeasonCmd(opts *rootOptions) *cobra.Command {
	var replaceLaps bool

	cmd := &cobra.Command{
		Use:   "season <year>",
		Short: "Import every session of every event in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			if replaceLaps {
				opts.cfg.Importer.ReplaceLaps = true
			}

			return opts.withImporter(cmd.Context(), func(ctx context.Context, env *importEnv) error {
				summary, run, err := env.runs.Season(ctx, env.seasons, year)
				if err != nil {
					return err
				}
				printSeason(cmd.OutOrStdout(), summary, run)
				if run.Status == models.RunFailed {
					return fmt.Errorf("season %d: no session imported", year)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&replaceLaps, "replace-laps", false, "Delete each session's stored laps and pit stops before inserting")
	return cmd
}

// importEnv holds everything an import command needs.
type importEnv struct {
	sessions *importer.SessionImporter
	seasons  *importer.SeasonImporter
	runs     *importer.Runs
}

// withImporter builds the import stack from the loaded config, runs fn and
// writes the metrics textfile afterwards.
func (o *rootOptions) withImporter(parent context.Context, fn func(context.Context, *importEnv) error) error {
	ctx, stop := signalContext(parent)
	defer stop()

	cfg := o.cfg
	db, err := o.openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := migrations.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	c, err := cache.New(cfg.Provider.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if closer, ok := c.(io.Closer); ok {
		defer closer.Close()
	}

	limiter := ratelimit.New(cfg.Provider.RateLimit)
	client := openf1.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, limiter, c, cfg.Provider.RateLimit.MaxRetries)
	fetcher := openf1.NewFetcher(client, cfg.Provider.Telemetry)

	snapshot, err := cfg.YAML()
	if err != nil {
		return err
	}

	m := metrics.NewManager()
	sessions := importer.NewSessionImporter(db, fetcher, m, cfg.Importer)
	env := &importEnv{
		sessions: sessions,
		seasons:  importer.NewSeasonImporter(sessions, fetcher),
		runs:     importer.NewRuns(db, snapshot),
	}

	runErr := fn(ctx, env)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			slog.Warn("metrics textfile not written", "path", path, "err", err)
		}
	}
	return runErr
}

func printSeason(w io.Writer, s importer.SeasonSummary, run *models.ImportRun) {
	fmt.Fprintf(w, "season %d: %d events, %d sessions imported, %d not available, %d failed, %d laps (%d skipped) [run %s, %s]\n",
		s.Year, s.Events, s.Imported, s.NotFound, s.Failed, s.LapsInserted, s.LapsSkipped, run.RunID, run.Status)
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  failed %s %s: %v\n", f.Event, f.Type, f.Err)
	}
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1950 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return year, nil
}
