// file: cmd/startlist.go
// version: 1.0.0
// guid: 4d2c7a1e-9b85-4f36-a0e3-5c8d1b7f2e94

package cmd

import (
	"fmt"
	"io"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/metrics"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/startlist"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type startlistOptions struct {
	source      sourceFlags
	output      string
	report      string
	metricsFile string
	progress    bool
}

var startlistOpts startlistOptions

// startlistCmd writes a startlist XML patch from a saved page
var startlistCmd = &cobra.Command{
	Use:   "startlist <page.html>",
	Short: "Generate a startlist XML from a saved race page",
	Long: `Parse a saved startlist page and write the XML startlist the game imports.
Teams and riders are matched against the database given with --db, --csv or
--cdb. Teams that cannot be matched get placeholder IDs; riders that cannot be
matched are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStartlist(cmd, args[0], startlistOpts)
	},
}

func init() {
	startlistOpts.source.register(startlistCmd)
	startlistCmd.Flags().StringVarP(&startlistOpts.output, "output", "o", "startlist.xml", "XML file to write")
	startlistCmd.Flags().StringVar(&startlistOpts.report, "report", "", "also write a YAML match report to this file")
	startlistCmd.Flags().StringVar(&startlistOpts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	startlistCmd.Flags().BoolVar(&startlistOpts.progress, "progress", false, "show a progress bar while matching")
}

func runStartlist(cmd *cobra.Command, page string, opts startlistOptions) (err error) {
	done := metrics.Track("startlist")
	defer func() {
		done(err)
		if opts.metricsFile != "" {
			if werr := metrics.WriteTextfile(opts.metricsFile); werr != nil && err == nil {
				err = fmt.Errorf("failed to write metrics: %w", werr)
			}
		}
	}()

	logger := newLogger()
	defer logger.Sync()
	out := cmd.OutOrStdout()
	log := lineSink(out, logger)

	ds, err := opts.source.load(commandContext(cmd))
	if err != nil {
		return err
	}
	log(describeDataset(ds))

	_, err = generateStartlist(out, log, ds, page, opts)
	return err
}

// generateStartlist parses page and writes the XML. It is shared with the
// watch command.
func generateStartlist(out io.Writer, log logging.LineFunc, ds *dataset.Dataset, page string, opts startlistOptions) (*startlist.Resolution, error) {
	log(fmt.Sprintf("Reading startlist: %s", page))
	sl, err := startlist.NewParser().ParseFile(page)
	if err != nil {
		return nil, err
	}
	if sl.Empty() {
		log("ERROR: Could not parse startlist data.")
		return nil, startlist.ErrEmptyStartlist
	}
	log(fmt.Sprintf("Parsed %d teams, %d riders (%s)\n", sl.Len(), sl.RiderCount(), sl.Source))

	w := &startlist.Writer{
		Dataset:         ds,
		PlaceholderBase: config.AppConfig.PlaceholderTeamBase,
		Suggestions:     config.AppConfig.Suggestions,
		Log:             log,
	}
	if opts.progress {
		bar := progressbar.Default(int64(sl.RiderCount()))
		w.Progress = func(processed, _ int) { _ = bar.Set(processed) }
		defer bar.Finish()
	}

	res, err := w.Write(sl, opts.output)
	if err != nil {
		return res, err
	}
	recordResolution(res)

	fmt.Fprintf(out, "\nStartlist saved to: %s (%d teams, %d riders)\n",
		opts.output, len(res.Teams), len(res.MatchedRiderIDs()))

	if opts.report != "" {
		rep := startlist.NewReport(sl, res, page, opts.output)
		if err := rep.WriteFile(opts.report); err != nil {
			return res, err
		}
		fmt.Fprintf(out, "Match report saved to: %s\n", opts.report)
	}
	return res, nil
}

func recordResolution(res *startlist.Resolution) {
	var placeholders, matchedRiders int
	for _, t := range res.Teams {
		if t.Placeholder {
			placeholders++
		}
		for _, r := range t.Riders {
			if r.Matched {
				matchedRiders++
			}
		}
	}
	metrics.AddTeams(metrics.OutcomeMatched, len(res.Teams)-len(res.UnmatchedTeams))
	metrics.AddTeams(metrics.OutcomePlaceholder, placeholders)
	metrics.AddTeams(metrics.OutcomeUnmatched, len(res.UnmatchedTeams)-placeholders)
	metrics.AddRiders(metrics.OutcomeMatched, matchedRiders)
	metrics.AddRiders(metrics.OutcomeUnmatched, len(res.UnmatchedRiders))
}
