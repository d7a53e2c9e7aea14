// file: cmd/watch.go
// version: 1.0.0
// guid: 5b7e2d94-c1a8-4f36-9e0b-d48a6f3c2175

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/metrics"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/watcher"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	startlistOptions
	debounce time.Duration
}

var watchOpts watchOptions

// watchCmd regenerates the startlist whenever the saved page changes
var watchCmd = &cobra.Command{
	Use:   "watch <page.html|dir>",
	Short: "Regenerate the startlist XML whenever a saved page changes",
	Long: `Watch a saved startlist page and rewrite the XML every time the page is
saved again. When a directory is given, every HTML page saved into it gets its
own XML named after the page inside the --output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args[0], watchOpts)
	},
}

func init() {
	watchOpts.source.register(watchCmd)
	watchCmd.Flags().StringVarP(&watchOpts.output, "output", "o", "startlist.xml", "XML file to write, or directory when watching a directory")
	watchCmd.Flags().StringVar(&watchOpts.report, "report", "", "also write a YAML match report to this file")
	watchCmd.Flags().DurationVar(&watchOpts.debounce, "debounce", 0, "quiet period before regenerating (default from config)")
}

func runWatch(cmd *cobra.Command, target string, opts watchOptions) error {
	logger := newLogger()
	defer logger.Sync()
	out := cmd.OutOrStdout()
	log := lineSink(out, logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	dirMode := info.IsDir()
	if dirMode {
		if err := os.MkdirAll(opts.output, 0755); err != nil {
			return err
		}
	}

	ds, err := opts.source.load(ctx)
	if err != nil {
		return err
	}
	log(describeDataset(ds))

	generate := func(page string) {
		pageOpts := opts.startlistOptions
		if dirMode {
			stem := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
			pageOpts.output = filepath.Join(opts.output, stem+".xml")
			pageOpts.report = ""
		}
		done := metrics.Track("startlist")
		_, err := generateStartlist(out, log, ds, page, pageOpts)
		done(err)
		if err != nil {
			log(fmt.Sprintf("ERROR: %s: %v", page, err))
		}
	}

	if !dirMode {
		generate(target)
	}

	debounce := opts.debounce
	if debounce <= 0 {
		debounce = config.AppConfig.WatchDebounce
	}
	w := watcher.New(generate, debounce)
	if err := w.Start(target); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", target)
	<-ctx.Done()
	fmt.Fprintln(out, "Stopped watching")
	return nil
}
