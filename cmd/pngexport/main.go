package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/sync/errgroup"

	"github.com/ddvk/tachie/config"
	"github.com/ddvk/tachie/export"
	"github.com/ddvk/tachie/host"
	"github.com/ddvk/tachie/locale"
	"github.com/ddvk/tachie/workspace"
)

// batchesByFolder groups documents by folder, keeping command line order.
// Documents in one folder export into the same root and may name the same
// files, so a batch must not run concurrently with itself.
func batchesByFolder(paths []string) [][]string {
	index := map[string]int{}
	var batches [][]string
	for _, path := range paths {
		dir := filepath.Dir(path)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		i, ok := index[dir]
		if !ok {
			i = len(batches)
			index[dir] = i
			batches = append(batches, nil)
		}
		batches[i] = append(batches[i], path)
	}
	return batches
}

// exportBatch opens every document of a batch into one workspace and exports
// them one after the other as the active document.
func exportBatch(ctx context.Context, paths []string, settings export.Settings, messages *locale.Localizer) ([]*export.Report, error) {
	ws := workspace.New(os.Stderr)
	for _, path := range paths {
		if _, err := ws.Open(path); err != nil {
			return nil, err
		}
	}

	var reports []*export.Report
	for i := range ws.Documents() {
		if err := ws.Activate(i); err != nil {
			return reports, err
		}
		exporter := export.New(ws, settings,
			export.WithLocalizer(messages),
			export.WithLogger(log.WithField("path", paths[i])),
		)
		report, err := exporter.Run(ctx)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func exportDocuments(ctx context.Context, cfg config.Config, messages *locale.Localizer) ([]*export.Report, error) {
	settings := cfg.ExportSettings()
	if len(cfg.Documents) == 0 {
		_, err := export.New(workspace.New(os.Stderr), settings, export.WithLocalizer(messages)).Run(ctx)
		return nil, err
	}

	var mu sync.Mutex
	var reports []*export.Report
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, batch := range batchesByFolder(cfg.Documents) {
		batch := batch
		g.Go(func() error {
			batchReports, err := exportBatch(ctx, batch, settings, messages)
			mu.Lock()
			reports = append(reports, batchReports...)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	return reports, err
}

func _main() error {
	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())

	messages, err := locale.New(cfg.Lang, "en")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports, err := exportDocuments(ctx, cfg, messages)
	if cfg.Report != "" && len(reports) > 0 {
		if werr := export.WriteReports(cfg.Report, reports); werr != nil {
			log.Error(werr)
		}
	}
	if errors.Is(err, host.ErrNoDocument) {
		// already alerted
		return nil
	}
	return err
}

func main() {
	prefixed := &prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     true,
	}
	log.SetFormatter(prefixed)
	log.SetOutput(os.Stdout)
	err := _main()
	if err != nil {
		log.Fatal(err)
	}
}
