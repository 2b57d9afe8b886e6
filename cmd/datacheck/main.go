// Command datacheck runs one pipeline pass over the data catalog and prints
// what ingestion and resolution made of each source.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
)

type options struct {
	catalogPath   string
	overridesPath string
	dataDir       string
	industry      string
	budget        float64
	top           int
	labels        int
	asJSON        bool
	timeout       time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.catalogPath, "catalog", "", "Path to the TOML data catalog (default: embedded)")
	flag.StringVar(&opts.overridesPath, "overrides", "", "Path to the TOML override table (default: embedded)")
	flag.StringVar(&opts.dataDir, "data-dir", "./data", "Base directory for relative source paths")
	flag.StringVar(&opts.industry, "industry", "", "Industry filter (name or alias)")
	flag.Float64Var(&opts.budget, "budget", 0, "Budget in 10,000 KRW for the capital-fit ranking")
	flag.IntVar(&opts.top, "top", 10, "Number of entities to list")
	flag.IntVar(&opts.labels, "labels", 5, "Unmatched labels to show per source")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the diagnostics as JSON")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall time limit")
	flag.Parse()

	logger := logging.NewStructuredLogger(os.Stderr, slog.LevelWarn)
	if err := run(opts, os.Stdout, logger); err != nil {
		logging.LogError(logger, "datacheck failed", err)
		os.Exit(1)
	}
}

func run(opts options, w io.Writer, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	cat, err := appconf.DefaultCatalog()
	if opts.catalogPath != "" {
		cat, err = appconf.LoadCatalog(opts.catalogPath)
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	overrides, err := registry.DefaultOverrides()
	if opts.overridesPath != "" {
		overrides, err = registry.LoadOverrides(opts.overridesPath)
	}
	if err != nil {
		return fmt.Errorf("loading overrides: %w", err)
	}

	config := pipeline.Config{
		Registry: registry.New(overrides),
		Loader: &ingest.Loader{
			Fetcher: ingest.AutoFetcher{File: ingest.FileFetcher{BaseDir: opts.dataDir}},
			Cache:   cache.NewMemory(),
			Logger:  logger,
		},
		Logger: logger,
	}
	config.ApplyCatalog(cat)

	manager, err := pipeline.New(config)
	if err != nil {
		return err
	}
	defer manager.Shutdown()
	if err := manager.Load(ctx); err != nil {
		return err
	}

	snap, err := manager.Run(ctx, pipeline.Query{Industry: opts.industry, Budget: opts.budget})
	if errors.Is(err, pipeline.ErrUnknownIndustry) {
		return fmt.Errorf("%w (known industries: %s)", err, industryNames(config.Registry))
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Diagnostics)
	}
	return report(w, snap, opts.top, opts.labels)
}

func industryNames(reg *registry.Registry) string {
	names := make([]string, 0, len(reg.Industries()))
	for _, ind := range reg.Industries() {
		names = append(names, ind.CanonicalName)
	}
	return strings.Join(names, ", ")
}

// report prints source diagnostics followed by the top entities by
// composite score.
func report(w io.Writer, snap *pipeline.Snapshot, top, labels int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "query\t%s\n", snap.Query)
	fmt.Fprintf(tw, "data version\t%d\n\n", snap.DataVersion)

	fmt.Fprintln(tw, "SOURCE\tKIND\tRECORDS\tSKIPPED\tMATCHED\tUNMATCHED\tFILTERED\tERROR")
	for _, s := range snap.Diagnostics.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Name, s.Kind, s.Records, s.Skipped, s.Matched, s.Unmatched, s.Filtered, s.Error)
	}
	fmt.Fprintf(tw, "total unmatched\t\t\t\t\t%d\n", snap.Diagnostics.Unmatched)

	for _, s := range snap.Diagnostics.Sources {
		if len(s.UnmatchedLabels) == 0 || labels <= 0 {
			continue
		}
		shown := s.UnmatchedLabels
		if len(shown) > labels {
			shown = shown[:labels]
		}
		fmt.Fprintf(tw, "\nunmatched in %s:\t%s\n", s.Name, strings.Join(shown, ", "))
	}

	entities := append([]scoring.EntityMetrics(nil), snap.Entities...)
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].CompositeScore > entities[j].CompositeScore
	})
	if top > len(entities) {
		top = len(entities)
	}

	fmt.Fprintln(tw, "\nENTITY\tDISTRICT\tCOMPOSITE\tCOMPETITION\tREVENUE\tRENT\tYIELD\tSURVIVAL")
	for _, e := range entities[:max(top, 0)] {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%.1f\t%.1f\n",
			e.Name, e.District, e.CompositeScore, e.CompetitionScore,
			e.Revenue, e.RentPerAreaUnit, e.YieldPercent, e.SurvivalPercent)
	}

	return tw.Flush()
}
