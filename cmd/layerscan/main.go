// Command layerscan runs track seeds through the forward double layers of a
// geometry file and reports compatible modules, cracks and hit chi-squares.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/banshee-data/detlayers/internal/config"
	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/fsutil"
	"github.com/banshee-data/detlayers/internal/geometry"
	"github.com/banshee-data/detlayers/internal/monitoring"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/report"
	"github.com/banshee-data/detlayers/internal/scan"
	"github.com/banshee-data/detlayers/internal/scandb"
	"github.com/banshee-data/detlayers/internal/security"
	"github.com/banshee-data/detlayers/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, fsutil.OSFileSystem{}); err != nil {
		log.Fatalf("layerscan: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, fsys fsutil.FileSystem) error {
	flags := flag.NewFlagSet("layerscan", flag.ContinueOnError)
	var (
		geometryPath = flags.String("geometry", "", "geometry JSON file (required)")
		seedsPath    = flags.String("seeds", "", "track seed JSON file (required)")
		configPath   = flags.String("config", "", "tuning JSON file (defaults built in)")
		dbPath       = flags.String("db", "", "sqlite database to record the run in")
		plotPath     = flags.String("plot", "", "write an r-z PNG plot to this path")
		htmlPath     = flags.String("html", "", "write an HTML report to this path")
		workers      = flags.Int("workers", 0, "seeds scanned concurrently (0 = GOMAXPROCS)")
		trace        = flags.String("trace", "", "comma-separated subsystems to log (scan, scandb, detlayers/), or \"all\"")
		showVersion  = flags.Bool("version", false, "print version and exit")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String("layerscan"))
		return nil
	}
	if *geometryPath == "" || *seedsPath == "" {
		return fmt.Errorf("-geometry and -seeds must be provided")
	}
	for _, p := range []string{*dbPath, *plotPath, *htmlPath} {
		if p == "" {
			continue
		}
		if err := security.ValidateOutputPath(p); err != nil {
			return err
		}
	}
	switch *trace {
	case "":
		monitoring.SetLogger(nil)
	case "all":
		monitoring.SetSubsystems()
	default:
		monitoring.SetSubsystems(strings.Split(*trace, ",")...)
	}

	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			return err
		}
	}
	unit := cfg.GetLengthUnit()

	layers, err := geometry.Load(fsys, *geometryPath, unit)
	if err != nil {
		return err
	}
	seeds, err := scan.LoadSeeds(fsys, *seedsPath, unit)
	if err != nil {
		return err
	}

	direction := cfg.GetPropagationDirection()
	est := estimator.NewSwitching(cfg.GetMaxChi2(), cfg.GetNSigma())
	scanner := scan.New(layers, propagation.NewStraightLine(direction), est, scan.Options{
		CheckCracks:  cfg.GetCheckCracks(),
		EstimateHits: cfg.GetEstimateHits(),
		Workers:      *workers,
	})

	results, err := scanner.Run(ctx, seeds)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if err := printResults(stdout, results); err != nil {
		return err
	}

	if *dbPath != "" {
		store, err := scandb.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.RecordRun(ctx, scandb.RunMeta{
			GeometryPath: *geometryPath,
			SeedsPath:    *seedsPath,
			MaxChi2:      cfg.GetMaxChi2(),
			NSigma:       cfg.GetNSigma(),
			Direction:    direction.String(),
		}, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "recorded run %s in %s\n", runID, *dbPath)
	}

	opts := report.Options{Unit: unit}
	if *plotPath != "" {
		if err := report.SaveEnvelopePNG(fsys, *plotPath, layers, results, opts); err != nil {
			return err
		}
	}
	if *htmlPath != "" {
		if err := report.SaveHTML(fsys, *htmlPath, layers, results, opts); err != nil {
			return err
		}
	}
	return nil
}

func printResults(w io.Writer, results []scan.SeedResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEED\tLAYER\tDIR\tCOMPATIBLE\tCRACK\tGROUPS\tHITS")
	for _, sr := range results {
		for _, lr := range sr.Layers {
			dir := "in"
			if lr.InsideOut {
				dir = "out"
			}
			groups := "-"
			if len(lr.Groups) > 0 {
				groups = ""
				for i, g := range lr.Groups {
					if i > 0 {
						groups += ","
					}
					groups += fmt.Sprintf("%d:%d", g.SubLayer, len(g.DetIDs))
				}
			}
			hits := "-"
			if len(lr.Hits) > 0 {
				hits = ""
				for i, h := range lr.Hits {
					if i > 0 {
						hits += ","
					}
					mark := ""
					if !h.Compatible {
						mark = "!"
					}
					hits += fmt.Sprintf("%d=%.2f%s", h.DetID, h.Chi2, mark)
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\t%s\n", sr.Seed.Name, lr.Layer, dir, lr.Compatible, lr.Crack, groups, hits)
		}
	}
	return tw.Flush()
}
