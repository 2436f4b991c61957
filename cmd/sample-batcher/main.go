package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/menta2k/sample-batcher/internal/config"
	"github.com/menta2k/sample-batcher/internal/utils"
	"github.com/menta2k/sample-batcher/pkg/loader"
	"github.com/menta2k/sample-batcher/pkg/sample"
	"github.com/menta2k/sample-batcher/pkg/stats"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	// Interrupt cancels in-flight downloads; atomic cache writes mean an
	// interrupted batch leaves only complete files behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	case "download":
		err = runDownload(ctx, os.Args[2:])
	case "visualize":
		err = runVisualize(ctx, os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <init|create|download|visualize|stats> [flags]\n", filepath.Base(os.Args[0]))
	os.Exit(2)
}

// runInit writes a default settings.yaml template.
func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	cfgPath := fs.String("config", "settings.yaml", "path to write the settings template")
	fs.Parse(args)

	if utils.FileExists(*cfgPath) {
		return fmt.Errorf("%s already exists", *cfgPath)
	}
	if err := config.Default().SaveToFile(*cfgPath); err != nil {
		return err
	}
	log.Printf("wrote %s", *cfgPath)
	return nil
}

// runCreate ingests the ground-truth CSV files and persists the chunked
// sample sets.
func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	cfgPath := fs.String("config", "settings.yaml", "settings file")
	fs.Parse(args)

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		return err
	}

	l := loader.New()
	samples, err := l.LoadSamples(cfg.ImageURLFile)
	if err != nil {
		return err
	}
	if err := l.AttachRegions(cfg.GroundTruthFile, samples); err != nil {
		return err
	}

	sets, err := sample.Chunk(samples, cfg.SetCapacity)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(cfg.SamplesDirectory); err != nil {
		return err
	}
	for _, ss := range sets {
		path := sample.SetPath(cfg.SamplesDirectory, ss.Index)
		if err := ss.Save(path); err != nil {
			return err
		}
		log.Printf("wrote %s (%d samples)", path, len(ss.Samples))
	}
	log.Printf("created %d sample sets", len(sets))
	return nil
}

// runDownload fetches the images of one sample set into local storage.
func runDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	cfgPath := fs.String("config", "settings.yaml", "settings file")
	setIndex := fs.Int("set", 0, "index of the set to download")
	workers := fs.Int("workers", 0, "max concurrent downloads (0 = config default)")
	fs.Parse(args)

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		return err
	}
	ss, err := sample.LoadIndex(cfg.SamplesDirectory, *setIndex)
	if err != nil {
		return err
	}

	n := *workers
	if n == 0 {
		n = cfg.MaxWorkers
	}
	store := sample.NewStore(cfg.StorageDirectory)

	report, err := ss.DownloadAll(ctx, store, n)
	if err != nil {
		return err
	}

	log.Printf("fetched %d/%d images for set %d", report.Fetched, len(ss.Samples), ss.Index)
	for _, key := range report.FailedKeys() {
		log.Printf("failed: %s", key)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d of %d samples failed", len(report.Failures), len(ss.Samples))
	}
	return nil
}

// runVisualize renders the first K samples of a set with overlay boxes.
func runVisualize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("visualize", flag.ExitOnError)
	cfgPath := fs.String("config", "settings.yaml", "settings file")
	setIndex := fs.Int("set", 0, "index of the set to visualize")
	count := fs.Int("count", 50, "how many samples to visualize")
	fs.Parse(args)

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		return err
	}

	l := loader.New()
	if utils.FileExists(cfg.LabelsFile) {
		if err := l.LoadLabels(cfg.LabelsFile); err != nil {
			return err
		}
	}

	ss, err := sample.LoadIndex(cfg.SamplesDirectory, *setIndex)
	if err != nil {
		return err
	}
	store := sample.NewStore(cfg.StorageDirectory)

	outDir := filepath.Join(cfg.OutputDirectory, fmt.Sprintf("visualized_set_%d", ss.Index))
	if err := utils.EnsureDir(outDir); err != nil {
		return err
	}

	n := min(*count, len(ss.Samples))
	for _, s := range ss.Samples[:n] {
		img, err := store.VisualizedImage(ctx, s, l.Label)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Printf("skipping %s: %v", s.Key, err)
			continue
		}
		out := filepath.Join(outDir, s.Key+".jpg")
		if err := imaging.Save(img, out); err != nil {
			return err
		}
		log.Printf("wrote %s", out)
	}
	return nil
}

// runStats reports class frequencies across every persisted sample set.
func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath := fs.String("config", "settings.yaml", "settings file")
	top := fs.Int("top", 20, "how many classes to display")
	fs.Parse(args)

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		return err
	}

	l := loader.New()
	if utils.FileExists(cfg.LabelsFile) {
		if err := l.LoadLabels(cfg.LabelsFile); err != nil {
			return err
		}
	}

	var all []*sample.Sample
	for i := 0; ; i++ {
		ss, err := sample.LoadIndex(cfg.SamplesDirectory, i)
		if errors.Is(err, sample.ErrSetNotFound) {
			break
		}
		if err != nil {
			return err
		}
		all = append(all, ss.Samples...)
	}
	if len(all) == 0 {
		return fmt.Errorf("no sample sets found in %s", cfg.SamplesDirectory)
	}

	counts := stats.Collect(all)
	if err := utils.EnsureDir(cfg.OutputDirectory); err != nil {
		return err
	}

	charts := []struct {
		title  string
		counts []stats.ClassCount
		file   string
	}{
		{"Instances", counts.Instances, "instance_graph.png"},
		{"Appearances", counts.Appearances, "appearance_graph.png"},
	}
	for _, c := range charts {
		topCounts := stats.TopN(c.counts, *top, l.Label)
		log.Printf("--- %s (%d images) ---", c.title, len(all))
		for _, cc := range topCounts {
			log.Printf("%-32s %d", cc.ClassID, cc.Count)
		}
		path := filepath.Join(cfg.OutputDirectory, c.file)
		if err := stats.BarChart(fmt.Sprintf("%s (%d images)", c.title, len(all)), topCounts, path); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}
