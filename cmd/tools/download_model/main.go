package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moeffju/transcribee/internal/models"
)

func main() {
	var (
		variant = flag.String("variant", "base", "model variant defined in internal/models/embedded_manifest.json")
		output  = flag.String("dir", "data", "base directory where models/<file> will be stored")
		all     = flag.Bool("all", false, "download every variant in the manifest")
		jobs    = flag.Int("jobs", 2, "concurrent downloads with --all")
	)
	flag.Parse()

	if strings.TrimSpace(*output) == "" {
		fmt.Fprintln(os.Stderr, "download_model: --dir must not be empty")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	baseDir := filepath.Clean(*output)
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	manager, err := models.NewManager(baseDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "download_model: init manager: %v\n", err)
		os.Exit(1)
	}

	manifest, err := models.DefaultManifest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "download_model: load manifest: %v\n", err)
		os.Exit(1)
	}

	if *all {
		if err := downloadAll(ctx, manager, manifest, *jobs); err != nil {
			fmt.Fprintf(os.Stderr, "download_model: %v\n", err)
			os.Exit(1)
		}
		return
	}

	path, err := manager.EnsureVariant(ctx, *variant, models.EnsureOptions{
		Manifest: manifest,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "download_model: ensure variant %q: %v\n", *variant, err)
		os.Exit(1)
	}

	fmt.Printf("Model %q ready at %s\n", *variant, path)
}

func downloadAll(ctx context.Context, manager *models.Manager, manifest models.Manifest, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, name := range manifest.VariantNames() {
		name := name
		g.Go(func() error {
			path, err := manager.EnsureVariant(ctx, name, models.EnsureOptions{Manifest: manifest})
			if err != nil {
				return fmt.Errorf("ensure variant %q: %w", name, err)
			}
			fmt.Printf("Model %q ready at %s\n", name, path)
			return nil
		})
	}
	return g.Wait()
}
