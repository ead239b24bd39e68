// Program subscan searches YouTube for videos on a topic, and saves a
// cleaned-up text transcript of each video that meets the selection criteria.
//
// Each run examines one page of search results. The IDs of videos handled
// and the token for the next page are saved in the state directory, so the
// next run continues where this one stopped.
//
// You must provide a YOUTUBE_API_KEY environment variable with a YouTube Data
// API v3 key.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ytsubs/tools/ytsub"
)

var (
	configPath = flag.String("config", "", "Configuration file (YAML)")
	stateDir   = flag.String("dir", ".", "Directory for transcripts and state files")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s [-config <file.yaml>] [-dir <directory>]

Search YouTube for captioned videos matching the configured query, and
write the normalized transcript of each acceptable video not already
processed to <video-id>.txt. Without a configuration file, the defaults
are used:

  query: tax planning in India
  published_after: 2016-01-01T00:00:00Z
  languages: [en, en-IN, en-US]
  min_views: 10000
  min_likes: 500
  min_like_ratio: 4
  min_subscribers: 1000
  max_duration_sec: 1200
  line_width: 100

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	apiKey := os.Getenv(ytsub.APIKeyEnv)
	if apiKey == "" {
		log.Fatalf("No %s is set in the environment", ytsub.APIKeyEnv)
	}
	cfg, err := ytsub.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	outDir, store := cfg.Paths(*stateDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("Creating output directory: %v", err)
	}

	ctx := context.Background()
	api, err := ytsub.NewDataAPI(ctx, apiKey)
	if err != nil {
		log.Fatalf("Connecting to YouTube: %v", err)
	}
	norm, err := ytsub.NewNormalizer(cfg.LineWidth)
	if err != nil {
		log.Fatalf("Creating normalizer: %v", err)
	}

	r := &ytsub.Runner{
		Selector: &ytsub.Selector{
			API:      api,
			Query:    cfg.SearchQuery(),
			Criteria: cfg.Criteria(),
		},
		Fetcher: &ytsub.Fetcher{
			Source:    new(ytsub.CaptionClient),
			Languages: cfg.Languages,
		},
		Normalizer:   norm,
		Store:        store,
		OutputDir:    outDir,
		RetryMissing: cfg.RetryMissing,
	}
	sum, err := r.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}
	log.Printf("Done: %d accepted, %d already processed, %d written, %d without subtitles, %d failed",
		sum.Accepted, sum.Skipped, len(sum.Written), len(sum.Missing), len(sum.Failed))
}
