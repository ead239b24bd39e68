// Program fytt fetches YouTube text transcripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytsubs/tools/ytsub"
)

var (
	videoID   = flag.String("id", "", "Video ID to fetch")
	languages = flag.String("lang", strings.Join(ytsub.DefaultLanguages, ","),
		"Comma-separated caption languages, in order of preference")
	doText = flag.Bool("text", false, "Print normalized text instead of JSON")
	width  = flag.Int("width", ytsub.DefaultLineWidth, "Maximum line width for -text output")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %[1]s -id <video-id> [-lang en,en-US] [-text]

Fetch text captions for a YouTube video, trying each of the -lang
languages in order until one is found.

By default, output is written to stdout as JSON:

  {
    "transcript": {
      "videoID": "<video-id>",
      "language": "<language-code>",
      "captions": [{
         "startSec": 123.4,
         "durationSec": 5.6,
         "text": "... text of transcription segment ..."
      }, ...]
    }
  }

With -text, the captions are cleaned up and printed as lines of at most
-width characters.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if *videoID == "" {
		log.Fatal("You must set a non-empty video -id")
	}
	langs := ytsub.ParseLanguages(*languages)
	if len(langs) == 0 {
		log.Fatal("You must set at least one -lang")
	}

	ctx := context.Background()
	f := &ytsub.Fetcher{
		Source:    new(ytsub.CaptionClient),
		Languages: langs,
	}
	got := f.Fetch(ctx, *videoID)
	if !got.Found {
		log.Fatalf("No captions found for video ID %q: %v", *videoID, got.Reason)
	}
	log.Printf("Found %d %q captions for ID %q", len(got.Segments), got.Lang, got.VideoID)

	if *doText {
		norm, err := ytsub.NewNormalizer(*width)
		if err != nil {
			log.Fatalf("Creating normalizer: %v", err)
		}
		fmt.Println(norm.Normalize(got.Segments))
		return
	}

	type transcript struct {
		VideoID  string          `json:"videoID"`
		Language string          `json:"language"`
		Captions []ytsub.Segment `json:"captions"`
	}
	bits, err := json.Marshal(struct {
		Transcript transcript `json:"transcript"`
	}{transcript{got.VideoID, got.Lang, got.Segments}})
	if err != nil {
		log.Fatalf("Encoding output: %v", err)
	}
	fmt.Println(string(bits))
}
