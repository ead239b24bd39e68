package ytsub

import (
	"context"
	"errors"
	"strings"
)

// DefaultLanguages are the caption languages tried, in order, when none are
// configured.
var DefaultLanguages = []string{"en", "en-IN", "en-US"}

// ParseLanguages splits a comma-separated list of language codes, discarding
// blank entries.
func ParseLanguages(s string) []string {
	var langs []string
	for _, lang := range strings.Split(s, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

// A CaptionSource retrieves the caption segments of a video in one language.
type CaptionSource interface {
	Captions(ctx context.Context, videoID, lang string) ([]Segment, error)
}

// A Lookup is the outcome of looking for a transcript.
type Lookup struct {
	VideoID  string
	Lang     string    // the language found, or the last one tried
	Segments []Segment // populated if Found
	Found    bool

	// If not found, Reason records why the last language tried failed.
	Reason error
}

// A Fetcher retrieves transcripts, trying each of a list of languages in
// order until one succeeds.
type Fetcher struct {
	Source    CaptionSource
	Languages []string // if empty, DefaultLanguages
	Log       Logger
}

// Fetch returns the transcript of videoID in the first available language.
// Failures are not reported as errors; if no language succeeds, the result
// has Found == false.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) Lookup {
	langs := f.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	miss := Lookup{VideoID: videoID, Reason: errors.New("no languages to try")}
	for _, lang := range langs {
		got := f.try(ctx, videoID, lang)
		if got.Found {
			return got
		}
		miss = got
		if ctx.Err() != nil {
			break
		}
	}
	return miss
}

func (f *Fetcher) try(ctx context.Context, videoID, lang string) Lookup {
	segs, err := f.Source.Captions(ctx, videoID, lang)
	if err != nil {
		f.Log.logf("- No %q captions for %s: %v", lang, videoID, err)
		return Lookup{VideoID: videoID, Lang: lang, Reason: err}
	} else if len(segs) == 0 {
		return Lookup{VideoID: videoID, Lang: lang, Reason: ErrNoCaptions}
	}
	return Lookup{VideoID: videoID, Lang: lang, Segments: segs, Found: true}
}
