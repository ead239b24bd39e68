package ytsub

import (
	"context"
	"fmt"

	"bitbucket.org/creachadair/stringset"
)

// A Runner performs one pass of the collection pipeline: it selects a page
// of candidates, fetches and normalizes the transcripts of those not yet
// processed, writes a record for each, and updates the checkpoint.
type Runner struct {
	Selector   *Selector
	Fetcher    *Fetcher
	Normalizer *Normalizer
	Store      Checkpoint
	OutputDir  string

	// By default, a video is recorded as processed once it has been
	// attempted, whether or not a transcript was found. If RetryMissing is
	// true, videos without a transcript are left unrecorded so that a later
	// run will try them again.
	RetryMissing bool

	Log Logger
}

// A Summary reports the outcome of a run.
type Summary struct {
	Cursor   string   // the page token searched ("" for the first page)
	Next     string   // the page token saved for the next run
	Accepted int      // candidates that satisfied the criteria
	Skipped  int      // candidates already processed by an earlier run
	Written  []string // paths of records written
	Missing  []string // IDs of videos with no transcript
	Failed   []string // IDs of videos whose record could not be written
}

// Run executes one pass of the pipeline. An error is reported only if the
// checkpoint cannot be read or written, or the search itself fails; in that
// case the checkpoint is left as it was. Per-video failures are logged and
// recorded in the summary.
//
// When the search reports no further pages, an empty cursor is saved and
// the next run starts again from the first page. Videos already processed
// are skipped, so restarting does not repeat work.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	done, err := r.Store.LoadProcessed()
	if err != nil {
		return nil, err
	}
	cursor, err := r.Store.LoadCursor()
	if err != nil {
		return nil, err
	}
	r.Log.logf("Loaded %d processed IDs; page token %q", done.Len(), cursor)

	page, err := r.Selector.Select(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("selecting candidates: %w", err)
	}
	sum := &Summary{Cursor: cursor, Next: page.Next, Accepted: len(page.Candidates)}

	var fresh []*VideoCandidate
	seen := stringset.New()
	for _, v := range page.Candidates {
		if done.Contains(v.ID) || seen.Contains(v.ID) {
			sum.Skipped++
			continue
		}
		seen.Add(v.ID)
		fresh = append(fresh, v)
	}
	r.Log.logf("Found %d candidates, %d new", sum.Accepted, len(fresh))

	var handled []string
	for _, v := range fresh {
		ok, err := r.process(ctx, v)
		if err != nil {
			r.Log.logf("* Writing record for %s: %v", v.ID, err)
			sum.Failed = append(sum.Failed, v.ID)
			continue
		} else if ok {
			sum.Written = append(sum.Written, RecordPath(r.OutputDir, v.ID))
		} else {
			sum.Missing = append(sum.Missing, v.ID)
			if r.RetryMissing {
				continue
			}
		}
		handled = append(handled, v.ID)
	}

	if err := r.Store.AddProcessed(handled); err != nil {
		return sum, err
	}
	if err := r.Store.SaveCursor(page.Next); err != nil {
		return sum, fmt.Errorf("saving page token: %w", err)
	}
	if page.Next == "" {
		r.Log.logf("No further pages; the next run starts from the first page")
	}
	return sum, nil
}

// process fetches, normalizes, and writes the transcript for v. It reports
// false without error if no transcript was found.
func (r *Runner) process(ctx context.Context, v *VideoCandidate) (bool, error) {
	got := r.Fetcher.Fetch(ctx, v.ID)
	if !got.Found {
		r.Log.logf("Subtitles not found for video ID: %s (%v)", v.ID, got.Reason)
		return false, nil
	}
	body := r.Normalizer.Normalize(got.Segments)
	path, err := WriteRecord(r.OutputDir, v, body)
	if err != nil {
		return false, err
	}
	r.Log.logf("Transcript saved to %s (%s, %d segments)", path, got.Lang, len(got.Segments))
	return true, nil
}
