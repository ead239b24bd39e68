package ytsub

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/creachadair/stringset"
	"github.com/creachadair/atomicfile"
)

// Default names of the checkpoint files.
const (
	ProcessedFile = "processed_videos.txt"
	CursorFile    = "next_page_token.txt"
)

// A Checkpoint records which videos have been handled by earlier runs and
// where in the search results the next run should begin.
//
// The processed file holds one video ID per line and is only ever appended
// to. The cursor file holds a single page token and is replaced in full on
// each save. A missing file is equivalent to an empty one.
type Checkpoint struct {
	ProcessedPath string
	CursorPath    string
}

// LoadProcessed returns the set of video IDs recorded as processed.
func (c Checkpoint) LoadProcessed() (stringset.Set, error) {
	data, err := os.ReadFile(c.ProcessedPath)
	if os.IsNotExist(err) {
		return stringset.New(), nil
	} else if err != nil {
		return nil, fmt.Errorf("loading processed IDs: %w", err)
	}
	return stringset.New(strings.Fields(string(data))...), nil
}

// AddProcessed appends ids to the processed file, creating it if necessary.
// Existing contents are never rewritten.
func (c Checkpoint) AddProcessed(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	f, err := os.OpenFile(c.ProcessedPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening processed IDs: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("appending processed IDs: %w", err)
	}
	return f.Close()
}

// LoadCursor returns the saved page token, or "" if there is none.
func (c Checkpoint) LoadCursor() (string, error) {
	data, err := os.ReadFile(c.CursorPath)
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("loading page token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveCursor replaces the saved page token with token. An empty token is
// saved as an empty file, so the next run starts from the first page.
func (c Checkpoint) SaveCursor(token string) error {
	f, err := atomicfile.New(c.CursorPath, 0644)
	if err != nil {
		return err
	}
	defer f.Cancel()
	if _, err := f.Write([]byte(token)); err != nil {
		return err
	}
	return f.Close()
}
