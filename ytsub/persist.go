package ytsub

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/creachadair/atomicfile"
)

// RecordPath returns the path of the transcript record for videoID in dir.
func RecordPath(dir, videoID string) string {
	return filepath.Join(dir, videoID+".txt")
}

// WriteRecord writes the transcript body for v to its record file in dir,
// preceded by a header describing the video. An existing record is replaced.
// It returns the path of the file written.
func WriteRecord(dir string, v *VideoCandidate, body string) (string, error) {
	path := RecordPath(dir, v.ID)
	f, err := atomicfile.New(path, 0644)
	if err != nil {
		return "", err
	}
	defer f.Cancel()
	if _, err := f.Write(formatRecord(v, body)); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// formatRecord renders the header for v followed by a blank line and body.
func formatRecord(v *VideoCandidate, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Title: %s\n", v.Title)
	fmt.Fprintf(&buf, "Published At: %s\n", v.PublishedAt.UTC().Format(timeFormat))
	fmt.Fprintf(&buf, "Channel: %s\n", v.ChannelTitle)
	fmt.Fprintf(&buf, "Subscribers: %d\n", v.Subscribers)
	buf.WriteByte('\n')
	if body != "" {
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
