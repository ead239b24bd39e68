// Package ytsub provides support code for collecting YouTube subtitle
// transcripts: candidate selection, caption retrieval, text normalization,
// and the checkpoint state that lets repeated runs resume where the last one
// stopped.
package ytsub

import (
	"fmt"
	"log"
	"time"
)

// A VideoCandidate is a video that passed the selection criteria.
type VideoCandidate struct {
	ID           string
	Title        string
	PublishedAt  time.Time
	ChannelTitle string
	Subscribers  uint64
}

func (v *VideoCandidate) String() string {
	return fmt.Sprintf("%s %q (%s)", v.ID, v.Title, v.ChannelTitle)
}

// A Segment is one timed caption unit.
//
// <text start="3285.28" dur="4.88">surprised you with how they comport</text>
type Segment struct {
	Start    float64 `json:"startSec"`
	Duration float64 `json:"durationSec"`
	Text     string  `json:"text"`
}

// A Logger receives progress messages. It has the signature of log.Printf,
// which is used when a Logger is nil.
type Logger func(format string, args ...interface{})

func (lg Logger) logf(format string, args ...interface{}) {
	if lg == nil {
		log.Printf(format, args...)
		return
	}
	lg(format, args...)
}
