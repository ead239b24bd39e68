package ytsub

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Errors reported by a CaptionClient.
var (
	ErrNoCaptions    = errors.New("video has no captions")
	ErrNoLanguage    = errors.New("no captions in the requested language")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrVideoNotFound = errors.New("video not found")
)

// youTubeWatchBase is the base URL for the "watch" page for a video ID.
const youTubeWatchBase = `https://www.youtube.com/watch?v=`

// A CaptionClient loads caption tracks from YouTube watch pages.
// It implements CaptionSource.
//
// The track list for the most recently requested video is retained, so that
// asking for several languages of the same video loads its page only once.
// This includes a page that reports the video has no captions, is missing, or
// that requests are being rate limited; failures to load the page at all are
// not retained. A CaptionClient is not safe for concurrent use.
type CaptionClient struct {
	// HTTP is used to issue requests. If nil, http.DefaultClient is used.
	HTTP *http.Client

	// WatchURL is the prefix to which a video ID is appended to form its
	// watch page URL. If empty, the YouTube site is used.
	WatchURL string

	lastID     string
	lastTracks []*captionTrack
	lastErr    error
}

type captionTrack struct {
	URL  string `json:"baseUrl"`
	Lang string `json:"languageCode"`
	Kind string `json:"kind"` // "asr" for automatic transcriptions

	// other fields ignored
}

// Captions implements CaptionSource. It prefers a manually created track for
// lang over an automatic one.
func (c *CaptionClient) Captions(ctx context.Context, videoID, lang string) ([]Segment, error) {
	tracks, err := c.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track := pickTrack(tracks, lang)
	if track == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoLanguage, lang)
	}
	bits, err := loadRequest(ctx, c.HTTP, track.URL)
	if err != nil {
		return nil, fmt.Errorf("loading captions: %w", err)
	}
	return parseCaptionXML(bits)
}

func (c *CaptionClient) tracks(ctx context.Context, videoID string) ([]*captionTrack, error) {
	if videoID != "" && videoID == c.lastID {
		return c.lastTracks, c.lastErr
	}
	base := c.WatchURL
	if base == "" {
		base = youTubeWatchBase
	}
	bits, err := loadRequest(ctx, c.HTTP, base+videoID)
	if err != nil {
		return nil, fmt.Errorf("loading watch page: %w", err)
	}
	tracks, err := captionTracks(bits)
	if err != nil {
		err = fmt.Errorf("video %q: %w", videoID, err)
	}
	c.lastID, c.lastTracks, c.lastErr = videoID, tracks, err
	return tracks, err
}

func pickTrack(tracks []*captionTrack, lang string) *captionTrack {
	var auto *captionTrack
	for _, t := range tracks {
		if t.Lang != lang {
			continue
		} else if t.Kind != "asr" {
			return t
		} else if auto == nil {
			auto = t
		}
	}
	return auto
}

// captionTracks extracts the list of caption tracks from the contents of a
// watch page.
func captionTracks(page []byte) ([]*captionTrack, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing watch page: %w", err)
	}
	if doc.Find(".g-recaptcha").Length() != 0 {
		return nil, ErrRateLimited
	}

	const needle = `"captions":`
	var blob string
	var playable bool
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, `"playabilityStatus"`) {
			playable = true
		}
		if i := strings.Index(text, needle); i >= 0 {
			blob = text[i+len(needle):]
			return false
		}
		return true
	})
	if blob == "" {
		if !playable {
			return nil, ErrVideoNotFound
		}
		return nil, ErrNoCaptions
	}

	var data struct {
		R *struct {
			C []*captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}

	// Decode the JSON blob. Use a json.Decoder so that the garbage in the
	// script after the blob we're interested in can be ignored.
	dec := json.NewDecoder(strings.NewReader(blob))
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding caption tracks: %w", err)
	}
	if data.R == nil || len(data.R.C) == 0 {
		return nil, ErrNoCaptions
	}
	return data.R.C, nil
}

// parseCaptionXML decodes timed text in either the classic layout
//
//	<transcript><text start="1.5" dur="2.0">...</text></transcript>
//
// or the format 3 layout
//
//	<timedtext format="3"><body><p t="1500" d="2000">...</p></body></timedtext>
//
// in which times are given in milliseconds.
func parseCaptionXML(bits []byte) ([]Segment, error) {
	var doc struct {
		XMLName xml.Name
		Texts   []struct {
			Start    string `xml:"start,attr"`
			Duration string `xml:"dur,attr"`
			Text     string `xml:",chardata"`
		} `xml:"text"`
		Paras []struct {
			T     string `xml:"t,attr"`
			D     string `xml:"d,attr"`
			Inner string `xml:",innerxml"`
		} `xml:"body>p"`
	}
	dec := xml.NewDecoder(bytes.NewReader(bits))
	dec.Entity = xml.HTMLEntity
	dec.Strict = false
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}

	var segs []Segment
	switch doc.XMLName.Local {
	case "transcript":
		for _, t := range doc.Texts {
			segs = append(segs, Segment{
				Start:    parseFloat(t.Start),
				Duration: parseFloat(t.Duration),
				Text:     stripMarkup(t.Text),
			})
		}
	case "timedtext":
		for _, p := range doc.Paras {
			// The body of a paragraph is raw XML; reduce it to its character
			// data first, so that both layouts are decoded the same way.
			segs = append(segs, Segment{
				Start:    parseFloat(p.T) / 1000,
				Duration: parseFloat(p.D) / 1000,
				Text:     stripMarkup(stripMarkup(p.Inner)),
			})
		}
	default:
		return nil, fmt.Errorf("unknown caption format %q", doc.XMLName.Local)
	}
	return segs, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// stripMarkup discards any HTML tags in s and decodes its entities.
// Caption text may contain formatting such as <font> and <i>, and is often
// escaped twice.
func stripMarkup(s string) string {
	tok := html.NewTokenizer(strings.NewReader(s))
	var buf strings.Builder
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			buf.Write(tok.Text())
		}
	}
	if err := tok.Err(); err != nil && err != io.EOF {
		return s
	}
	return strings.TrimSpace(buf.String())
}
