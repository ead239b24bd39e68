package ytsub

import (
	"context"
	"fmt"
	"time"

	"github.com/sosodev/duration"
)

const timeFormat = time.RFC3339

// A Query describes the search that produces candidate videos.
type Query struct {
	Text           string
	PublishedAfter time.Time // if zero, no publication filter is applied
	PageSize       int64     // if ≤ 0, DefaultPageSize is used
}

// DefaultPageSize is the number of search results requested per page, which
// is also the largest page the service will return.
const DefaultPageSize = 50

func (q Query) pageSize() int64 {
	if q.PageSize <= 0 || q.PageSize > DefaultPageSize {
		return DefaultPageSize
	}
	return q.PageSize
}

// DefaultQuery returns the query used when none is configured.
func DefaultQuery() Query {
	return Query{
		Text:           "tax planning in India",
		PublishedAfter: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
		PageSize:       DefaultPageSize,
	}
}

// Metrics are the values a candidate is judged by.
type Metrics struct {
	Views       uint64
	Likes       uint64
	Dislikes    uint64
	Subscribers uint64
	Duration    time.Duration
}

// Criteria are the thresholds a video must meet to be accepted.
type Criteria struct {
	MinViews       uint64
	MinLikes       uint64
	MinLikeRatio   float64 // likes per dislike, counting zero dislikes as one
	MinSubscribers uint64
	MaxDuration    time.Duration
}

// DefaultCriteria returns the thresholds used when none are configured.
func DefaultCriteria() Criteria {
	return Criteria{
		MinViews:       10000,
		MinLikes:       500,
		MinLikeRatio:   4,
		MinSubscribers: 1000,
		MaxDuration:    20 * time.Minute,
	}
}

// Accept reports whether m satisfies all the thresholds of c.
func (c Criteria) Accept(m Metrics) bool {
	dislikes := m.Dislikes
	if dislikes < 1 {
		dislikes = 1
	}
	ratio := float64(m.Likes) / float64(dislikes)
	return m.Views >= c.MinViews &&
		m.Likes >= c.MinLikes &&
		ratio >= c.MinLikeRatio &&
		m.Subscribers >= c.MinSubscribers &&
		m.Duration <= c.MaxDuration
}

// ParseDuration parses an ISO 8601 duration such as "PT1H2M3S".
func ParseDuration(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d.ToTimeDuration(), nil
}

// A Selector finds videos that match a query and satisfy its criteria.
type Selector struct {
	API      VideoAPI
	Query    Query
	Criteria Criteria
	Log      Logger
}

// A Page is the result of selecting from one page of search results.
type Page struct {
	Candidates []*VideoCandidate // accepted videos, in search order
	Next       string            // token for the following page, or ""
}

// Select searches the page identified by cursor ("" for the first page) and
// returns the videos on it that satisfy the criteria.
//
// A failure to look up a single video excludes that video but does not stop
// the rest of the page from being examined. Failures of the search itself or
// of the batch metadata lookup are reported as errors.
func (s *Selector) Select(ctx context.Context, cursor string) (*Page, error) {
	page, err := s.API.Search(ctx, s.Query, cursor)
	if err != nil {
		return nil, err
	}
	s.Log.logf("Search returned %d videos (next page %q)", len(page.IDs), page.Next)

	infos, err := s.API.Videos(ctx, page.IDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*VideoInfo)
	for _, info := range infos {
		byID[info.ID] = info
	}

	out := &Page{Next: page.Next}
	for _, id := range page.IDs {
		info, ok := byID[id]
		if !ok {
			s.Log.logf("- Skipped %s: no metadata returned", id)
			continue
		}
		cand, err := s.evaluate(ctx, info)
		if err != nil {
			s.Log.logf("- Skipped %s: %v", id, err)
			continue
		} else if cand == nil {
			continue // did not meet the criteria
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out, nil
}

// evaluate returns a candidate for info if it satisfies the criteria, or nil
// if it does not.
func (s *Selector) evaluate(ctx context.Context, info *VideoInfo) (*VideoCandidate, error) {
	dur, err := ParseDuration(info.Duration)
	if err != nil {
		return nil, err
	}
	subs, err := s.API.Subscribers(ctx, info.ChannelID)
	if err != nil {
		return nil, err
	}
	if !s.Criteria.Accept(Metrics{
		Views:       info.Views,
		Likes:       info.Likes,
		Dislikes:    info.Dislikes,
		Subscribers: subs,
		Duration:    dur,
	}) {
		return nil, nil
	}
	pub, err := time.Parse(timeFormat, info.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid publish time: %w", err)
	}
	return &VideoCandidate{
		ID:           info.ID,
		Title:        info.Title,
		PublishedAt:  pub,
		ChannelTitle: info.ChannelTitle,
		Subscribers:  subs,
	}, nil
}
