package ytsub

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// VideoAPI is the subset of the YouTube Data API used to select candidates.
type VideoAPI interface {
	// Search returns one page of video IDs matching q, starting at the page
	// identified by cursor ("" for the first page).
	Search(ctx context.Context, q Query, cursor string) (*SearchPage, error)

	// Videos returns metadata for the specified video IDs. IDs the service
	// does not know are omitted from the result.
	Videos(ctx context.Context, ids []string) ([]*VideoInfo, error)

	// Subscribers returns the subscriber count of the specified channel.
	Subscribers(ctx context.Context, channelID string) (uint64, error)
}

// A SearchPage is one page of search results.
type SearchPage struct {
	IDs  []string // in result order
	Next string   // token for the following page, or "" if this is the last
}

// VideoInfo carries the metadata of a video as reported by the service.
// Counts the service omits are zero.
type VideoInfo struct {
	ID           string
	Title        string
	PublishedAt  string // RFC 3339
	ChannelID    string
	ChannelTitle string
	Duration     string // ISO 8601, e.g. "PT12M3S"
	Views        uint64
	Likes        uint64
	Dislikes     uint64
}

// DataAPI implements VideoAPI using the YouTube Data API v3.
type DataAPI struct {
	svc *youtube.Service
}

// NewDataAPI constructs a DataAPI that authorizes with the given API key.
// Additional client options, such as an HTTP client or endpoint, may be
// passed in opts.
func NewDataAPI(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPI, error) {
	if apiKey == "" {
		return nil, errors.New("no YouTube API key provided")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating YouTube service: %w", err)
	}
	return &DataAPI{svc: svc}, nil
}

// Search implements part of VideoAPI.
func (d *DataAPI) Search(ctx context.Context, q Query, cursor string) (*SearchPage, error) {
	call := d.svc.Search.List([]string{"id", "snippet"}).
		Q(q.Text).
		Type("video").
		VideoCaption("closedCaption").
		MaxResults(q.pageSize()).
		Context(ctx)
	if !q.PublishedAfter.IsZero() {
		call = call.PublishedAfter(q.PublishedAfter.UTC().Format(timeFormat))
	}
	if cursor != "" {
		call = call.PageToken(cursor)
	}
	rsp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Text, err)
	}
	page := &SearchPage{Next: rsp.NextPageToken}
	for _, item := range rsp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			page.IDs = append(page.IDs, item.Id.VideoId)
		}
	}
	return page, nil
}

// Videos implements part of VideoAPI.
func (d *DataAPI) Videos(ctx context.Context, ids []string) ([]*VideoInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rsp, err := d.svc.Videos.List([]string{"statistics", "snippet", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	var out []*VideoInfo
	for _, v := range rsp.Items {
		info := &VideoInfo{ID: v.Id}
		if s := v.Snippet; s != nil {
			info.Title = s.Title
			info.PublishedAt = s.PublishedAt
			info.ChannelID = s.ChannelId
			info.ChannelTitle = s.ChannelTitle
		}
		if st := v.Statistics; st != nil {
			info.Views = st.ViewCount
			info.Likes = st.LikeCount
			info.Dislikes = st.DislikeCount
		}
		if cd := v.ContentDetails; cd != nil {
			info.Duration = cd.Duration
		}
		out = append(out, info)
	}
	return out, nil
}

// Subscribers implements part of VideoAPI.
func (d *DataAPI) Subscribers(ctx context.Context, channelID string) (uint64, error) {
	rsp, err := d.svc.Channels.List([]string{"statistics"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("listing channel %q: %w", channelID, err)
	} else if len(rsp.Items) == 0 {
		return 0, fmt.Errorf("channel %q not found", channelID)
	}
	if st := rsp.Items[0].Statistics; st != nil {
		return st.SubscriberCount, nil
	}
	return 0, nil
}
