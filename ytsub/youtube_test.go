package ytsub_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/ytsubs/tools/ytsub"
	"google.golang.org/api/option"
)

// dataServer serves canned YouTube Data API responses and records the query
// parameters of each request by endpoint.
type dataServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries map[string][]url.Values
}

func newDataServer(t *testing.T, responses map[string]string) *dataServer {
	ds := &dataServer{queries: make(map[string][]url.Values)}
	ds.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		ds.mu.Lock()
		ds.queries[name] = append(ds.queries[name], r.URL.Query())
		ds.mu.Unlock()

		rsp, ok := responses[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, rsp)
	}))
	t.Cleanup(ds.Close)
	return ds
}

func (ds *dataServer) api(t *testing.T) *ytsub.DataAPI {
	t.Helper()
	api, err := ytsub.NewDataAPI(context.Background(), "k",
		option.WithEndpoint(ds.URL+"/"),
		option.WithHTTPClient(ds.Client()),
	)
	if err != nil {
		t.Fatalf("NewDataAPI: %v", err)
	}
	return api
}

func (ds *dataServer) requests(name string) []url.Values {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.queries[name]
}

const (
	searchJSON = `{
  "nextPageToken": "N",
  "items": [
    {"id": {"kind": "youtube#video", "videoId": "v1"}},
    {"id": {"kind": "youtube#channel", "channelId": "UCx"}},
    {"id": {"kind": "youtube#video", "videoId": "v2"}}
  ]
}`
	videosJSON = `{
  "items": [{
    "id": "v1",
    "snippet": {
      "title": "Filing your return",
      "publishedAt": "2021-02-03T04:05:06Z",
      "channelId": "C1",
      "channelTitle": "Tax Desk"
    },
    "statistics": {"viewCount": "20000", "likeCount": "900"},
    "contentDetails": {"duration": "PT10M"}
  }, {
    "id": "v2",
    "snippet": {
      "title": "Nobody watched this",
      "publishedAt": "2021-02-03T04:05:06Z",
      "channelId": "C1",
      "channelTitle": "Tax Desk"
    },
    "statistics": {"likeCount": "900", "dislikeCount": "3"},
    "contentDetails": {"duration": "PT5M"}
  }]
}`
	channelsJSON = `{"items": [{"id": "C1", "statistics": {"subscriberCount": "1000"}}]}`
)

func TestDataAPISearch(t *testing.T) {
	ds := newDataServer(t, map[string]string{"search": searchJSON})
	api := ds.api(t)
	ctx := context.Background()

	q := ytsub.DefaultQuery()
	page, err := api.Search(ctx, q, "CUR")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// Results that are not videos are dropped.
	if got := strings.Join(page.IDs, " "); got != "v1 v2" {
		t.Errorf("Search IDs: got %q, want %q", got, "v1 v2")
	}
	if page.Next != "N" {
		t.Errorf("Search next: got %q, want N", page.Next)
	}

	reqs := ds.requests("search")
	if len(reqs) != 1 {
		t.Fatalf("Got %d search requests, want 1", len(reqs))
	}
	for key, want := range map[string]string{
		"q":              q.Text,
		"type":           "video",
		"videoCaption":   "closedCaption",
		"maxResults":     "50",
		"pageToken":      "CUR",
		"publishedAfter": "2016-01-01T00:00:00Z",
	} {
		if got := reqs[0].Get(key); got != want {
			t.Errorf("Search parameter %s: got %q, want %q", key, got, want)
		}
	}

	// The first page is requested without a page token.
	if _, err := api.Search(ctx, q, ""); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if reqs := ds.requests("search"); len(reqs) != 2 || reqs[1].Has("pageToken") {
		t.Errorf("Search requests: got %v, want a second without pageToken", reqs)
	}
}

func TestDataAPIVideos(t *testing.T) {
	ds := newDataServer(t, map[string]string{"videos": videosJSON})
	api := ds.api(t)

	got, err := api.Videos(context.Background(), []string{"v1", "v2"})
	if err != nil {
		t.Fatalf("Videos failed: %v", err)
	}
	want := []ytsub.VideoInfo{{
		ID:           "v1",
		Title:        "Filing your return",
		PublishedAt:  "2021-02-03T04:05:06Z",
		ChannelID:    "C1",
		ChannelTitle: "Tax Desk",
		Duration:     "PT10M",
		Views:        20000,
		Likes:        900,
	}, {
		ID:           "v2",
		Title:        "Nobody watched this",
		PublishedAt:  "2021-02-03T04:05:06Z",
		ChannelID:    "C1",
		ChannelTitle: "Tax Desk",
		Duration:     "PT5M",
		Likes:        900,
		Dislikes:     3,
	}}
	if len(got) != len(want) {
		t.Fatalf("Videos: got %d results, want %d", len(got), len(want))
	}
	for i, v := range got {
		if *v != want[i] {
			t.Errorf("Video %d: got %+v, want %+v", i, *v, want[i])
		}
	}

	reqs := ds.requests("videos")
	if len(reqs) != 1 {
		t.Fatalf("Got %d videos requests, want 1", len(reqs))
	}
	if got := strings.Join(reqs[0]["id"], ","); got != "v1,v2" {
		t.Errorf("Videos id parameter: got %q, want %q", got, "v1,v2")
	}

	// No IDs, no request.
	if got, err := api.Videos(context.Background(), nil); err != nil || len(got) != 0 {
		t.Errorf("Videos(nil): got %+v, %v; want empty", got, err)
	}
	if n := len(ds.requests("videos")); n != 1 {
		t.Errorf("Got %d videos requests, want 1", n)
	}
}

func TestDataAPISubscribers(t *testing.T) {
	ds := newDataServer(t, map[string]string{"channels": channelsJSON})
	api := ds.api(t)

	n, err := api.Subscribers(context.Background(), "C1")
	if err != nil {
		t.Fatalf("Subscribers failed: %v", err)
	}
	if n != 1000 {
		t.Errorf("Subscribers: got %d, want 1000", n)
	}
	if got := ds.requests("channels")[0].Get("id"); got != "C1" {
		t.Errorf("Channels id parameter: got %q, want C1", got)
	}

	empty := newDataServer(t, map[string]string{"channels": `{"items": []}`})
	if n, err := empty.api(t).Subscribers(context.Background(), "gone"); err == nil {
		t.Errorf("Subscribers(gone): got %d, want error", n)
	}
}

func TestDataAPISelect(t *testing.T) {
	ds := newDataServer(t, map[string]string{
		"search":   searchJSON,
		"videos":   videosJSON,
		"channels": channelsJSON,
	})
	s := &ytsub.Selector{
		API:      ds.api(t),
		Query:    ytsub.DefaultQuery(),
		Criteria: ytsub.DefaultCriteria(),
		Log:      t.Logf,
	}
	page, err := s.Select(context.Background(), "CUR")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if page.Next != "N" {
		t.Errorf("Next: got %q, want N", page.Next)
	}

	// v1 reports no dislikes, which counts as one; v2 reports no views.
	if len(page.Candidates) != 1 {
		t.Fatalf("Candidates: got %v, want only v1", page.Candidates)
	}
	v := page.Candidates[0]
	if v.ID != "v1" || v.Subscribers != 1000 || v.ChannelTitle != "Tax Desk" {
		t.Errorf("Candidate: got %+v", v)
	}
}
