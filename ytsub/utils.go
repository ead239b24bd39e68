package ytsub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

func loadRequest(ctx context.Context, cli *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US")
	if cli == nil {
		cli = http.DefaultClient
	}
	rsp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed: %s", rsp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rsp.Body); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return buf.Bytes(), nil
}
