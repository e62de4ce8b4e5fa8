package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dochicar/internal/source"
)

const fetchTimeout = 30 * time.Second

// Load parses a catalog page into a goquery document. location is either an
// http(s) URL or a path to a saved page on disk; the crawl step routinely
// works from saved snapshots.
//
// Errors are *source.UnreadableError: a page that cannot be fetched or parsed
// is unreadable in exactly the sense a missing CSV is.
func Load(ctx context.Context, client *http.Client, location string) (*goquery.Document, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetch(ctx, client, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, &source.UnreadableError{Path: location, Err: err}
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, &source.UnreadableError{Path: location, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}

func fetch(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &source.UnreadableError{Path: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &source.UnreadableError{Path: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Include a slice of the body; catalog sites answer 200 or a
		// human-readable block page, and the first bytes say which.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &source.UnreadableError{
			Path: url,
			Err:  fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &source.UnreadableError{Path: url, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}
