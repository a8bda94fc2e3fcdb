package seedfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(requestURL string) (*http.Response, error) {
	return c.client.Get(requestURL)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(requestURL string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, requestURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// resultsURL builds the feed submission URL for the configured cup season.
func resultsURL(config *Config) string {
	query := url.Values{}
	query.Set("cup", config.Cup)
	query.Set("season", strconv.Itoa(config.Season))
	return config.BaseURL + "/results?" + query.Encode()
}

// submitFeeds submits feeds concurrently using a worker pool.
func submitFeeds(ctx context.Context, config *Config, feeds []ingest.Feed, stats *Stats) error {
	log.Printf("submitting %d feeds with %d workers", len(feeds), config.Workers)

	client := newHTTPClient(config.Timeout)
	target := resultsURL(config)

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	feedChan := make(chan ingest.Feed, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for feed := range feedChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleFeed(client, target, feed)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose {
						log.Printf("submitted feed %q: %s", feed.Name, result)
					}
				}
			}
		}()
	}

	go func() {
		defer close(feedChan)
		for _, feed := range feeds {
			select {
			case <-ctx.Done():
				return
			case feedChan <- feed:
			}
		}
	}()

	wg.Wait()

	stats.FeedsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.FeedsSuccessful = int(atomic.LoadInt64(&successful))
	stats.FeedsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.FeedsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("feed submission completed: successful=%d duplicate=%d failed=%d",
		stats.FeedsSuccessful, stats.FeedsDuplicate, stats.FeedsFailed)

	return nil
}

// submitSingleFeed posts one feed and classifies the outcome.
func submitSingleFeed(client *HTTPClient, target string, feed ingest.Feed) string {
	resp, err := client.Post(target, feed)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return "success"
	case http.StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
