package seedfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

// verifyStandings fetches the standing of every seeded age class and checks
// that the rows come back ordered and ranked.
func verifyStandings(ctx context.Context, config *Config, stats *Stats) error {
	log.Println("verifying standings...")

	client := newHTTPClient(config.Timeout)

	for _, class := range ageClasses {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		standing, err := fetchStanding(client, config, class)
		if err != nil {
			return fmt.Errorf("fetch standing for %s: %w", class, err)
		}

		if err := checkStandingOrder(standing); err != nil {
			return fmt.Errorf("standing for %s: %w", class, err)
		}

		stats.StandingsVerified++
		displayTopEntries(class, standing, config.Verbose)
	}

	log.Println("standing verification completed")
	return nil
}

// fetchStanding retrieves one age class standing from the ranking endpoint.
func fetchStanding(client *HTTPClient, config *Config, class string) ([]StandingEntry, error) {
	query := url.Values{}
	query.Set("cup", config.Cup)
	query.Set("season", strconv.Itoa(config.Season))
	query.Set("ageClass", class)
	target := config.BaseURL + "/ranking?" + query.Encode()

	resp, err := client.Get(target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var standing []StandingEntry
	if err := json.Unmarshal(body, &standing); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return standing, nil
}

// checkStandingOrder verifies totals never increase down the table and that
// display places follow the shared-place convention.
func checkStandingOrder(standing []StandingEntry) error {
	for i, entry := range standing {
		if i == 0 {
			if entry.Place != "1." {
				return fmt.Errorf("first row has place %q, want \"1.\"", entry.Place)
			}
			continue
		}
		prev := standing[i-1]
		if entry.TotalScore > prev.TotalScore {
			return fmt.Errorf("row %d total %d exceeds row %d total %d",
				i, entry.TotalScore, i-1, prev.TotalScore)
		}
		if entry.TotalScore == prev.TotalScore && entry.Place != "-" {
			return fmt.Errorf("row %d ties row %d but has place %q",
				i, i-1, entry.Place)
		}
	}
	return nil
}

// displayTopEntries prints the head of one class standing.
func displayTopEntries(class string, standing []StandingEntry, verbose bool) {
	topN := 3
	if verbose {
		topN = 10
	}
	if len(standing) < topN {
		topN = len(standing)
	}

	log.Printf("top %d of %s (%d ranked):", topN, class, len(standing))
	for i := 0; i < topN; i++ {
		entry := standing[i]
		log.Printf("   %s %s (%s) - %d points", entry.Place, entry.Name, entry.Club, entry.TotalScore)
	}
}
