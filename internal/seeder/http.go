package seeder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// HTTPClient wraps http.Client with a shared timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// registerProfiles pushes expert names through the bulk update action
// so the ranking views can show real names instead of placeholders.
func registerProfiles(ctx context.Context, config *Config, client *HTTPClient, experts []Expert) error {
	type bulkExpert struct {
		ExpertID     string  `json:"expertId"`
		Name         string  `json:"name"`
		RankingScore float64 `json:"rankingScore"`
		Stats        struct {
			Specialty string `json:"specialty,omitempty"`
		} `json:"stats"`
	}
	type bulkPayload struct {
		Action string `json:"action"`
		Data   struct {
			Experts []bulkExpert `json:"experts"`
		} `json:"data"`
	}

	var payload bulkPayload
	payload.Action = "bulkUpdate"
	payload.Data.Experts = make([]bulkExpert, len(experts))
	for i, e := range experts {
		payload.Data.Experts[i].ExpertID = e.ExpertID
		payload.Data.Experts[i].Name = e.Name
		payload.Data.Experts[i].Stats.Specialty = e.Specialty
	}

	resp, err := client.Post(ctx, config.BaseURL+"/api/levels", payload)
	if err != nil {
		return fmt.Errorf("bulk update request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read bulk update response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("bulk update failed with HTTP %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("registered %d expert profiles", len(experts))
	return nil
}

// submitEvents submits events concurrently using a worker pool.
func submitEvents(ctx context.Context, config *Config, events []Event, stats *Stats) error {
	log.Printf("submitting %d events with %d workers...", len(events), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/events"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	eventChan := make(chan Event, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for event := range eventChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleEvent(ctx, client, url, event)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose && time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
							atomic.LoadInt64(&submitted), len(events),
							atomic.LoadInt64(&successful),
							atomic.LoadInt64(&duplicate),
							atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(eventChan)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- event:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsSuccessful = int(atomic.LoadInt64(&successful))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("event submission completed: successful=%d duplicate=%d failed=%d",
		stats.EventsSuccessful, stats.EventsDuplicate, stats.EventsFailed)

	return nil
}

// submitSingleEvent submits one event, retrying once on backpressure.
func submitSingleEvent(ctx context.Context, client *HTTPClient, url string, event Event) string {
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := client.Post(ctx, url, event)
		if err != nil {
			return "failed"
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return "failed"
		}

		switch resp.StatusCode {
		case StatusAccepted:
			return "success"
		case StatusOK:
			var ack AckResponse
			if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
				return "duplicate"
			}
			return "duplicate"
		case StatusTooManyRequests:
			// Queue is full; back off briefly and retry once.
			select {
			case <-ctx.Done():
				return "failed"
			case <-time.After(backpressureDelay):
			}
			continue
		default:
			return "failed"
		}
	}
	return "failed"
}

// retrieveRanks fetches /rank for every expert concurrently.
func retrieveRanks(ctx context.Context, config *Config, experts []Expert, stats *Stats) ([]Entry, error) {
	log.Printf("retrieving ranks for %d experts with %d workers...", len(experts), config.Workers)

	client := newHTTPClient(config.Timeout)

	ranks := make([]Entry, len(experts))
	var failed int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					entry, err := retrieveSingleRank(ctx, client, config.BaseURL, experts[index].ExpertID)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("failed to get rank for %s: %v", experts[index].ExpertID, err)
						}
						continue
					}
					ranks[index] = entry
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range experts {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	valid := make([]Entry, 0, len(ranks))
	for _, entry := range ranks {
		if entry.ExpertID != "" {
			valid = append(valid, entry)
		}
	}

	stats.RanksRetrieved = len(valid)
	log.Printf("rank retrieval completed: retrieved=%d failed=%d", len(valid), int(atomic.LoadInt64(&failed)))

	return valid, nil
}

func retrieveSingleRank(ctx context.Context, client *HTTPClient, baseURL, expertID string) (Entry, error) {
	resp, err := client.Get(ctx, fmt.Sprintf("%s/rank/%s", baseURL, expertID))
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return Entry{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var entry Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return entry, nil
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	log.Printf("getting top %d leaderboard entries...", config.TopN)

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var leaderboard []Entry
	if err := json.Unmarshal(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard)
	log.Printf("retrieved %d leaderboard entries", len(leaderboard))

	return leaderboard, nil
}

// waitForDrain polls /stats until the event queue is empty or the
// deadline passes.
func waitForDrain(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"

	deadline := time.Now().Add(DrainTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while draining: %w", ctx.Err())
		case <-time.After(drainPollInterval):
		}

		resp, err := client.Get(ctx, url)
		if err != nil {
			continue
		}
		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusOK {
			continue
		}

		var svcStats struct {
			QueueLength int `json:"queueLength"`
		}
		if err := json.Unmarshal(body, &svcStats); err != nil {
			continue
		}
		if svcStats.QueueLength == 0 {
			log.Println("event queue drained")
			return nil
		}
		if config.Verbose {
			log.Printf("queue length: %d", svcStats.QueueLength)
		}
	}
	return fmt.Errorf("event queue did not drain within %s", DrainTimeout)
}
