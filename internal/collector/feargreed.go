package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const fngMaxResponseBytes = 64 * 1024 // 64KB, the index response is tiny

var fngAllowedHosts = []string{"api.alternative.me"}

// FearGreedReading is the external market-mood indicator on a 0-100 scale.
// It is consumed as-is, never computed here.
type FearGreedReading struct {
	Value          int
	Classification string
	FetchedAt      time.Time
}

// NeutralFearGreed is the fallback used whenever the index is unreachable.
func NeutralFearGreed() FearGreedReading {
	return FearGreedReading{Value: 50, Classification: "Neutral", FetchedAt: time.Now()}
}

// FetchFearGreed pulls the latest Fear & Greed index from alternative.me.
// The endpoint can be overridden with FNG_API_URL, restricted to a host
// whitelist.
func FetchFearGreed() (FearGreedReading, error) {
	apiURL := os.Getenv("FNG_API_URL")
	if apiURL == "" {
		apiURL = "https://api.alternative.me/fng/"
	} else if !isAllowedFngURL(apiURL) {
		log.Printf("feargreed: FNG_API_URL host not in whitelist, ignoring")
		apiURL = "https://api.alternative.me/fng/"
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return NeutralFearGreed(), fmt.Errorf("feargreed: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NeutralFearGreed(), fmt.Errorf("feargreed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fngMaxResponseBytes))
	if err != nil {
		return NeutralFearGreed(), fmt.Errorf("feargreed: read response: %w", err)
	}

	reading, err := parseFearGreed(body)
	if err != nil {
		return NeutralFearGreed(), err
	}
	return reading, nil
}

// The API returns numbers as strings: {"data":[{"value":"39",...}]}.
type fngAPIResp struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

func parseFearGreed(body []byte) (FearGreedReading, error) {
	var out fngAPIResp
	if err := json.Unmarshal(body, &out); err != nil {
		return FearGreedReading{}, fmt.Errorf("feargreed: unmarshal: %w", err)
	}
	if len(out.Data) == 0 {
		return FearGreedReading{}, fmt.Errorf("feargreed: response has no data")
	}

	latest := out.Data[0]
	value, err := strconv.Atoi(strings.TrimSpace(latest.Value))
	if err != nil {
		return FearGreedReading{}, fmt.Errorf("feargreed: bad value %q", latest.Value)
	}
	if value < 0 || value > 100 {
		return FearGreedReading{}, fmt.Errorf("feargreed: value %d out of range", value)
	}

	fetched := time.Now()
	if ts, err := strconv.ParseInt(strings.TrimSpace(latest.Timestamp), 10, 64); err == nil && ts > 0 {
		fetched = time.Unix(ts, 0)
	}

	classification := latest.Classification
	if classification == "" {
		classification = "Neutral"
	}

	return FearGreedReading{
		Value:          value,
		Classification: classification,
		FetchedAt:      fetched,
	}, nil
}

func isAllowedFngURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	for _, allowed := range fngAllowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
