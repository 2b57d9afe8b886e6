// Package lookup wraps the external services the map consults for context:
// trending video titles and generated narratives. Neither ever returns an
// error to its caller; failures degrade to cached, fallback or fixed text.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/telemetry"
)

const (
	DefaultYouTubeURL = "https://www.googleapis.com/youtube/v3/search"
	DefaultTrendQuery = "소자본 창업 아이템"
	DefaultTrendTTL   = time.Hour
	maxTrendResults   = 10
)

type Trend struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// FallbackTrends is shown when no trend data is available.
var FallbackTrends = []Trend{
	{ID: "fallback-1", Title: "무인 아이스크림 할인점 창업 현실"},
	{ID: "fallback-2", Title: "소자본 카페 창업 비용 총정리"},
	{ID: "fallback-3", Title: "1인 밀키트 매장 한 달 매출 공개"},
	{ID: "fallback-4", Title: "스터디카페 창업 전 꼭 알아야 할 것"},
	{ID: "fallback-5", Title: "프랜차이즈 vs 개인 창업 비교"},
}

// TrendFetcher returns trending titles for a query, possibly none.
type TrendFetcher interface {
	FetchTrendingTitles(ctx context.Context, query string) []Trend
}

// TrendsOrFallback never returns an empty list.
func TrendsOrFallback(ctx context.Context, f TrendFetcher, query string) []Trend {
	if f != nil {
		if trends := f.FetchTrendingTitles(ctx, query); len(trends) > 0 {
			return trends
		}
	}
	return append([]Trend(nil), FallbackTrends...)
}

type cachedTrends struct {
	FetchedAt time.Time `json:"fetchedAt"`
	Trends    []Trend   `json:"trends"`
}

// YouTubeClient searches the YouTube Data API. Responses are cached for TTL
// and served stale when a refresh fails.
type YouTubeClient struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Cache   cache.Store
	TTL     time.Duration
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Now     func() time.Time

	group singleflight.Group
}

func (c *YouTubeClient) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *YouTubeClient) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTrendTTL
}

// FetchTrendingTitles returns the most viewed videos for query. Without an
// API key, or when the API fails and nothing is cached, it returns an empty
// list.
func (c *YouTubeClient) FetchTrendingTitles(ctx context.Context, query string) []Trend {
	logger := logging.Component(c.Logger, "youtube")
	if c.APIKey == "" {
		logger.Debug("youtube api key not configured")
		return []Trend{}
	}
	if query == "" {
		query = DefaultTrendQuery
	}

	key := "trends:" + query
	cached, hasCached := c.readCache(ctx, key)
	if hasCached && c.now().Sub(cached.FetchedAt) < c.ttl() {
		return cached.Trends
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		c.Metrics.LookupFallback("youtube")
		if hasCached {
			logging.LogWarn(logger, "youtube search failed, serving stale cache", err, slog.String("query", query))
			return cached.Trends
		}
		logging.LogWarn(logger, "youtube search failed", err, slog.String("query", query))
		return []Trend{}
	}

	trends := v.([]Trend)
	c.writeCache(ctx, key, cachedTrends{FetchedAt: c.now(), Trends: trends})
	return trends
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeClient) search(ctx context.Context, query string) ([]Trend, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultYouTubeURL
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("maxResults", fmt.Sprint(maxTrendResults))
	params.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := httpClient(c.HTTP).Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching videos: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.Logger, "youtube_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube api returned status %d", resp.StatusCode)
	}
	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	trends := make([]Trend, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID == "" {
			continue
		}
		trends = append(trends, Trend{
			ID:        item.ID.VideoID,
			Title:     item.Snippet.Title,
			Thumbnail: item.Snippet.Thumbnails.Default.URL,
		})
	}
	return trends, nil
}

func (c *YouTubeClient) readCache(ctx context.Context, key string) (cachedTrends, bool) {
	var t cachedTrends
	if c.Cache == nil {
		return t, false
	}
	b, err := c.Cache.Get(ctx, key)
	if err != nil {
		return t, false
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return t, false
	}
	return t, true
}

func (c *YouTubeClient) writeCache(ctx context.Context, key string, t cachedTrends) {
	if c.Cache == nil {
		return
	}
	b, err := json.Marshal(t)
	if err == nil {
		err = c.Cache.Put(ctx, key, b)
	}
	if err != nil {
		logging.LogWarn(logging.Component(c.Logger, "youtube"), "trend cache write failed", err)
	}
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}
