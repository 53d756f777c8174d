package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"degreeplan/advisor/internal/config"
	"degreeplan/advisor/internal/requirements"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CatalogClient fetches the course list and major definitions from a remote
// catalog service. It satisfies requirements.Source.
//
// Layout served by the catalog:
//
//	GET {base_url}/courses.txt
//	GET {base_url}/majors/{slug}.yaml
type CatalogClient interface {
	requirements.Source
}

type catalogClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client

	// Backoff after the catalog answers 429
	backoffMutex sync.RWMutex
	blockedUntil time.Time
	backoffDelay time.Duration
}

func NewCatalogClient(cfg config.CatalogConfig) CatalogClient {
	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "text/plain, application/yaml, */*")

	return &catalogClient{
		rl:           ratelimit.New(rps),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   client,
		backoffDelay: time.Minute,
	}
}

func (c *catalogClient) CourseList(ctx context.Context) ([]byte, error) {
	body, err := c.fetch(ctx, c.baseURL+"/courses.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course list: %w", err)
	}
	return body, nil
}

func (c *catalogClient) Definition(ctx context.Context, slug string) ([]byte, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("%s/majors/%s.yaml", c.baseURL, slug))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definition %s: %w", slug, err)
	}
	return body, nil
}

func (c *catalogClient) blocked() time.Duration {
	c.backoffMutex.RLock()
	defer c.backoffMutex.RUnlock()
	return time.Until(c.blockedUntil)
}

func (c *catalogClient) backOff() {
	c.backoffMutex.Lock()
	defer c.backoffMutex.Unlock()

	c.blockedUntil = time.Now().Add(c.backoffDelay)
	log.Warnf("🚫 Catalog rate limit hit, requests disabled until %v", c.blockedUntil.Format("15:04:05"))
}

func (c *catalogClient) fetch(ctx context.Context, url string) ([]byte, error) {
	if remaining := c.blocked(); remaining > 0 {
		return nil, fmt.Errorf("catalog requests disabled for %v more", remaining.Round(time.Second))
	}

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		c.backOff()
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status())
	}

	body := resp.String()
	log.Debugf("Fetched %s (%d bytes)", url, len(body))
	return []byte(body), nil
}
