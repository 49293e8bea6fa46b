package eastmoney

// client.go — HTTP client del API push2 de EastMoney (东方财富).
//
// push2 no requiere autenticación pero sí moderación: rate limiting por
// familia de endpoint (token bucket) y retries con backoff exponencial
// para los errores transitorios. Un 4xx es permanente y no se reintenta.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultSpotBase  = "https://82.push2.eastmoney.com"
	defaultKlineBase = "https://push2his.eastmoney.com"

	defaultRatePerSec = 8
	defaultBurst      = 4
	defaultTimeout    = 10 * time.Second
	defaultRetries    = 3

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// Config contiene los knobs del cliente. Los campos en cero toman defaults.
type Config struct {
	SpotBase       string
	KlineBase      string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	MaxRetries     uint64
}

// Client es el HTTP client de EastMoney con rate limiting y retries.
type Client struct {
	http         *http.Client
	spotBase     string
	klineBase    string
	spotLimiter  *rate.Limiter
	klineLimiter *rate.Limiter
	maxRetries   uint64
}

// NewClient crea un Client con la configuración dada.
func NewClient(cfg Config) *Client {
	if cfg.SpotBase == "" {
		cfg.SpotBase = defaultSpotBase
	}
	if cfg.KlineBase == "" {
		cfg.KlineBase = defaultKlineBase
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = defaultRatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultRetries
	}
	return &Client{
		http:         &http.Client{Timeout: cfg.Timeout},
		spotBase:     cfg.SpotBase,
		klineBase:    cfg.KlineBase,
		spotLimiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		klineLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		maxRetries:   cfg.MaxRetries,
	}
}

// get hace un GET con rate limiting, retries y decode JSON sobre out.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	operation := func() error {
		if err := limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return err // error de transporte → reintentar
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			slog.Warn("eastmoney transient error", "status", resp.StatusCode, "url", url)
			return fmt.Errorf("server error %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("client error %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 500 * time.Millisecond
	strategy.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(strategy, c.maxRetries), ctx))
}
